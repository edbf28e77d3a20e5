package repowalk

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// Helper to create a file with content
func createFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file %s: %v", path, err)
	}
}

// keepAll classifies every file as a match.
func keepAll(rel string) (string, bool) { return rel, true }

func TestWalkOrdersFilesBeforeDirs(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "z.txt"), "z")
	createFile(t, filepath.Join(root, "b.txt"), "b")
	createFile(t, filepath.Join(root, "a", "inner.txt"), "i")
	createFile(t, filepath.Join(root, "a", "nested", "deep.txt"), "d")
	createFile(t, filepath.Join(root, "c", "late.txt"), "l")

	got := Walk(root, keepAll)
	want := []string{
		"b.txt",
		"z.txt",
		"a/inner.txt",
		"a/nested/deep.txt",
		"c/late.txt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk order = %v, want %v", got, want)
	}
}

func TestWalkSkipsGitAndSymlinks(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a.txt"), "a")
	createFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	createFile(t, filepath.Join(root, ".git", "config"), "[core]")
	createFile(t, filepath.Join(root, "my.git-backup", "keep.txt"), "kept")
	createFile(t, filepath.Join(root, "sub", ".git", "HEAD"), "nested git dir")
	createFile(t, filepath.Join(root, "sub", "ok.txt"), "ok")

	target := filepath.Join(root, "sub")
	if err := os.Symlink(target, filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("cannot create symlinks: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "linkfile")); err != nil {
		t.Fatalf("failed to create file symlink: %v", err)
	}

	got := Walk(root, keepAll)
	want := []string{
		"a.txt",
		"my.git-backup/keep.txt",
		"sub/ok.txt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
}

func TestWalkSkipsSubmodules(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, ".gitmodules"),
		"[submodule \"lib\"]\n\tpath = vendor/lib\n\turl = https://example.com/lib.git\n")
	createFile(t, filepath.Join(root, "vendor", "lib", "readme.md"), "submodule file")
	createFile(t, filepath.Join(root, "vendor", "kept", "readme.md"), "regular vendored file")
	createFile(t, filepath.Join(root, "readme.md"), "root file")

	got := Walk(root, keepAll)
	want := []string{
		".gitmodules",
		"readme.md",
		"vendor/kept/readme.md",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
}

func TestWalkIdempotent(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "one.txt"), "1")
	createFile(t, filepath.Join(root, "dir", "two.txt"), "2")
	createFile(t, filepath.Join(root, "dir", "sub", "three.txt"), "3")

	first := Walk(root, keepAll)
	second := Walk(root, keepAll)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two walks of an unmodified tree differ: %v vs %v", first, second)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	got := Walk(filepath.Join(t.TempDir(), "does-not-exist"), keepAll)
	if len(got) != 0 {
		t.Errorf("expected no results for a missing root, got %v", got)
	}
}

func TestWalkClassifierFilters(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "keep.txt"), "k")
	createFile(t, filepath.Join(root, "drop.bin"), "d")

	got := Walk(root, func(rel string) (string, bool) {
		return rel, filepath.Ext(rel) == ".txt"
	})
	if !reflect.DeepEqual(got, []string{"keep.txt"}) {
		t.Errorf("walk = %v, want [keep.txt]", got)
	}
}
