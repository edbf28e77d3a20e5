package repowalk

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadSubmodulePaths(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantPaths []string
		wantOK    bool
	}{
		{
			name: "single submodule",
			content: `
[submodule "foo/bar/baz"]
	path = foo/bar/baz
	url = https://github.com/zharinov/good-enough-parser
`,
			wantPaths: []string{"foo/bar/baz"},
			wantOK:    true,
		},
		{
			name: "multiple submodules keep file order",
			content: `
[submodule "second"]
	path = vendor/second
[submodule "first"]
	path = vendor/first
`,
			wantPaths: []string{"vendor/second", "vendor/first"},
			wantOK:    true,
		},
		{
			name: "submodule without path key",
			content: `
[submodule "broken"]
	url = https://example.com/broken.git
`,
			wantPaths: nil,
			wantOK:    true,
		},
		{
			name: "bare submodule section",
			content: `
[submodule]
	path = lib
`,
			wantPaths: []string{"lib"},
			wantOK:    true,
		},
		{
			name: "no submodule sections",
			content: `
[core]
	bare = false
`,
			wantPaths: nil,
			wantOK:    false,
		},
		{
			name:      "empty file",
			content:   "",
			wantPaths: nil,
			wantOK:    false,
		},
		{
			name: "similarly named section is not a submodule",
			content: `
[submodules "x"]
	path = x
`,
			wantPaths: nil,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, ok, err := readSubmodulePaths(tt.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(paths, tt.wantPaths) {
				t.Errorf("paths = %v, want %v", paths, tt.wantPaths)
			}
		})
	}
}

func TestReadSubmodulePathsMalformed(t *testing.T) {
	if _, _, err := readSubmodulePaths("[submodule \"unterminated\n"); err == nil {
		t.Error("expected a parse error for an unterminated section header")
	}
}

func TestSubmodulePaths(t *testing.T) {
	root := t.TempDir()

	if _, ok := submodulePaths(root); ok {
		t.Error("expected no submodules for a repo without .gitmodules")
	}

	content := "[submodule \"lib\"]\n\tpath = vendor/lib\n\turl = https://example.com/lib.git\n"
	if err := os.WriteFile(filepath.Join(root, ".gitmodules"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .gitmodules: %v", err)
	}

	paths, ok := submodulePaths(root)
	if !ok {
		t.Fatal("expected submodules to be found")
	}
	if !reflect.DeepEqual(paths, []string{"vendor/lib"}) {
		t.Errorf("paths = %v, want [vendor/lib]", paths)
	}
}

func TestSubmodulePathsMalformedFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitmodules"), []byte("[submodule \"x\n"), 0644); err != nil {
		t.Fatalf("failed to write .gitmodules: %v", err)
	}
	if _, ok := submodulePaths(root); ok {
		t.Error("malformed .gitmodules must degrade to no submodules")
	}
}
