// Package repowalk enumerates the files of a git working tree against glob
// patterns. Traversal never descends into .git directories, declared
// submodule subtrees or symbolic links, and all reported paths are
// slash-separated and relative to the repository root.
package repowalk

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Walk traverses the tree rooted at root exactly once and applies classify
// to every regular file, collecting the results it keeps, in order.
//
// The set of submodule exclusions is resolved fresh from <root>/.gitmodules
// on every call. Within a directory, files are visited before
// subdirectories and both groups are ordered lexicographically, so the
// result order is a function of the tree alone. Unreadable entries are
// skipped; the walk itself never fails.
//
// classify may be invoked concurrently and must be safe for parallel use on
// read-only state.
func Walk[R any](root string, classify func(rel string) (R, bool)) []R {
	var submodules globSet
	if paths, ok := submodulePaths(root); ok {
		submodules = compileGlobSet(paths)
	}

	var files []string
	collectFiles(root, "", submodules, &files)

	n := len(files)
	if n == 0 {
		return nil
	}

	// Classification runs on a worker pool, but results land in slots
	// indexed by traversal position so the output order stays deterministic.
	results := make([]R, n)
	keep := make([]bool, n)

	jobCh := make(chan int, n)
	for i := 0; i < n; i++ {
		jobCh <- i
	}
	close(jobCh)

	workers := min(runtime.NumCPU(), n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				results[i], keep[i] = classify(files[i])
			}
		}()
	}
	wg.Wait()

	out := make([]R, 0, n)
	for i := 0; i < n; i++ {
		if keep[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// collectFiles gathers the slash-relative paths of all regular files under
// dir, files before subdirectories at every level. The .git name check
// compares only the final path segment, so a sibling like "my.git-backup"
// is still descended into.
func collectFiles(dir, rel string, submodules globSet, files *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var dirs []string
	for _, entry := range entries {
		name := entry.Name()
		entryRel := name
		if rel != "" {
			entryRel = rel + "/" + name
		}
		switch {
		case entry.Type().IsRegular():
			*files = append(*files, entryRel)
		case entry.IsDir():
			if name == ".git" {
				continue
			}
			if submodules.Match(entryRel) {
				continue
			}
			dirs = append(dirs, name)
		}
		// symlinks and irregular entries are neither reported nor followed
	}

	for _, name := range dirs {
		entryRel := name
		if rel != "" {
			entryRel = rel + "/" + name
		}
		collectFiles(filepath.Join(dir, name), entryRel, submodules, files)
	}
}
