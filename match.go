package repowalk

import "github.com/gobwas/glob"

// Glob returns the repository files matching pattern, relative to root.
// A pattern that fails to compile yields an empty result rather than an
// error; callers that need to tell the two apart can pre-validate the
// pattern with glob.Compile.
func Glob(root, pattern string) []string {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil
	}
	return Walk(root, func(rel string) (string, bool) {
		return rel, g.Match(rel)
	})
}

// Globs returns the repository files matching any of patterns. Patterns
// that fail to compile are skipped; the remaining patterns still match.
func Globs(root string, patterns []string) []string {
	set := compileGlobSet(patterns)
	if len(set) == 0 {
		return nil
	}
	return Walk(root, func(rel string) (string, bool) {
		return rel, set.Match(rel)
	})
}

// GlobsMap classifies the repository against several named pattern sets in
// a single traversal. Every key of sets appears in the result, keys with no
// matches mapped to an empty list, and a file matching more than one set is
// recorded under each of them. Per-key paths keep traversal order.
func GlobsMap(root string, sets map[string][]string) map[string][]string {
	type namedSet struct {
		key string
		set globSet
	}

	matched := make(map[string][]string, len(sets))
	var matchers []namedSet
	for key, patterns := range sets {
		matched[key] = []string{}
		if set := compileGlobSet(patterns); len(set) > 0 {
			matchers = append(matchers, namedSet{key: key, set: set})
		}
	}
	if len(matchers) == 0 {
		return matched
	}

	type keyMatch struct {
		key, path string
	}
	hits := Walk(root, func(rel string) ([]keyMatch, bool) {
		var pathHits []keyMatch
		for _, m := range matchers {
			if m.set.Match(rel) {
				pathHits = append(pathHits, keyMatch{key: m.key, path: rel})
			}
		}
		return pathHits, len(pathHits) > 0
	})

	for _, pathHits := range hits {
		for _, hit := range pathHits {
			matched[hit.key] = append(matched[hit.key], hit.path)
		}
	}
	return matched
}
