package repowalk

import "github.com/gobwas/glob"

// globSet combines compiled globs with OR semantics. An empty set matches
// nothing.
type globSet []glob.Glob

func (gs globSet) Match(relPath string) bool {
	for _, g := range gs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// compileGlobSet compiles patterns into a single OR-combined matcher.
// Patterns are compiled with '/' as the separator, so '*' stays within one
// path segment and '**' crosses segments. Patterns that fail to compile are
// skipped.
func compileGlobSet(patterns []string) globSet {
	var gs globSet
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		gs = append(gs, g)
	}
	return gs
}
