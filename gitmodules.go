package repowalk

import (
	"os"
	"path/filepath"
	"strings"

	ini "gopkg.in/ini.v1"
)

// readSubmodulePaths extracts the declared submodule paths from .gitmodules
// content. ok reports whether the file contains at least one submodule
// section; sections lacking a path key are skipped, so paths may be empty
// even when ok is true. A non-nil error means the content is not well-formed
// INI.
func readSubmodulePaths(content string) (paths []string, ok bool, err error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowNonUniqueSections: true}, []byte(content))
	if err != nil {
		return nil, false, err
	}
	for _, section := range cfg.Sections() {
		name := section.Name()
		if name != "submodule" && !strings.HasPrefix(name, `submodule "`) {
			continue
		}
		ok = true
		if section.HasKey("path") {
			paths = append(paths, section.Key("path").String())
		}
	}
	return paths, ok, nil
}

// submodulePaths reads <root>/.gitmodules and returns the declared submodule
// paths. A missing or unreadable file, malformed content or the absence of
// any submodule section all degrade to "no submodules known"; this never
// fails the caller.
func submodulePaths(root string) ([]string, bool) {
	content, err := os.ReadFile(filepath.Join(root, ".gitmodules"))
	if err != nil {
		return nil, false
	}
	paths, ok, err := readSubmodulePaths(string(content))
	if err != nil {
		return nil, false
	}
	return paths, ok
}
