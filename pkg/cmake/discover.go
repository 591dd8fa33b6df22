// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// defaultExcludeDirs are directory basenames never descended into while
// discovering CMakeLists files: CMake build trees and VCS metadata.
var defaultExcludeDirs = map[string]struct{}{
	".git":         {},
	".cmake":       {},
	"build":        {},
	"cmake-build":  {},
	"_deps":        {},
	"CMakeFiles":   {},
}

// DiscoverListsFiles walks repoRoot and returns the repo-relative paths
// of every CMakeLists.txt and *.cmake module file, skipping the build
// directory (if given) and, in addition to the defaults, any directory
// whose base name is an entry of excludeDirs. An entry of the form
// "dir/**" also skips the repo-relative directory dir; no other glob
// syntax is expanded.
func DiscoverListsFiles(repoRoot, buildDir string, excludeDirs []string) ([]string, error) {
	skip := make(map[string]struct{}, len(defaultExcludeDirs)+len(excludeDirs))
	for k := range defaultExcludeDirs {
		skip[k] = struct{}{}
	}
	for _, d := range excludeDirs {
		skip[d] = struct{}{}
	}

	var buildRel string
	if buildDir != "" {
		if rel, err := filepath.Rel(repoRoot, buildDir); err == nil {
			buildRel = rel
		}
	}

	var found []string
	err := filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			base := d.Name()
			if _, excluded := skip[base]; excluded {
				return filepath.SkipDir
			}
			for _, pattern := range excludeDirs {
				if strings.HasSuffix(pattern, "/**") && filepath.ToSlash(rel) == strings.TrimSuffix(pattern, "/**") {
					return filepath.SkipDir
				}
			}
			if buildRel != "" && (rel == buildRel || strings.HasPrefix(rel, buildRel+string(filepath.Separator))) {
				return filepath.SkipDir
			}
			return nil
		}

		if base := d.Name(); base == "CMakeLists.txt" || strings.HasSuffix(base, ".cmake") {
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, newExtractionError(CMakeListsParseError, repoRoot, 0, err, "walking repository for CMakeLists files")
	}
	return found, nil
}
