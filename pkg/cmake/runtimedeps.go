// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"path"
	"strings"
)

// runtimeEnvKeys are the VS_DEBUGGER_ENVIRONMENT assignments that carry
// runtime dependency information: classpath and shared-library search
// paths.
var runtimeEnvKeys = map[string]struct{}{
	"CLASSPATH":       {},
	"PATH":            {},
	"LD_LIBRARY_PATH": {},
	"DYLD_LIBRARY_PATH": {},
}

// artifactSuffixes are the file extensions a runtime-dependency
// basename match is restricted to, per spec §4.4 step 4.
var artifactSuffixes = []string{".jar", ".dll", ".so", ".dylib", ".exe"}

// RuntimeDependencies returns the basenames of every component this
// target references through a VS_DEBUGGER_ENVIRONMENT property, by
// parsing CLASSPATH/PATH/LD_LIBRARY_PATH/DYLD_LIBRARY_PATH assignments,
// splitting on both `;` and `:` path separators, and keeping only
// entries whose basename carries a known artifact suffix. The File API
// does not expose this information, so it is read directly from the
// CMakeLists set_target_properties record.
func RuntimeDependencies(targetName string, props map[string]map[string]string) []string {
	targetProps, ok := props[targetName]
	if !ok {
		return nil
	}
	envValue, ok := targetProps["VS_DEBUGGER_ENVIRONMENT"]
	if !ok {
		return nil
	}

	var basenames []string
	for _, assignment := range splitEnvAssignments(envValue) {
		key, value, ok := splitEnvKV(assignment)
		if !ok {
			continue
		}
		if _, known := runtimeEnvKeys[strings.ToUpper(key)]; !known {
			continue
		}
		for _, entry := range splitPathSeparators(value) {
			base := path.Base(filepathToSlash(entry))
			if hasKnownArtifactSuffix(base) {
				basenames = append(basenames, base)
			}
		}
	}
	return basenames
}

// MatchRuntimeDependencies resolves each basename RuntimeDependencies
// returned against a map of component artifact basename -> component
// name. A basename matching no component is silently ignored (benign
// heuristic failure, per spec §4.4 failure semantics).
func MatchRuntimeDependencies(basenames []string, artifactsByBasename map[string]string) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, b := range basenames {
		name, ok := artifactsByBasename[b]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		matched = append(matched, name)
	}
	return matched
}

func hasKnownArtifactSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suf := range artifactSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

// splitEnvAssignments splits a VS_DEBUGGER_ENVIRONMENT value on
// newlines, CMake's conventional separator for multiple assignments
// within the property (each assignment is itself NAME=value1;value2).
func splitEnvAssignments(value string) []string {
	lines := strings.Split(value, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitEnvKV(assignment string) (key, value string, ok bool) {
	idx := strings.IndexByte(assignment, '=')
	if idx < 0 {
		return "", "", false
	}
	return assignment[:idx], assignment[idx+1:], true
}

func splitPathSeparators(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == ':'
	})
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
