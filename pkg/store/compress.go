// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// pathSuffixes are file extensions that mark a string as path-like
// even without a path separator, so a bare source file name still
// dedupes through the path table.
var pathSuffixes = map[string]struct{}{
	"c": {}, "cc": {}, "cpp": {}, "cxx": {}, "h": {}, "hpp": {}, "hxx": {},
	"py": {}, "java": {}, "go": {}, "cs": {}, "js": {}, "ts": {}, "json": {},
	"yaml": {}, "yml": {}, "toml": {}, "cmake": {}, "ini": {}, "cfg": {},
	"dll": {}, "exe": {},
}

// keyAlias shortens the JSON keys that recur once per entity, the
// dominant source of size in a RIG export with hundreds of components.
var keyAlias = map[string]string{
	"components":                   "comp",
	"aggregators":                  "agg",
	"runners":                      "run",
	"tests":                        "test",
	"external_packages":            "extpkg",
	"package_managers":             "pkgmgr",
	"source_files":                 "sf",
	"depends_on_ids":               "deps",
	"external_packages_ids":        "extdeps",
	"evidence_ids":                 "evid",
	"programming_language":         "lang",
	"relative_path":                "rel",
	"test_components_ids":          "tcomp",
	"components_being_tested_ids":  "cbt",
	"test_executable_component_id": "texe",
	"call_stack":                   "cs",
	"package_name":                 "pkg",
	"package_manager":              "pm",
	"configure_cmd":                "cfg",
	"test_cmd":                     "tcmd",
	"test_framework":               "tf",
}

var reverseKeyAlias = func() map[string]string {
	out := make(map[string]string, len(keyAlias))
	for k, v := range keyAlias {
		out[v] = k
	}
	return out
}()

// optimizedPayload is the wire shape produced when compression shrinks
// the document: lookups hold the path/string/key tables a decoder
// needs to reverse the substitution; data is the payload with
// substitutions applied.
type optimizedPayload struct {
	Lookups lookupTables `json:"lookups"`
	Data    any          `json:"data"`
}

type lookupTables struct {
	Paths   []string          `json:"paths"`
	Strings []string          `json:"strings"`
	Keys    map[string]string `json:"keys"`
}

// Compress renders g as LLM-oriented JSON: path-like and frequently
// repeated strings are replaced with $p<idx>/$s<idx> references into a
// lookup table, and the highest-frequency object keys are shortened.
// If the optimized form is not actually smaller than the plain
// canonical export (small graphs, where the lookup tables cost more
// than they save), Compress falls back to the plain export unchanged.
func Compress(g *rig.RIG) ([]byte, error) {
	original, err := json.Marshal(ToCanonical(g))
	if err != nil {
		return nil, fmt.Errorf("store: compress: marshal canonical export: %w", err)
	}

	var base any
	if err := json.Unmarshal(original, &base); err != nil {
		return nil, fmt.Errorf("store: compress: unmarshal canonical export: %w", err)
	}

	stringCounts := make(map[string]int)
	pathCandidates := make(map[string]struct{})
	scanStrings(base, stringCounts, pathCandidates)

	sortedPaths := make([]string, 0, len(pathCandidates))
	for p := range pathCandidates {
		sortedPaths = append(sortedPaths, p)
	}
	sort.Strings(sortedPaths)
	pathIndex := make(map[string]int, len(sortedPaths))
	for i, p := range sortedPaths {
		pathIndex[p] = i
	}

	var frequentStrings []string
	for s, count := range stringCounts {
		if count < 3 || len(s) <= 12 {
			continue
		}
		if _, isPath := pathIndex[s]; isPath {
			continue
		}
		frequentStrings = append(frequentStrings, s)
	}
	sort.Strings(frequentStrings)
	stringIndex := make(map[string]int, len(frequentStrings))
	for i, s := range frequentStrings {
		stringIndex[s] = i
	}

	optimizedData := transformForCompression(base, pathIndex, stringIndex)
	optimized := optimizedPayload{
		Lookups: lookupTables{Paths: sortedPaths, Strings: frequentStrings, Keys: reverseKeyAlias},
		Data:    optimizedData,
	}

	optimizedJSON, err := json.Marshal(optimized)
	if err != nil {
		return nil, fmt.Errorf("store: compress: marshal optimized payload: %w", err)
	}
	if len(optimizedJSON) >= len(original) {
		return original, nil
	}
	return optimizedJSON, nil
}

// scanStrings walks a decoded JSON value, counting every string and
// recording which ones look like file paths.
func scanStrings(node any, counts map[string]int, paths map[string]struct{}) {
	switch v := node.(type) {
	case string:
		counts[v]++
		if looksLikePath(v) {
			paths[v] = struct{}{}
		}
	case map[string]any:
		for _, child := range v {
			scanStrings(child, counts, paths)
		}
	case []any:
		for _, child := range v {
			scanStrings(child, counts, paths)
		}
	}
}

func looksLikePath(s string) bool {
	if len(s) < 4 {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	dot := strings.LastIndex(s, ".")
	if dot < 0 {
		return false
	}
	ext := strings.ToLower(s[dot+1:])
	_, ok := pathSuffixes[ext]
	return ok
}

// transformForCompression rewrites node with path/string substitution
// and key aliasing applied.
func transformForCompression(node any, pathIndex, stringIndex map[string]int) any {
	switch v := node.(type) {
	case string:
		if idx, ok := pathIndex[v]; ok {
			return "$p" + strconv.Itoa(idx)
		}
		if idx, ok := stringIndex[v]; ok {
			return "$s" + strconv.Itoa(idx)
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = transformForCompression(child, pathIndex, stringIndex)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			alias := k
			if a, ok := keyAlias[k]; ok {
				alias = a
			}
			out[alias] = transformForCompression(child, pathIndex, stringIndex)
		}
		return out
	default:
		return node
	}
}

// Decompress reverses Compress, returning the canonical export it was
// built from. It accepts both optimized output (with a "lookups"
// envelope) and the plain fallback form.
func Decompress(data []byte) (*CanonicalExport, error) {
	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("store: decompress: unmarshal: %w", err)
	}

	var plain any = probe
	if rawData, hasLookups := probe["lookups"], probe["lookups"] != nil; hasLookups {
		var wrapped optimizedPayload
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("store: decompress: unmarshal optimized payload: %w", err)
		}
		_ = rawData
		plain = reverseTransform(wrapped.Data, wrapped.Lookups)
	}

	restored, err := json.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("store: decompress: remarshal restored payload: %w", err)
	}
	var out CanonicalExport
	if err := json.Unmarshal(restored, &out); err != nil {
		return nil, fmt.Errorf("store: decompress: unmarshal canonical export: %w", err)
	}
	return &out, nil
}

func reverseTransform(node any, lookups lookupTables) any {
	switch v := node.(type) {
	case string:
		if idx, ok := parseTokenIndex(v, "$p"); ok && idx < len(lookups.Paths) {
			return lookups.Paths[idx]
		}
		if idx, ok := parseTokenIndex(v, "$s"); ok && idx < len(lookups.Strings) {
			return lookups.Strings[idx]
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = reverseTransform(child, lookups)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			original := k
			if o, ok := lookups.Keys[k]; ok {
				original = o
			}
			out[original] = reverseTransform(child, lookups)
		}
		return out
	default:
		return node
	}
}

func parseTokenIndex(s, prefix string) (int, bool) {
	if !strings.HasPrefix(s, prefix) {
		return 0, false
	}
	idx, err := strconv.Atoi(s[len(prefix):])
	if err != nil {
		return 0, false
	}
	return idx, true
}
