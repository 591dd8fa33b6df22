// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"os"
	"regexp"
	"strings"
)

// CustomTargetRecord describes one add_custom_target/add_jar call site:
// its location and which optional clauses it carried, used by the
// target classifier (spec §4.4 step 3) to tell an Aggregator
// (DEPENDS-only) from a Runner (has a COMMAND).
type CustomTargetRecord struct {
	File          string
	Line          int
	HasCommand    bool
	HasDepends    bool
	HasOutput     bool
	HasByproducts bool
	Params        map[string][]string
}

// FindPackageRecord is one find_package(...) call site.
type FindPackageRecord struct {
	Name       string
	Required   bool
	Components []string
	File       string
	Line       int
}

// AddTestRecord is one add_test(...) call site, either the NAME-style
// or positional form.
type AddTestRecord struct {
	Name             string
	Command          string
	Arguments        []string
	WorkingDirectory string
	File             string
	Line             int
}

// ListsIndex is the structured result of tokenizing a repository's
// CMakeLists.txt files: custom targets, find_package calls, add_test
// calls, link libraries, output directories, and target properties,
// keyed the way downstream classification needs them.
type ListsIndex struct {
	CustomTargets     map[string]CustomTargetRecord
	FindPackages      []FindPackageRecord
	AddTests          []AddTestRecord
	LinkLibraries     map[string][]string
	OutputDirs        map[string]string
	TargetProperties  map[string]map[string]string
}

func NewListsIndex() *ListsIndex {
	return &ListsIndex{
		CustomTargets:    make(map[string]CustomTargetRecord),
		LinkLibraries:    make(map[string][]string),
		OutputDirs:       make(map[string]string),
		TargetProperties: make(map[string]map[string]string),
	}
}

// call is one balanced, top-level `name(args...)` invocation found in a
// CMakeLists.txt file, with the 1-based line its name token starts on.
type call struct {
	Name string
	Args string
	Line int
}

// ParseListsFile tokenizes a single CMakeLists.txt (or *.cmake) file and
// merges its calls into idx. relPath is the path recorded on every
// record (relative to the repository root, for evidence).
func ParseListsFile(path, relPath string, idx *ListsIndex) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return newExtractionError(CMakeListsParseError, relPath, 0, err, "reading CMakeLists file")
	}

	calls, err := tokenizeCalls(string(raw))
	if err != nil {
		return newExtractionError(CMakeListsParseError, relPath, 0, err, "tokenizing CMakeLists file")
	}

	for _, c := range calls {
		switch strings.ToLower(c.Name) {
		case "add_custom_target":
			applyAddCustomTarget(idx, c, relPath)
		case "add_jar":
			applyAddJar(idx, c, relPath)
		case "find_package":
			applyFindPackage(idx, c, relPath)
		case "add_test":
			applyAddTest(idx, c, relPath)
		case "target_link_libraries":
			applyTargetLinkLibraries(idx, c)
		case "set":
			applySetOutputDir(idx, c)
		case "set_target_properties":
			applySetTargetProperties(idx, c)
		}
	}
	return nil
}

// tokenizeCalls scans src for top-level `name ( args )` invocations,
// tracking quote state and paren nesting depth across lines so that
// multi-line calls collect correctly and parens inside quoted strings
// or `#`-prefixed comments (outside quotes) are ignored.
func tokenizeCalls(src string) ([]call, error) {
	var calls []call
	line := 1
	n := len(src)
	i := 0

	skipCommentsAndWhitespace := func() {
		for i < n {
			switch {
			case src[i] == '\n':
				line++
				i++
			case src[i] == ' ' || src[i] == '\t' || src[i] == '\r':
				i++
			case src[i] == '#':
				for i < n && src[i] != '\n' {
					i++
				}
			default:
				return
			}
		}
	}

	identRe := regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

	for {
		skipCommentsAndWhitespace()
		if i >= n {
			break
		}

		rest := src[i:]
		nameMatch := identRe.FindString(rest)
		if nameMatch == "" {
			// Not the start of an identifier; skip one rune and resync.
			i++
			continue
		}

		// Look for '(' after optional whitespace.
		j := i + len(nameMatch)
		for j < n && (src[j] == ' ' || src[j] == '\t' || src[j] == '\r' || src[j] == '\n') {
			if src[j] == '\n' {
				line++
			}
			j++
		}
		if j >= n || src[j] != '(' {
			i = i + len(nameMatch)
			continue
		}

		startLine := line
		depth := 0
		inQuotes := false
		argsStart := j + 1
		k := j
		for k < n {
			ch := src[k]
			switch {
			case ch == '"' && (k == 0 || src[k-1] != '\\'):
				inQuotes = !inQuotes
			case ch == '\n':
				line++
			case !inQuotes && ch == '#':
				for k < n && src[k] != '\n' {
					k++
				}
				continue
			case !inQuotes && ch == '(':
				depth++
			case !inQuotes && ch == ')':
				depth--
				if depth == 0 {
					calls = append(calls, call{Name: nameMatch, Args: src[argsStart:k], Line: startLine})
					k++
					i = k
					goto nextCall
				}
			}
			k++
		}
		// Unbalanced parens: stop tokenizing the rest of the file.
		return calls, nil
	nextCall:
	}
	return calls, nil
}

// splitArgs splits a call's argument string on whitespace, respecting
// double-quoted spans and collapsing generator expressions
// `$<TARGET_FILE:tgt>` down to the bare target name `tgt`.
func splitArgs(args string) []string {
	var out []string
	var b strings.Builder
	inQuotes := false
	flush := func() {
		if b.Len() > 0 {
			out = append(out, cleanGeneratorExpr(b.String()))
			b.Reset()
		}
	}
	for i := 0; i < len(args); i++ {
		ch := args[i]
		switch {
		case ch == '"' && (i == 0 || args[i-1] != '\\'):
			inQuotes = !inQuotes
		case !inQuotes && (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'):
			flush()
		default:
			b.WriteByte(ch)
		}
	}
	flush()
	return out
}

var generatorExprRe = regexp.MustCompile(`\$<TARGET_FILE:([^>]+)>`)

// cleanGeneratorExpr rewrites `$<TARGET_FILE:tgt>` tokens down to the
// bare target name, per SPEC_FULL.md's supplemented generator-expression
// cleanup rule (grounded on ctest_wrapper.py's parse_add_test_command).
func cleanGeneratorExpr(tok string) string {
	if m := generatorExprRe.FindStringSubmatch(tok); m != nil {
		return m[1]
	}
	return tok
}

func applyAddCustomTarget(idx *ListsIndex, c call, file string) {
	fields := splitArgs(c.Args)
	if len(fields) == 0 {
		return
	}
	name := fields[0]
	rec := CustomTargetRecord{File: file, Line: c.Line, Params: map[string][]string{}}

	section := ""
	for _, f := range fields[1:] {
		switch strings.ToUpper(f) {
		case "COMMAND":
			section = "COMMAND"
			rec.HasCommand = true
			continue
		case "DEPENDS":
			section = "DEPENDS"
			rec.HasDepends = true
			continue
		case "OUTPUT":
			section = "OUTPUT"
			rec.HasOutput = true
			continue
		case "BYPRODUCTS":
			section = "BYPRODUCTS"
			rec.HasByproducts = true
			continue
		case "WORKING_DIRECTORY", "COMMENT", "VERBATIM", "USES_TERMINAL", "SOURCES":
			section = ""
			continue
		}
		if section != "" {
			rec.Params[section] = append(rec.Params[section], f)
		}
	}
	idx.CustomTargets[name] = rec
}

func applyAddJar(idx *ListsIndex, c call, file string) {
	fields := splitArgs(c.Args)
	if len(fields) == 0 {
		return
	}
	idx.CustomTargets[fields[0]] = CustomTargetRecord{
		File:       file,
		Line:       c.Line,
		HasOutput:  true,
		HasCommand: false,
		HasDepends: false,
		Params:     map[string][]string{},
	}
}

func applyFindPackage(idx *ListsIndex, c call, file string) {
	fields := splitArgs(c.Args)
	if len(fields) == 0 {
		return
	}
	rec := FindPackageRecord{Name: fields[0], File: file, Line: c.Line}
	section := ""
	for _, f := range fields[1:] {
		switch strings.ToUpper(f) {
		case "REQUIRED":
			rec.Required = true
		case "COMPONENTS":
			section = "COMPONENTS"
		case "QUIET", "MODULE", "CONFIG", "EXACT":
			section = ""
		default:
			if section == "COMPONENTS" {
				rec.Components = append(rec.Components, f)
			}
		}
	}
	idx.FindPackages = append(idx.FindPackages, rec)
}

func applyAddTest(idx *ListsIndex, c call, file string) {
	fields := splitArgs(c.Args)
	if len(fields) == 0 {
		return
	}

	rec := AddTestRecord{File: file, Line: c.Line}
	if strings.EqualFold(fields[0], "NAME") && len(fields) > 1 {
		rec.Name = fields[1]
		rest := fields[2:]
		for i := 0; i < len(rest); i++ {
			switch strings.ToUpper(rest[i]) {
			case "COMMAND":
				if i+1 < len(rest) {
					rec.Command = rest[i+1]
					rec.Arguments = append([]string{}, rest[i+2:]...)
				}
				i = len(rest)
			case "WORKING_DIRECTORY":
				if i+1 < len(rest) {
					rec.WorkingDirectory = rest[i+1]
				}
			}
		}
	} else {
		rec.Name = fields[0]
		if len(fields) > 1 {
			rec.Command = fields[1]
			rec.Arguments = append([]string{}, fields[2:]...)
		}
	}
	idx.AddTests = append(idx.AddTests, rec)
}

func applyTargetLinkLibraries(idx *ListsIndex, c call) {
	fields := splitArgs(c.Args)
	if len(fields) == 0 {
		return
	}
	target := fields[0]
	for _, f := range fields[1:] {
		switch strings.ToUpper(f) {
		case "PUBLIC", "PRIVATE", "INTERFACE":
			continue
		}
		idx.LinkLibraries[target] = append(idx.LinkLibraries[target], f)
	}
}

// applySetTargetProperties handles set_target_properties(<target>...
// PROPERTIES <name> <value> <name> <value> ...), recording every
// property assignment so the runtime-dependency parser can later pull
// VS_DEBUGGER_ENVIRONMENT back out by target name.
func applySetTargetProperties(idx *ListsIndex, c call) {
	fields := splitArgs(c.Args)
	propIdx := -1
	for i, f := range fields {
		if strings.EqualFold(f, "PROPERTIES") {
			propIdx = i
			break
		}
	}
	if propIdx < 0 || propIdx == 0 {
		return
	}
	targets := fields[:propIdx]
	rest := fields[propIdx+1:]

	for _, target := range targets {
		props := idx.TargetProperties[target]
		if props == nil {
			props = make(map[string]string)
		}
		for i := 0; i+1 < len(rest); i += 2 {
			props[rest[i]] = rest[i+1]
		}
		idx.TargetProperties[target] = props
	}
}

var outputDirVarRe = regexp.MustCompile(`^CMAKE_[A-Z_]*_OUTPUT_DIRECTORY$`)

func applySetOutputDir(idx *ListsIndex, c call) {
	fields := splitArgs(c.Args)
	if len(fields) < 2 {
		return
	}
	if outputDirVarRe.MatchString(strings.ToUpper(fields[0])) {
		idx.OutputDirs[fields[0]] = fields[1]
	}
}
