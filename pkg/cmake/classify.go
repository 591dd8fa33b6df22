// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"strings"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Classification is the outcome of classifying one CMake target: which
// kind of RIG node it becomes, or that it is skipped entirely.
type Classification string

const (
	ClassComponent  Classification = "component"
	ClassRunner     Classification = "runner"
	ClassAggregator Classification = "aggregator"
	ClassSkip       Classification = "skip"
)

var componentTargetTypes = map[string]rig.ComponentType{
	"EXECUTABLE":      rig.ComponentExecutable,
	"STATIC_LIBRARY":  rig.ComponentStaticLibrary,
	"SHARED_LIBRARY":  rig.ComponentSharedLibrary,
	"MODULE_LIBRARY":  rig.ComponentSharedLibrary,
	"OBJECT_LIBRARY":  rig.ComponentStaticLibrary,
}

// ClassifyTarget determines the RIG node category for a single File API
// target, per spec §4.4 step 3. UTILITY targets need the matching
// CMakeLists.txt custom-target record (from the tokenizer) to tell a
// Runner (has COMMAND) from an Aggregator (DEPENDS-only).
func ClassifyTarget(t *Target, customTargets map[string]CustomTargetRecord) Classification {
	if _, ok := componentTargetTypes[t.Type]; ok {
		return ClassComponent
	}

	if t.Type != "UTILITY" {
		return ClassSkip
	}

	if len(t.Artifacts) > 0 {
		return ClassSkip
	}

	rec, ok := customTargets[t.Name]
	if !ok {
		return ClassSkip
	}
	switch {
	case rec.HasCommand:
		return ClassRunner
	case rec.HasDepends && !rec.HasCommand:
		return ClassAggregator
	default:
		return ClassSkip
	}
}

// ComponentTypeFor maps a File API target type to the corresponding
// rig.ComponentType. Only valid for targets ClassifyTarget reports as
// ClassComponent.
func ComponentTypeFor(targetType string) rig.ComponentType {
	return componentTargetTypes[targetType]
}

// CanonicalizeLanguage lowercases and canonicalizes a CMake compile
// language name ("CXX" -> "cxx", "Java" -> "java").
func CanonicalizeLanguage(lang string) string {
	switch strings.ToUpper(lang) {
	case "CXX":
		return "cxx"
	case "C":
		return "c"
	case "JAVA":
		return "java"
	case "CSHARP":
		return "csharp"
	default:
		return strings.ToLower(lang)
	}
}

// TargetLanguage returns the canonicalized language of the target's
// first compile group, or "" if the target has none (e.g. a header-only
// interface or a utility with no compiled sources).
func TargetLanguage(t *Target) string {
	if len(t.CompileGroups) == 0 {
		return ""
	}
	return CanonicalizeLanguage(t.CompileGroups[0].Language)
}
