// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/rigraph/pkg/rig"
)

func TestClassifyTarget_BuildableTypesAreComponents(t *testing.T) {
	for _, typ := range []string{"EXECUTABLE", "STATIC_LIBRARY", "SHARED_LIBRARY", "MODULE_LIBRARY", "OBJECT_LIBRARY"} {
		target := &Target{Name: "thing", Type: typ}
		assert.Equal(t, ClassComponent, ClassifyTarget(target, nil), "type %s", typ)
	}
}

func TestClassifyTarget_InterfaceLibraryIsSkipped(t *testing.T) {
	target := &Target{Name: "iface", Type: "INTERFACE_LIBRARY"}
	assert.Equal(t, ClassSkip, ClassifyTarget(target, nil))
}

func TestClassifyTarget_UtilityWithCommandIsRunner(t *testing.T) {
	target := &Target{Name: "gen_docs", Type: "UTILITY"}
	customTargets := map[string]CustomTargetRecord{
		"gen_docs": {HasCommand: true},
	}
	assert.Equal(t, ClassRunner, ClassifyTarget(target, customTargets))
}

func TestClassifyTarget_UtilityWithOnlyDependsIsAggregator(t *testing.T) {
	target := &Target{Name: "all_libs", Type: "UTILITY"}
	customTargets := map[string]CustomTargetRecord{
		"all_libs": {HasDepends: true},
	}
	assert.Equal(t, ClassAggregator, ClassifyTarget(target, customTargets))
}

func TestClassifyTarget_UtilityWithArtifactIsSkipped(t *testing.T) {
	target := &Target{
		Name:      "packaged",
		Type:      "UTILITY",
		Artifacts: []TargetArtifact{{Path: "packaged.zip"}},
	}
	customTargets := map[string]CustomTargetRecord{
		"packaged": {HasCommand: true},
	}
	assert.Equal(t, ClassSkip, ClassifyTarget(target, customTargets))
}

func TestClassifyTarget_UtilityWithNoMatchingRecordIsSkipped(t *testing.T) {
	target := &Target{Name: "mystery", Type: "UTILITY"}
	assert.Equal(t, ClassSkip, ClassifyTarget(target, map[string]CustomTargetRecord{}))
}

func TestComponentTypeFor(t *testing.T) {
	assert.Equal(t, rig.ComponentExecutable, ComponentTypeFor("EXECUTABLE"))
	assert.Equal(t, rig.ComponentSharedLibrary, ComponentTypeFor("SHARED_LIBRARY"))
	assert.Equal(t, rig.ComponentStaticLibrary, ComponentTypeFor("STATIC_LIBRARY"))
}

func TestCanonicalizeLanguage(t *testing.T) {
	assert.Equal(t, "cxx", CanonicalizeLanguage("CXX"))
	assert.Equal(t, "c", CanonicalizeLanguage("C"))
	assert.Equal(t, "java", CanonicalizeLanguage("Java"))
	assert.Equal(t, "csharp", CanonicalizeLanguage("CSharp"))
	assert.Equal(t, "swift", CanonicalizeLanguage("Swift"))
}

func TestTargetLanguage_EmptyWhenNoCompileGroups(t *testing.T) {
	target := &Target{Name: "header_only"}
	assert.Equal(t, "", TargetLanguage(target))
}

func TestTargetLanguage_UsesFirstCompileGroup(t *testing.T) {
	target := &Target{CompileGroups: []TargetCompileGroup{{Language: "CXX"}}}
	assert.Equal(t, "cxx", TargetLanguage(target))
}
