// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeDependencies_ParsesClasspathAndPath(t *testing.T) {
	props := map[string]map[string]string{
		"app": {
			"VS_DEBUGGER_ENVIRONMENT": "PATH=bin/util.dll;bin/core.dll\nCLASSPATH=lib/foo.jar:lib/bar.jar",
		},
	}
	got := RuntimeDependencies("app", props)
	assert.ElementsMatch(t, []string{"util.dll", "core.dll", "foo.jar", "bar.jar"}, got)
}

func TestRuntimeDependencies_IgnoresUnknownEnvKeys(t *testing.T) {
	props := map[string]map[string]string{
		"app": {
			"VS_DEBUGGER_ENVIRONMENT": "SOME_OTHER_VAR=bin/thing.dll",
		},
	}
	assert.Empty(t, RuntimeDependencies("app", props))
}

func TestRuntimeDependencies_DropsEntriesWithoutKnownSuffix(t *testing.T) {
	props := map[string]map[string]string{
		"app": {
			"VS_DEBUGGER_ENVIRONMENT": "PATH=bin/readme.txt;bin/core.so",
		},
	}
	assert.Equal(t, []string{"core.so"}, RuntimeDependencies("app", props))
}

func TestRuntimeDependencies_NoPropertyIsEmpty(t *testing.T) {
	assert.Empty(t, RuntimeDependencies("app", map[string]map[string]string{}))
}

func TestMatchRuntimeDependencies_ResolvesAndDedups(t *testing.T) {
	artifacts := map[string]string{
		"util.dll": "util_lib",
		"core.dll": "core_lib",
	}
	got := MatchRuntimeDependencies([]string{"util.dll", "core.dll", "util.dll"}, artifacts)
	assert.Equal(t, []string{"util_lib", "core_lib"}, got)
}

func TestMatchRuntimeDependencies_SilentlyDropsUnmatched(t *testing.T) {
	got := MatchRuntimeDependencies([]string{"unknown.dll"}, map[string]string{})
	assert.Empty(t, got)
}
