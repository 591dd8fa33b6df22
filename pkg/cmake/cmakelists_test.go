// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempLists(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "CMakeLists.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseListsFile_AddCustomTargetDistinguishesCommandFromDepends(t *testing.T) {
	content := `
add_custom_target(generate_docs
    COMMAND doxygen Doxyfile
    WORKING_DIRECTORY ${CMAKE_SOURCE_DIR}
    COMMENT "Generating docs"
)
add_custom_target(all_libs DEPENDS core_lib util_lib)
`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	docs, ok := idx.CustomTargets["generate_docs"]
	require.True(t, ok)
	assert.True(t, docs.HasCommand)
	assert.False(t, docs.HasDepends)

	libs, ok := idx.CustomTargets["all_libs"]
	require.True(t, ok)
	assert.False(t, libs.HasCommand)
	assert.True(t, libs.HasDepends)
	assert.ElementsMatch(t, []string{"core_lib", "util_lib"}, libs.Params["DEPENDS"])
}

func TestParseListsFile_MultiLineCallSpansLines(t *testing.T) {
	content := "add_custom_target(slow_build\n  COMMAND\n    make\n    -j8\n)\n"
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	rec, ok := idx.CustomTargets["slow_build"]
	require.True(t, ok)
	assert.True(t, rec.HasCommand)
	assert.ElementsMatch(t, []string{"make", "-j8"}, rec.Params["COMMAND"])
}

func TestParseListsFile_FindPackageRequiredAndComponents(t *testing.T) {
	content := `find_package(Boost REQUIRED COMPONENTS filesystem system)`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	require.Len(t, idx.FindPackages, 1)
	fp := idx.FindPackages[0]
	assert.Equal(t, "Boost", fp.Name)
	assert.True(t, fp.Required)
	assert.ElementsMatch(t, []string{"filesystem", "system"}, fp.Components)
}

func TestParseListsFile_AddTestNameStyleAndPositional(t *testing.T) {
	content := `
add_test(NAME unit_tests COMMAND test_runner --gtest_color=no)
add_test(legacy_test legacy_runner arg1 arg2)
`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	require.Len(t, idx.AddTests, 2)
	assert.Equal(t, "unit_tests", idx.AddTests[0].Name)
	assert.Equal(t, "test_runner", idx.AddTests[0].Command)
	assert.Equal(t, []string{"--gtest_color=no"}, idx.AddTests[0].Arguments)

	assert.Equal(t, "legacy_test", idx.AddTests[1].Name)
	assert.Equal(t, "legacy_runner", idx.AddTests[1].Command)
	assert.Equal(t, []string{"arg1", "arg2"}, idx.AddTests[1].Arguments)
}

func TestParseListsFile_GeneratorExpressionCleanedInAddTest(t *testing.T) {
	content := `add_test(NAME runs_app COMMAND $<TARGET_FILE:app>)`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	require.Len(t, idx.AddTests, 1)
	assert.Equal(t, "app", idx.AddTests[0].Command)
}

func TestParseListsFile_TargetLinkLibrariesSkipsVisibilityKeywords(t *testing.T) {
	content := `target_link_libraries(app PUBLIC core_lib PRIVATE util_lib)`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	assert.ElementsMatch(t, []string{"core_lib", "util_lib"}, idx.LinkLibraries["app"])
}

func TestParseListsFile_SetTargetPropertiesRecordsRuntimeEnvironment(t *testing.T) {
	content := `set_target_properties(app PROPERTIES VS_DEBUGGER_ENVIRONMENT "PATH=bin/util.dll")`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	props, ok := idx.TargetProperties["app"]
	require.True(t, ok)
	assert.Equal(t, "PATH=bin/util.dll", props["VS_DEBUGGER_ENVIRONMENT"])
}

func TestParseListsFile_SetOutputDirOnlyMatchesOutputDirectoryVars(t *testing.T) {
	content := `
set(CMAKE_RUNTIME_OUTPUT_DIRECTORY ${CMAKE_BINARY_DIR}/bin)
set(SOME_OTHER_VAR value)
`
	path := writeTempLists(t, content)
	idx := NewListsIndex()
	require.NoError(t, ParseListsFile(path, "CMakeLists.txt", idx))

	assert.Contains(t, idx.OutputDirs, "CMAKE_RUNTIME_OUTPUT_DIRECTORY")
	assert.NotContains(t, idx.OutputDirs, "SOME_OTHER_VAR")
}

func TestSplitArgs_QuotedSpanIsOneToken(t *testing.T) {
	out := splitArgs(`foo "a value with spaces" bar`)
	assert.Equal(t, []string{"foo", "a value with spaces", "bar"}, out)
}
