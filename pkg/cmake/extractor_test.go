// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rigraph/pkg/rig"
)

func TestDependencyNames_ResolvesFileAPIAndLinkLibraries(t *testing.T) {
	targetsByName := map[string]*Target{
		"app":      {ID: "app-id", Name: "app", Dependencies: []TargetDependency{{ID: "core-id"}}},
		"core_lib": {ID: "core-id", Name: "core_lib"},
		"util_lib": {ID: "util-id", Name: "util_lib"},
	}
	idx := NewListsIndex()
	idx.LinkLibraries["app"] = []string{"util_lib", "not_a_target"}

	names := dependencyNames(targetsByName["app"], idx, targetsByName)
	assert.ElementsMatch(t, []string{"core_lib", "util_lib"}, names)
}

func TestDependencyNames_IncludesCustomTargetDepends(t *testing.T) {
	targetsByName := map[string]*Target{
		"all_libs": {ID: "all-id", Name: "all_libs"},
		"core_lib": {ID: "core-id", Name: "core_lib"},
	}
	idx := NewListsIndex()
	idx.CustomTargets["all_libs"] = CustomTargetRecord{
		HasDepends: true,
		Params:     map[string][]string{"DEPENDS": {"core_lib"}},
	}

	names := dependencyNames(targetsByName["all_libs"], idx, targetsByName)
	assert.Equal(t, []string{"core_lib"}, names)
}

func TestTargetReferencesPackage_MatchesImportedTargetNamespace(t *testing.T) {
	idx := NewListsIndex()
	idx.LinkLibraries["app"] = []string{"Boost::filesystem"}
	target := &Target{Name: "app"}
	assert.True(t, targetReferencesPackage(target, idx, "Boost"))
	assert.False(t, targetReferencesPackage(target, idx, "Qt6"))
}

func TestResolveTestExecutable_MatchesByTargetNameThenArtifactBasename(t *testing.T) {
	comp, err := rig.NewComponent("app", rig.ComponentExecutable, "cxx", []string{"app.cpp"}, "bin/app", nil, mustEvidenceList(t))
	require.NoError(t, err)
	nodesByName := map[string]rig.Node{"app": comp}
	ev := mustEvidenceList(t)[0]

	got, sourceFiles := resolveTestExecutable(t.TempDir(), AddTestRecord{Name: "t1", Command: "app"}, nodesByName, nil, ev)
	assert.Same(t, comp, got)
	assert.Equal(t, []string{"app.cpp"}, sourceFiles)

	artifacts := map[string]string{"app.exe": "app"}
	got, _ = resolveTestExecutable(t.TempDir(), AddTestRecord{Name: "t2", Command: "bin/app.exe"}, nodesByName, artifacts, ev)
	assert.Same(t, comp, got)

	got, sourceFiles = resolveTestExecutable(t.TempDir(), AddTestRecord{Command: ""}, nodesByName, artifacts, ev)
	assert.Nil(t, got)
	assert.Nil(t, sourceFiles)
}

// TestResolveTestExecutable_SynthesizesRunnerForUnknownCommand covers
// spec §4.4 step 6 / concrete §8 scenario 4: a COMMAND token that
// doesn't resolve to any known component or artifact becomes a
// synthesized Runner, with known-node arguments recorded as args_nodes
// and readable-on-disk arguments recorded as source_files.
func TestResolveTestExecutable_SynthesizesRunnerForUnknownCommand(t *testing.T) {
	comp, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx", []string{"hello.cpp"}, "bin/hello", nil, mustEvidenceList(t))
	require.NoError(t, err)
	nodesByName := map[string]rig.Node{"hello": comp}
	ev := mustEvidenceList(t)[0]

	repoRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "scripts"), 0o755))
	scriptPath := filepath.Join(repoRoot, "scripts", "run.py")
	require.NoError(t, os.WriteFile(scriptPath, []byte("# test runner\n"), 0o644))

	rec := AddTestRecord{
		Name:    "script_test",
		Command: "python3",
		Arguments: []string{
			"scripts/run.py",
			"--exe",
			"hello",
		},
	}

	got, sourceFiles := resolveTestExecutable(repoRoot, rec, nodesByName, nil, ev)
	runner, ok := got.(*rig.Runner)
	require.True(t, ok, "expected a synthesized *rig.Runner, got %T", got)
	assert.Equal(t, "python3", runner.NodeName())
	assert.Equal(t, []string{"scripts/run.py", "--exe", "hello"}, runner.Arguments)
	require.Len(t, runner.ArgsNodes, 1)
	assert.Same(t, comp, runner.ArgsNodes[0])
	assert.Equal(t, []string{"scripts/run.py"}, sourceFiles)
}

// TestTransitiveComponentDependencies_WalksClosureCycleSafe covers spec
// §4.4 step 6 / concrete §8 scenario 3: test_components for a Component
// executable is the transitive closure of its own depends_on, which takes
// in the executable itself when a cycle leads back to it, and a
// dependency cycle doesn't loop forever.
func TestTransitiveComponentDependencies_WalksClosureCycleSafe(t *testing.T) {
	ev := mustEvidenceList(t)
	utils, err := rig.NewComponent("utils", rig.ComponentStaticLibrary, "cxx", nil, "", nil, ev)
	require.NoError(t, err)
	core, err := rig.NewComponent("core", rig.ComponentStaticLibrary, "cxx", nil, "", nil, ev)
	require.NoError(t, err)
	hello, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx", nil, "", nil, ev)
	require.NoError(t, err)

	rig.AddDependency(hello, core)
	rig.AddDependency(core, utils)
	rig.AddDependency(utils, hello) // cycle back to the root

	deps := transitiveComponentDependencies(hello)
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.NodeName())
	}
	assert.ElementsMatch(t, []string{"core", "utils", "hello"}, names)
}

// TestWireDependencies_AddsRuntimeDependencyFromVSDebuggerEnvironment
// covers spec §4.4 step 4 / concrete §8 scenario 5: a target whose
// VS_DEBUGGER_ENVIRONMENT names an artifact belonging to another node
// gets that node appended to depends_on, even with no File API or
// target_link_libraries edge between them.
func TestWireDependencies_AddsRuntimeDependencyFromVSDebuggerEnvironment(t *testing.T) {
	ev := mustEvidenceList(t)
	app, err := rig.NewComponent("app", rig.ComponentExecutable, "java", nil, "", nil, ev)
	require.NoError(t, err)
	lib1, err := rig.NewComponent("lib1", rig.ComponentSharedLibrary, "java", nil, "lib1.jar", nil, ev)
	require.NoError(t, err)

	nodesByName := map[string]rig.Node{"app": app, "lib1": lib1}
	targetsByName := map[string]*Target{
		"app":  {ID: "app-id", Name: "app"},
		"lib1": {ID: "lib1-id", Name: "lib1"},
	}
	idx := NewListsIndex()
	idx.TargetProperties["app"] = map[string]string{
		"VS_DEBUGGER_ENVIRONMENT": "CLASSPATH=lib1.jar",
	}
	artifactsByBasename := map[string]string{"lib1.jar": "lib1"}

	wireDependencies(nodesByName, targetsByName, idx, artifactsByBasename)

	var depNames []string
	for _, d := range app.Dependencies() {
		depNames = append(depNames, d.NodeName())
	}
	assert.Contains(t, depNames, "lib1")
}

// TestRepositoryInfo_DerivesNameAndDirectoriesFromCodemodelAndCache
// covers spec §4.4 step 2: repository name from the codemodel's first
// project (not the checkout directory name), build directory relative
// to the repo root, and install/output directories from the cache.
func TestRepositoryInfo_DerivesNameAndDirectoriesFromCodemodelAndCache(t *testing.T) {
	repoRoot := t.TempDir()
	buildDir := filepath.Join(repoRoot, "build")

	codemodel := &CodemodelReply{
		Configurations: []CodemodelConfiguration{{
			Projects: []CodemodelProject{{Name: "widgets"}},
		}},
	}
	codemodel.Paths.Build = buildDir

	cache := &CacheReply{Entries: []CacheEntry{
		{Name: "CMAKE_INSTALL_PREFIX", Value: "/usr/local"},
		{Name: "widgets_BINARY_DIR", Value: buildDir},
	}}

	info := repositoryInfo(repoRoot, codemodel, codemodel.Configurations[0], cache)
	assert.Equal(t, "widgets", info.Name)
	assert.Equal(t, "build", info.BuildDirectory)
	assert.Equal(t, "/usr/local", info.InstallDirectory)
	assert.Equal(t, buildDir, info.OutputDirectory)
}

func TestRepositoryInfo_FallsBackToCheckoutDirectoryNameWithoutProject(t *testing.T) {
	repoRoot := t.TempDir()
	codemodel := &CodemodelReply{}
	cache := &CacheReply{}

	info := repositoryInfo(repoRoot, codemodel, CodemodelConfiguration{}, cache)
	assert.Equal(t, filepath.Base(repoRoot), info.Name)
}

func TestEvidenceForTarget_FallsBackToTargetNameWithoutBacktrace(t *testing.T) {
	target := &Target{Name: "app"}
	ev, err := evidenceForTarget(target)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, ev.Line)
}

func TestEvidenceForTarget_UsesResolvedBacktrace(t *testing.T) {
	target := &Target{
		Name:      "app",
		Backtrace: 0,
		BacktraceGraph: BacktraceGraph{
			Files: []string{"CMakeLists.txt"},
			Nodes: []BacktraceNode{{File: 0, Line: 10}},
		},
	}
	ev, err := evidenceForTarget(target)
	require.NoError(t, err)
	assert.Equal(t, []string{"CMakeLists.txt:10"}, ev.Line)
}

func mustEvidenceList(t *testing.T) []rig.Evidence {
	t.Helper()
	ev, err := rig.NewEvidence([]string{"x"}, nil)
	require.NoError(t, err)
	return []rig.Evidence{ev}
}

// TestExtract_EndToEndAgainstFixtureProject drives the full Extract
// pipeline against a small real CMake project: a static library, an
// executable linking it, a CTest binding directly to that executable,
// and a second test whose COMMAND doesn't name any target, forcing
// Runner synthesis. Requires cmake and ctest on PATH; skips otherwise,
// per the example pack's convention for external-tool-gated tests.
func TestExtract_EndToEndAgainstFixtureProject(t *testing.T) {
	if _, err := exec.LookPath("cmake"); err != nil {
		t.Skip("cmake not found on PATH")
	}
	if _, err := exec.LookPath("ctest"); err != nil {
		t.Skip("ctest not found on PATH")
	}

	repoRoot := t.TempDir()
	buildDir := filepath.Join(repoRoot, "build")
	scriptsDir := filepath.Join(repoRoot, "scripts")
	require.NoError(t, os.MkdirAll(scriptsDir, 0o755))

	writeFile(t, repoRoot, "CMakeLists.txt", `
cmake_minimum_required(VERSION 3.20)
project(hello_world C)

add_library(utils STATIC utils.c)
add_executable(hello hello.c)
target_link_libraries(hello PRIVATE utils)

enable_testing()
add_test(NAME hello_test COMMAND hello)
add_test(NAME script_test COMMAND python3 scripts/run.py --exe hello)
`)
	writeFile(t, repoRoot, "utils.c", "int util_value(void) { return 42; }\n")
	writeFile(t, repoRoot, "hello.c", "int util_value(void); int main(void) { return util_value() - 42; }\n")
	writeFile(t, repoRoot, "scripts/run.py", "# fixture test runner, never actually executed by this test\n")

	g, err := Extract(context.Background(), Options{
		RepoRoot: repoRoot,
		BuildDir: buildDir,
	})
	require.NoError(t, err)
	require.NotNil(t, g)

	var helloTest, scriptTest *rig.TestDefinition
	for _, test := range g.Tests() {
		switch test.NodeName() {
		case "hello_test":
			helloTest = test
		case "script_test":
			scriptTest = test
		}
	}
	require.NotNil(t, helloTest, "expected hello_test to be extracted")
	require.NotNil(t, scriptTest, "expected script_test to be extracted")

	// hello_test: executable is the hello Component, test_components is
	// the transitive closure of hello's own deps (utils), not hello itself.
	helloComp, ok := helloTest.TestExecutable.(*rig.Component)
	require.True(t, ok, "hello_test executable should be a *rig.Component")
	assert.Equal(t, "hello", helloComp.NodeName())
	require.Len(t, helloTest.TestComponents, 1)
	assert.Equal(t, "utils", helloTest.TestComponents[0].NodeName())
	assert.Empty(t, helloTest.ComponentsBeingTested)

	// script_test: COMMAND "python3" resolves to nothing known, so a
	// Runner is synthesized with "hello" as an args_node.
	runner, ok := scriptTest.TestExecutable.(*rig.Runner)
	require.True(t, ok, "script_test executable should be a synthesized *rig.Runner")
	assert.Equal(t, "python3", runner.NodeName())
	require.Len(t, runner.ArgsNodes, 1)
	assert.Equal(t, "hello", runner.ArgsNodes[0].NodeName())
	require.Len(t, scriptTest.TestComponents, 1)
	assert.Equal(t, "hello", scriptTest.TestComponents[0].NodeName())
}

func writeFile(t *testing.T, root, relPath, contents string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}
