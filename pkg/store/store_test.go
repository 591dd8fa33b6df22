// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// sampleRIG builds a small but representative graph exercising every
// node kind and cross-reference: a library, an executable that depends
// on it and links an external package, a runner that invokes the
// executable, an aggregator grouping both, and a test that runs the
// executable against the library.
func sampleRIG(t *testing.T) *rig.RIG {
	t.Helper()
	g := rig.New()

	g.SetRepositoryInfo(&rig.RepositoryInfo{
		Name:             "widget",
		RootPath:         "/repo/widget",
		BuildDirectory:   "build",
		ConfigureCommand: "cmake -S . -B build",
		TestCommand:      "ctest --test-dir build",
	})
	g.SetBuildSystemInfo(&rig.BuildSystemInfo{Name: "CMake/Ninja", Version: "3.28", BuildType: "Debug"})

	libEv, err := rig.NewEvidence([]string{"CMakeLists.txt:4"}, nil)
	require.NoError(t, err)
	lib, err := rig.NewComponent("libfoo", rig.ComponentStaticLibrary, "cxx",
		[]string{"src/foo.cpp"}, "lib/libfoo.a", nil, []rig.Evidence{libEv})
	require.NoError(t, err)

	vcpkg := rig.NewPackageManager("vcpkg", "fmt")
	fmtPkg := rig.NewExternalPackage("fmt", vcpkg)

	exeEv, err := rig.NewEvidence([]string{"CMakeLists.txt:10"}, []string{"add_executable(hello ...)"})
	require.NoError(t, err)
	exe, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx",
		[]string{"src/main.cpp"}, "bin/hello", []rig.Node{lib}, []rig.Evidence{exeEv})
	require.NoError(t, err)
	exe.Locations = []string{"install/bin/hello"}
	exe.AddExternalPackage(fmtPkg)

	runner := rig.NewRunner("run_hello", []string{"bin/hello", "--version"}, []rig.Node{exe}, []rig.Evidence{exeEv})
	runner.AddArgsNode(exe)

	aggEv, err := rig.NewEvidence([]string{"CMakeLists.txt:20"}, nil)
	require.NoError(t, err)
	agg := rig.NewAggregator("all", []rig.Node{exe, lib}, []rig.Evidence{aggEv})

	testEv, err := rig.NewEvidence([]string{"CMakeLists.txt:30"}, nil)
	require.NoError(t, err)
	test := rig.NewTestDefinition("hello_test", "ctest", exe, []string{"tests/hello_test.cpp"}, nil, []rig.Evidence{testEv})
	test.AddTestComponent(exe)
	test.AddComponentBeingTested(lib)

	require.NoError(t, g.AddComponent(exe))
	require.NoError(t, g.AddComponent(lib))
	require.NoError(t, g.AddRunner(runner))
	require.NoError(t, g.AddAggregator(agg))
	require.NoError(t, g.AddTest(test))
	require.NoError(t, g.HydrateAll())

	return g
}
