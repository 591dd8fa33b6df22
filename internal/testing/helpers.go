// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kraklabs/rigraph/pkg/rig"
	"github.com/kraklabs/rigraph/pkg/store"
)

// SampleRIG builds a small but representative graph exercising every node
// kind and cross-reference: a library linking an external package, an
// executable depending on it, a runner invoking the executable, an
// aggregator grouping both, and a test running the executable against the
// library.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    g := testing.SampleRIG(t)
//	    diags, err := validate.Validate(g)
//	    require.NoError(t, err)
//	}
func SampleRIG(t *testing.T) *rig.RIG {
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
	fatalIfErr(t, err)
	lib, err := rig.NewComponent("libfoo", rig.ComponentStaticLibrary, "cxx",
		[]string{"src/foo.cpp"}, "lib/libfoo.a", nil, []rig.Evidence{libEv})
	fatalIfErr(t, err)

	vcpkg := rig.NewPackageManager("vcpkg", "fmt")
	fmtPkg := rig.NewExternalPackage("fmt", vcpkg)
	lib.AddExternalPackage(fmtPkg)

	exeEv, err := rig.NewEvidence([]string{"CMakeLists.txt:10"}, []string{"add_executable(hello ...)"})
	fatalIfErr(t, err)
	exe, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx",
		[]string{"src/main.cpp"}, "bin/hello", []rig.Node{lib}, []rig.Evidence{exeEv})
	fatalIfErr(t, err)
	exe.Locations = []string{"install/bin/hello"}

	runner := rig.NewRunner("run_hello", []string{"bin/hello", "--version"}, []rig.Node{exe}, []rig.Evidence{exeEv})
	runner.AddArgsNode(exe)

	aggEv, err := rig.NewEvidence([]string{"CMakeLists.txt:20"}, nil)
	fatalIfErr(t, err)
	agg := rig.NewAggregator("all", []rig.Node{exe, lib}, []rig.Evidence{aggEv})

	testEv, err := rig.NewEvidence([]string{"CMakeLists.txt:30"}, nil)
	fatalIfErr(t, err)
	testDef := rig.NewTestDefinition("hello_test", "ctest", exe, []string{"tests/hello_test.cpp"}, nil, []rig.Evidence{testEv})
	testDef.AddTestComponent(exe)
	testDef.AddComponentBeingTested(lib)

	fatalIfErr(t, g.AddComponent(exe))
	fatalIfErr(t, g.AddComponent(lib))
	fatalIfErr(t, g.AddRunner(runner))
	fatalIfErr(t, g.AddAggregator(agg))
	fatalIfErr(t, g.AddTest(testDef))
	fatalIfErr(t, g.HydrateAll())

	return g
}

// OpenTestStore opens a SQLite-backed *store.Store in a fresh temp
// directory. The store is closed automatically when the test finishes.
//
// Example:
//
//	s := testing.OpenTestStore(t)
//	require.NoError(t, s.Save(context.Background(), testing.SampleRIG(t), "fixture"))
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "rig.db")
	s, err := store.Open(dbPath)
	fatalIfErr(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeededTestStore opens a temp store and saves g into it under
// description, returning the store ready for Load/Compare calls.
func SeededTestStore(t *testing.T, g *rig.RIG, description string) *store.Store {
	t.Helper()

	s := OpenTestStore(t)
	fatalIfErr(t, s.Save(context.Background(), g, description))
	return s
}

func fatalIfErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
