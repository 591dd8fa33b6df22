// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvidence(t *testing.T, lines []string) Evidence {
	t.Helper()
	e, err := NewEvidence(lines, nil)
	require.NoError(t, err)
	return e
}

func TestMain(m *testing.M) {
	resetIDCounters()
	m.Run()
}

func TestNewEvidence_RequiresLineOrCallStack(t *testing.T) {
	_, err := NewEvidence(nil, nil)
	require.Error(t, err)
	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, InvalidEvidence, modelErr.Kind)

	_, err = NewEvidence([]string{"CMakeLists.txt:10"}, nil)
	require.NoError(t, err)

	_, err = NewEvidence(nil, []string{"add_executable", "add_test"})
	require.NoError(t, err)
}

func TestNewComponent_RequiresTypeAndLanguage(t *testing.T) {
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})

	_, err := NewComponent("hello", "", "cxx", nil, "bin/hello", nil, []Evidence{ev})
	require.Error(t, err)
	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, InvalidComponent, modelErr.Kind)

	_, err = NewComponent("hello", ComponentExecutable, "", nil, "bin/hello", nil, []Evidence{ev})
	require.Error(t, err)

	c, err := NewComponent("hello", ComponentExecutable, "cxx", []string{"main.cpp"}, "bin/hello", nil, []Evidence{ev})
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Name)
	assert.Equal(t, NodeComponent, c.NodeKind())
}

func TestRIG_AddComponent_IsIdempotentByID(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	c, err := NewComponent("hello", ComponentExecutable, "cxx", []string{"main.cpp"}, "bin/hello", nil, []Evidence{ev})
	require.NoError(t, err)

	require.NoError(t, g.AddComponent(c))
	require.NoError(t, g.AddComponent(c))

	assert.Len(t, g.Components(), 1)
	got, ok := g.GetComponentByID(c.ID)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestRIG_AddComponent_PropagatesDependencyAndEvidenceClosure(t *testing.T) {
	g := New()
	libEv := mustEvidence(t, []string{"CMakeLists.txt:2"})
	lib, err := NewComponent("libfoo", ComponentStaticLibrary, "cxx", []string{"foo.cpp"}, "lib/libfoo.a", nil, []Evidence{libEv})
	require.NoError(t, err)

	exeEv := mustEvidence(t, []string{"CMakeLists.txt:10"})
	exe, err := NewComponent("hello", ComponentExecutable, "cxx", []string{"main.cpp"}, "bin/hello",
		[]Node{lib}, []Evidence{exeEv})
	require.NoError(t, err)

	require.NoError(t, g.AddComponent(exe))

	assert.Len(t, g.Components(), 2)
	_, ok := g.GetComponentByID(lib.ID)
	assert.True(t, ok, "dependency should be registered by propagation")

	_, ok = g.GetEvidenceByID(libEv.ID)
	assert.True(t, ok, "dependency evidence should be registered by propagation")
	_, ok = g.GetEvidenceByID(exeEv.ID)
	assert.True(t, ok)
}

func TestRIG_Propagate_IsCycleSafe(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})

	a := NewAggregator("a", nil, []Evidence{ev})
	b := NewAggregator("b", []Node{a}, []Evidence{ev})
	// Manually introduce a cycle: a depends on b, b depends on a.
	a.DependsOn = append(a.DependsOn, b)
	a.DependsOnIDs[b.ID] = struct{}{}

	require.NoError(t, g.AddAggregator(a))

	assert.Len(t, g.Aggregators(), 2)
}

func TestRIG_Runner_ArgsNodesPropagate(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:3"})
	exe, err := NewComponent("codegen", ComponentExecutable, "cxx", []string{"codegen.cpp"}, "bin/codegen", nil, []Evidence{ev})
	require.NoError(t, err)

	r := NewRunner("run_codegen", []string{"bin/codegen", "--out", "gen.cpp"}, nil, []Evidence{ev})
	r.AddArgsNode(exe)

	require.NoError(t, g.AddRunner(r))
	_, ok := g.GetComponentByID(exe.ID)
	assert.True(t, ok)
}

func TestRIG_AddTest_RegistersComponentVariantExecutable(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:20"})
	exe, err := NewComponent("unit_tests", ComponentExecutable, "cxx", []string{"tests.cpp"}, "bin/unit_tests", nil, []Evidence{ev})
	require.NoError(t, err)
	subject, err := NewComponent("libfoo", ComponentStaticLibrary, "cxx", []string{"foo.cpp"}, "lib/libfoo.a", nil, []Evidence{ev})
	require.NoError(t, err)

	test := NewTestDefinition("unit_tests", "ctest", exe, []string{"tests.cpp"}, nil, []Evidence{ev})
	test.AddTestComponent(exe)
	test.AddComponentBeingTested(subject)

	require.NoError(t, g.AddTest(test))

	assert.Equal(t, NodeComponent, test.TestExecutableKind)
	_, ok := g.GetComponentByID(exe.ID)
	assert.True(t, ok)
	_, ok = g.GetComponentByID(subject.ID)
	assert.True(t, ok)
}

func TestRIG_HydrateAll_RebuildsObjectReferencesFromIDSets(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:2"})
	lib, err := NewComponent("libfoo", ComponentStaticLibrary, "cxx", []string{"foo.cpp"}, "lib/libfoo.a", nil, []Evidence{ev})
	require.NoError(t, err)
	exe, err := NewComponent("hello", ComponentExecutable, "cxx", []string{"main.cpp"}, "bin/hello", []Node{lib}, []Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, g.AddComponent(exe))

	// Simulate a load from storage: wipe the object-reference slice but
	// keep the id set, as a store loader would after reconstructing rows.
	exe.DependsOn = nil
	require.NoError(t, g.HydrateAll())

	require.Len(t, exe.DependsOn, 1)
	assert.Equal(t, lib.ID, exe.DependsOn[0].NodeID())
}

func TestRIG_GetAllRIGNodes_ExcludesTests(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	exe, err := NewComponent("hello", ComponentExecutable, "cxx", []string{"main.cpp"}, "bin/hello", nil, []Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, g.AddComponent(exe))

	test := NewTestDefinition("hello_test", "ctest", exe, nil, nil, []Evidence{ev})
	require.NoError(t, g.AddTest(test))

	nodes := g.GetAllRIGNodes()
	for _, n := range nodes {
		assert.NotEqual(t, NodeTest, n.NodeKind())
	}
	assert.Len(t, g.AllNodes(), len(nodes)+1)
}

func TestRIG_ComponentCounts(t *testing.T) {
	g := New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	exe, err := NewComponent("hello", ComponentExecutable, "cxx", nil, "bin/hello", nil, []Evidence{ev})
	require.NoError(t, err)
	lib, err := NewComponent("libfoo", ComponentStaticLibrary, "cxx", nil, "lib/libfoo.a", nil, []Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, g.AddComponent(exe))
	require.NoError(t, g.AddComponent(lib))

	byType := g.ComponentCountsByType()
	assert.Equal(t, 1, byType[ComponentExecutable])
	assert.Equal(t, 1, byType[ComponentStaticLibrary])

	byLang := g.ComponentCountsByLanguage()
	assert.Equal(t, 2, byLang["cxx"])
}
