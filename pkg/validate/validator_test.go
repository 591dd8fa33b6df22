// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rigraph/pkg/rig"
)

func mustEvidence(t *testing.T, lines []string) rig.Evidence {
	t.Helper()
	e, err := rig.NewEvidence(lines, nil)
	require.NoError(t, err)
	return e
}

func TestValidate_MissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.cpp"), []byte("int main(){}"), 0o644))

	g := rig.New()
	g.SetRepositoryInfo(&rig.RepositoryInfo{RootPath: dir})

	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	exe, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx",
		[]string{"main.cpp", "missing.cpp"}, "bin/hello", nil, []rig.Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, g.AddComponent(exe))

	diags, err := Validate(g)
	require.NoError(t, err)

	var found bool
	for _, d := range diags {
		if d.Category == CategoryMissingSourceFile && d.FilePath == "missing.cpp" {
			found = true
		}
	}
	assert.True(t, found, "expected a missing_source_file diagnostic for missing.cpp")
}

func TestValidate_CircularDependency(t *testing.T) {
	g := rig.New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})

	a := rig.NewAggregator("a", nil, []rig.Evidence{ev})
	b := rig.NewAggregator("b", []rig.Node{a}, []rig.Evidence{ev})
	a.DependsOn = append(a.DependsOn, b)
	a.DependsOnIDs[b.ID] = struct{}{}

	require.NoError(t, g.AddAggregator(b))

	diags, err := Validate(g)
	require.NoError(t, err)

	var found bool
	for _, d := range diags {
		if d.Category == CategoryCircularDependency {
			found = true
		}
	}
	assert.True(t, found, "expected a circular_dependency diagnostic")
}

func TestValidate_MissingTestExecutable(t *testing.T) {
	g := rig.New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	test := rig.NewTestDefinition("orphan_test", "ctest", nil, nil, nil, []rig.Evidence{ev})
	require.NoError(t, g.AddTest(test))

	diags, err := Validate(g)
	require.NoError(t, err)

	var found bool
	for _, d := range diags {
		if d.Category == CategoryMissingTestExecutable && d.NodeName == "orphan_test" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_MissingEvidence(t *testing.T) {
	g := rig.New()
	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	exe, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx", nil, "bin/hello", nil, []rig.Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, g.AddComponent(exe))

	// Force an empty evidence list to simulate a node hydrated from a
	// corrupt store row with no evidence join rows.
	exe.Evidence = nil
	exe.EvidenceIDs = map[string]struct{}{}

	diags, err := Validate(g)
	require.NoError(t, err)

	var found bool
	for _, d := range diags {
		if d.Category == CategoryMissingEvidence && d.NodeName == "hello" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_CleanGraphProducesNoDiagnostics(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.cpp"), []byte("int main(){}"), 0o644))

	g := rig.New()
	g.SetRepositoryInfo(&rig.RepositoryInfo{RootPath: dir})

	ev := mustEvidence(t, []string{"CMakeLists.txt:1"})
	exe, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx",
		[]string{"main.cpp"}, "bin/hello", nil, []rig.Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, g.AddComponent(exe))

	test := rig.NewTestDefinition("hello_test", "ctest", exe, []string{"main.cpp"}, nil, []rig.Evidence{ev})
	require.NoError(t, g.AddTest(test))

	diags, err := Validate(g)
	require.NoError(t, err)
	assert.Empty(t, diags)
}
