// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ReplacesProcessScopedIDsWithStableKeys(t *testing.T) {
	g := sampleRIG(t)
	n := Normalize(g)

	exe, ok := n.GetComponentByID("hello:executable:cxx")
	require.True(t, ok, "normalized component should be keyed by name:type:language")
	assert.Equal(t, "hello", exe.Name)

	lib, ok := n.GetComponentByID("libfoo:static_library:cxx")
	require.True(t, ok)
	assert.Contains(t, exe.DependsOnIDs, lib.ID, "dependency id sets should be remapped alongside the dependent")

	_, ok = n.GetRunnerByID("run_hello:runner")
	assert.True(t, ok)
	_, ok = n.GetAggregatorByID("all:aggregator")
	assert.True(t, ok)
	_, ok = n.GetTestByID("hello_test:test:ctest")
	assert.True(t, ok)
}

func TestNormalize_TwoIndependentRunsConvergeOnIdenticalIDs(t *testing.T) {
	a := Normalize(sampleRIG(t))
	b := Normalize(sampleRIG(t))

	aJSON, err := json.Marshal(ToCanonical(a))
	require.NoError(t, err)
	bJSON, err := json.Marshal(ToCanonical(b))
	require.NoError(t, err)

	var aData, bData any
	require.NoError(t, json.Unmarshal(aJSON, &aData))
	require.NoError(t, json.Unmarshal(bJSON, &bData))
	assert.Equal(t, sortJSONForComparison(aData), sortJSONForComparison(bData))
}

func TestNormalize_IsIdempotentOnAnAlreadyNormalizedGraph(t *testing.T) {
	once := Normalize(sampleRIG(t))
	twice := Normalize(once)

	onceJSON, err := json.Marshal(ToCanonical(once))
	require.NoError(t, err)
	twiceJSON, err := json.Marshal(ToCanonical(twice))
	require.NoError(t, err)
	assert.JSONEq(t, string(onceJSON), string(twiceJSON))
}
