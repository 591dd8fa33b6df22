// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSampleRIG_BuildsAFullyHydratedGraph verifies the fixture exercises
// every node kind and every cross-reference.
func TestSampleRIG_BuildsAFullyHydratedGraph(t *testing.T) {
	g := SampleRIG(t)

	require.Len(t, g.Components(), 2)
	require.Len(t, g.Runners(), 1)
	require.Len(t, g.Aggregators(), 1)
	require.Len(t, g.Tests(), 1)

	exe, ok := g.GetRIGNodeByName("hello")
	require.True(t, ok)
	assert.Len(t, exe.Dependencies(), 1)
}

// TestOpenTestStore_ReturnsAnEmptyUsableStore verifies a fresh store can
// be saved to and loaded from.
func TestOpenTestStore_ReturnsAnEmptyUsableStore(t *testing.T) {
	s := OpenTestStore(t)
	require.NotNil(t, s)

	require.NoError(t, s.Save(context.Background(), SampleRIG(t), "test"))
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Components(), 2)
}

// TestSeededTestStore_SavesTheGivenGraph verifies the store returned by
// SeededTestStore already holds the seeded graph.
func TestSeededTestStore_SavesTheGivenGraph(t *testing.T) {
	s := SeededTestStore(t, SampleRIG(t), "seeded")

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Components(), 2)
}

// TestOpenTestStore_IsolatesEachTest verifies each call produces an
// independent, empty-until-seeded database.
func TestOpenTestStore_IsolatesEachTest(t *testing.T) {
	s1 := OpenTestStore(t)
	require.NoError(t, s1.Save(context.Background(), SampleRIG(t), "one"))

	s2 := OpenTestStore(t)
	_, err := s2.Load(context.Background())
	require.Error(t, err, "a fresh store should start empty")
}
