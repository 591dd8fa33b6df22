// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "rig.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad_RoundTripsIdentically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	original := sampleRIG(t)
	require.NoError(t, s.Save(ctx, original, "round trip"))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	diff, identical, err := Compare(original, loaded)
	require.NoError(t, err)
	assert.True(t, identical, "save/load should be a content-preserving round trip: %s", diff)
}

func TestStore_SaveLoad_PreservesAllCrossReferences(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleRIG(t), "cross references"))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	exe, ok := loaded.GetRIGNodeByName("hello")
	require.True(t, ok)
	assert.Len(t, exe.Dependencies(), 1)

	require.Len(t, loaded.Runners(), 1)
	runner := loaded.Runners()[0]
	assert.Len(t, runner.ArgsNodes, 1)

	test := loaded.Tests()[0]
	assert.NotNil(t, test.TestExecutable)
	assert.Len(t, test.TestComponents, 1)
	assert.Len(t, test.ComponentsBeingTested, 1)

	comp, ok := loaded.GetComponentByID(exe.NodeID())
	require.True(t, ok)
	assert.Len(t, comp.ExternalPackages, 1)
	assert.Equal(t, "fmt", comp.ExternalPackages[0].Name)
	require.NotNil(t, comp.ExternalPackages[0].Manager)
	assert.Equal(t, "vcpkg", comp.ExternalPackages[0].Manager.Name)
}

func TestStore_Load_FailsOnEmptyDatabase(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background())
	require.Error(t, err)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, CorruptStore, storeErr.Kind)
}

func TestStore_Save_ReplacesAPreviouslyStoredRIG(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleRIG(t), "first"))
	require.NoError(t, s.Save(ctx, sampleRIG(t), "second"))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Components(), 2)
}
