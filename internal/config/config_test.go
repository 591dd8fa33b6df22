// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_SetsSensibleDefaults(t *testing.T) {
	cfg := DefaultConfig("widgets")

	assert.Equal(t, "widgets", cfg.ProjectID)
	assert.Equal(t, "build", cfg.Build.Dir)
	assert.Equal(t, filepath.Join(".rigraph", "rig.db"), cfg.Store.Path)
	assert.NotEmpty(t, cfg.ExcludeGlobs)
}

func TestSaveConfig_LoadConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)

	cfg := DefaultConfig("widgets")
	cfg.Build.CTestConfig = "Debug"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ProjectID, loaded.ProjectID)
	assert.Equal(t, cfg.Build, loaded.Build)
	assert.Equal(t, cfg.Store, loaded.Store)
	assert.Equal(t, cfg.ExcludeGlobs, loaded.ExcludeGlobs)
}

func TestLoadConfig_FailsWhenFileMissing(t *testing.T) {
	_, err := LoadConfig(ConfigPath(t.TempDir()))
	require.Error(t, err)
}

func TestConfig_StorePath_ResolvesRelativeToRepoRoot(t *testing.T) {
	cfg := DefaultConfig("widgets")
	got := cfg.StorePath("/repo")
	assert.Equal(t, filepath.Join("/repo", ".rigraph", "rig.db"), got)
}

func TestConfig_BuildDir_ResolvesRelativeToRepoRoot(t *testing.T) {
	cfg := DefaultConfig("widgets")
	got := cfg.BuildDir("/repo")
	assert.Equal(t, filepath.Join("/repo", "build"), got)
}
