// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads and saves the per-repository project configuration
// used by the rigraph CLI.
//
// Configuration lives in <repo>/.rigraph/project.yaml and tells the
// extractor which build directory and CTest configuration to read, which paths to skip during CMakeLists discovery,
// and where the SQLite store for extracted graphs lives.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// dirName is the configuration directory created under a repository root.
const dirName = ".rigraph"

// fileName is the configuration file within dirName.
const fileName = "project.yaml"

// Config is the persisted project configuration for one repository.
type Config struct {
	// ProjectID identifies the project. Defaults to the repository
	// directory name.
	ProjectID string `yaml:"project_id"`

	Build BuildConfig `yaml:"build"`
	Store StoreConfig `yaml:"store"`

	// ExcludeGlobs lists directories skipped during CMakeLists.txt
	// discovery. An entry "dir/**" skips the directory dir relative to
	// the repository root (e.g. "third_party/**", "build/**"); any other
	// entry is matched against directory base names, without glob
	// expansion.
	ExcludeGlobs []string `yaml:"exclude_globs,omitempty"`
}

// BuildConfig describes where the CMake build tree lives and which CTest
// build configuration to query for test definitions.
type BuildConfig struct {
	// Dir is the build directory, relative to the repository root, that
	// CMake was configured into (e.g. "build").
	Dir string `yaml:"dir"`

	// CTestConfig is the build configuration name passed to
	// `ctest --build-config` when multi-config generators are in use
	// (e.g. "Debug"). Empty means single-config.
	CTestConfig string `yaml:"ctest_config,omitempty"`
}

// StoreConfig describes where the extracted graph is persisted.
type StoreConfig struct {
	// Path is the SQLite database file, relative to the repository root,
	// that holds the extracted RIG (e.g. ".rigraph/rig.db").
	Path string `yaml:"path"`
}

// ConfigDir returns the .rigraph directory for the repository rooted at dir.
func ConfigDir(dir string) string {
	return filepath.Join(dir, dirName)
}

// ConfigPath returns the project.yaml path for the repository rooted at dir.
func ConfigPath(dir string) string {
	return filepath.Join(ConfigDir(dir), fileName)
}

// DefaultConfig returns the default configuration for a newly initialized
// project named projectID.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Build: BuildConfig{
			Dir: "build",
		},
		Store: StoreConfig{
			Path: filepath.Join(dirName, "rig.db"),
		},
		ExcludeGlobs: []string{"build/**", "third_party/**"},
	}
}

// LoadConfig reads and parses the project configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller-supplied project.yaml
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Build.Dir == "" {
		cfg.Build.Dir = "build"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dirName, "rig.db")
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating the parent directory if
// necessary.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// StorePath returns the absolute path to the SQLite store for the
// repository rooted at repoRoot.
func (c *Config) StorePath(repoRoot string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(repoRoot, c.Store.Path)
}

// BuildDir returns the absolute path to the configured build directory for
// the repository rooted at repoRoot.
func (c *Config) BuildDir(repoRoot string) string {
	if filepath.IsAbs(c.Build.Dir) {
		return c.Build.Dir
	}
	return filepath.Join(repoRoot, c.Build.Dir)
}
