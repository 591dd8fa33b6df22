// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/rigraph/internal/config"
	"github.com/kraklabs/rigraph/internal/errors"
	"github.com/kraklabs/rigraph/internal/ui"
)

// runInit executes the 'init' CLI command, creating a .rigraph/project.yaml
// configuration file for the repository in the current directory.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - --project-id: Project identifier (default: directory name)
//   - --build-dir: CMake build directory (default: "build")
//   - --ctest-config: Multi-config generator configuration for ctest
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	projectID := fs.String("project-id", "", "Project identifier (default: directory name)")
	buildDir := fs.String("build-dir", "", "CMake build directory (default: build)")
	ctestConfig := fs.String("ctest-config", "", "CTest build configuration (multi-config generators only)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rigraph init [options]

Creates .rigraph/project.yaml configuration file.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInputError("Cannot determine current directory", err.Error(), ""), false)
	}

	configPath := config.ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		errors.FatalError(errors.NewInputError(
			fmt.Sprintf("%s already exists", configPath),
			"refusing to overwrite an existing configuration",
			"use --force to overwrite",
		), false)
	}

	pid := *projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := config.DefaultConfig(pid)
	if *buildDir != "" {
		cfg.Build.Dir = *buildDir
	}
	if *ctestConfig != "" {
		cfg.Build.CTestConfig = *ctestConfig
	}

	if err := config.SaveConfig(cfg, configPath); err != nil {
		errors.FatalError(errors.NewInputError("Cannot save configuration", err.Error(), ""), false)
	}

	ui.Successf("Created %s", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  rigraph extract   # extract a RIG from this repository\n")
	fmt.Printf("  rigraph validate  # check the extracted RIG for problems\n")
}
