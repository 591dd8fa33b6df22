// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package main implements the rigraph CLI for extracting, validating,
// comparing, and inspecting Repository Intelligence Graphs.
//
// Usage:
//
//	rigraph init                  Create .rigraph/project.yaml configuration
//	rigraph extract                Extract a RIG from the current repository
//	rigraph validate                Validate the stored RIG
//	rigraph compare <a.db> <b.db>   Semantically diff two stored RIGs
//	rigraph show [--stats] [--compress] Inspect the stored RIG
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/rigraph/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .rigraph/project.yaml (default: ./.rigraph/project.yaml)")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `rigraph - Repository Intelligence Graph extractor

Usage:
  rigraph <command> [options]

Commands:
  init          Create .rigraph/project.yaml configuration
  extract       Extract a RIG from the current repository and persist it
  validate      Validate the stored RIG and report diagnostics
  compare       Semantically diff two stored RIG databases
  show          Print the stored RIG (canonical JSON, compressed, or stats)

Global Options:
  --config      Path to .rigraph/project.yaml
  --no-color    Disable colored output
  --version     Show version and exit

Examples:
  rigraph init
  rigraph extract --debug
  rigraph validate --json
  rigraph compare before.db after.db
  rigraph show --stats

`)
	}

	flag.Parse()
	ui.InitColors(*noColor)

	if *showVersion {
		fmt.Printf("rigraph version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "extract":
		runExtract(cmdArgs, *configPath)
	case "validate":
		runValidate(cmdArgs, *configPath)
	case "compare":
		runCompare(cmdArgs)
	case "show":
		runShow(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
