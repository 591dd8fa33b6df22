// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kraklabs/rigraph/internal/config"
	"github.com/kraklabs/rigraph/internal/errors"
	"github.com/kraklabs/rigraph/internal/output"
	"github.com/kraklabs/rigraph/internal/ui"
	"github.com/kraklabs/rigraph/pkg/rigmetrics"
	"github.com/kraklabs/rigraph/pkg/store"
	"github.com/kraklabs/rigraph/pkg/validate"
)

// runValidate executes the 'validate' CLI command: loads the stored RIG
// and runs it through pkg/validate, printing every diagnostic found.
//
// Flags:
//   - --json: output diagnostics as JSON
func runValidate(args []string, configPath string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output diagnostics as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rigraph validate [options]

Validates the stored RIG and reports problems: missing source files,
broken dependencies, circular dependencies, duplicate ids, and test
wiring mismatches.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInputError("Cannot determine current directory", err.Error(), ""), *jsonOutput)
	}
	if configPath == "" {
		configPath = config.ConfigPath(cwd)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"No project configuration found", err.Error(), "Run 'rigraph init' and 'rigraph extract' first",
		), *jsonOutput)
	}

	s, err := store.Open(cfg.StorePath(cwd))
	if err != nil {
		errors.FatalError(errors.NewStoreError("Cannot open the RIG database", err.Error(), "", err), *jsonOutput)
	}
	defer func() { _ = s.Close() }()

	loadStart := time.Now()
	g, err := s.Load(context.Background())
	rigmetrics.RecordLoad(time.Since(loadStart).Seconds(), err)
	if err != nil {
		errors.FatalError(errors.NewStoreError(
			"Cannot load the stored RIG", err.Error(), "Run 'rigraph extract' first", err,
		), *jsonOutput)
	}

	validateStart := time.Now()
	diags, err := validate.Validate(g)
	elapsed := time.Since(validateStart).Seconds()
	if err != nil {
		rigmetrics.RecordValidation(elapsed, 0, 0, 0)
		errors.FatalError(errors.NewValidationError("Validator crashed", err.Error(), ""), *jsonOutput)
	}

	errorCount, warningCount, cycleCount := 0, 0, 0
	for _, d := range diags {
		switch d.Severity {
		case validate.SeverityError:
			errorCount++
		case validate.SeverityWarning:
			warningCount++
		}
		if d.Category == validate.CategoryCircularDependency {
			cycleCount++
		}
	}
	rigmetrics.RecordValidation(elapsed, errorCount, warningCount, cycleCount)

	if *jsonOutput {
		_ = output.JSON(diags)
	} else {
		printDiagnostics(diags)
	}

	if errorCount > 0 {
		errors.FatalError(errors.NewValidationError(
			"RIG failed validation",
			fmt.Sprintf("%d error diagnostics, %d warnings", errorCount, warningCount),
			"See the diagnostics above for details",
		), *jsonOutput)
	}
}

func printDiagnostics(diags []validate.Diagnostic) {
	if len(diags) == 0 {
		ui.Success("No problems found")
		return
	}
	for _, d := range diags {
		line := fmt.Sprintf("[%s] %s: %s", d.Severity, d.Category, d.Message)
		if d.NodeName != "" {
			line += fmt.Sprintf(" (node: %s)", d.NodeName)
		}
		switch d.Severity {
		case validate.SeverityError:
			ui.Error(line)
		case validate.SeverityWarning:
			ui.Warning(line)
		default:
			ui.Info(line)
		}
		if d.Suggestion != "" {
			fmt.Printf("  %s\n", ui.DimText(d.Suggestion))
		}
	}
}
