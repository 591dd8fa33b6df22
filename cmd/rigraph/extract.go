// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/rigraph/internal/config"
	"github.com/kraklabs/rigraph/internal/errors"
	"github.com/kraklabs/rigraph/internal/ui"
	"github.com/kraklabs/rigraph/pkg/cmake"
	"github.com/kraklabs/rigraph/pkg/rigmetrics"
	"github.com/kraklabs/rigraph/pkg/store"
)

// runExtract executes the 'extract' CLI command: configures and reads the
// CMake build tree rooted at the current directory, assembles a RIG, and
// persists it to the project's SQLite store.
//
// Flags:
//   - --skip-configure: reuse an already-configured build directory
//   - --debug: enable debug logging
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
func runExtract(args []string, configPath string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	skipConfigure := fs.Bool("skip-configure", false, "Reuse an already-configured build directory")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	jsonOutput := fs.Bool("json", false, "Output the extraction summary as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rigraph extract [options]

Extracts a RIG from the current repository using .rigraph/project.yaml
and persists it to the configured SQLite store.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
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
			"No project configuration found",
			err.Error(),
			"Run 'rigraph init' to create one",
		), *jsonOutput)
	}

	runID := uuid.NewString()
	logger.Info("extract.cmake.start", "run_id", runID, "repo", cwd, "build_dir", cfg.Build.Dir)
	start := time.Now()

	ctx := context.Background()
	g, err := cmake.Extract(ctx, cmake.Options{
		RepoRoot:      cwd,
		BuildDir:      cfg.BuildDir(cwd),
		Config:        cfg.Build.CTestConfig,
		SkipConfigure: *skipConfigure,
		ExcludeDirs:   cfg.ExcludeGlobs,
		Logger:        logger,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		rigmetrics.RecordExtraction(elapsed, 0, 0, err)
		errors.FatalError(errors.NewExtractionError(
			"CMake extraction failed",
			err.Error(),
			"Check that the build directory configures cleanly with cmake",
			err,
		), *jsonOutput)
	}

	componentCount := len(g.Components())
	testCount := len(g.Tests())
	rigmetrics.RecordExtraction(elapsed, componentCount, testCount, nil)
	logger.Info("extract.cmake.complete",
		"components", componentCount, "aggregators", len(g.Aggregators()),
		"runners", len(g.Runners()), "tests", len(g.Tests()), "duration_s", elapsed)

	s, err := store.Open(cfg.StorePath(cwd))
	if err != nil {
		errors.FatalError(errors.NewStoreError(
			"Cannot open the RIG database",
			err.Error(),
			"Check that .rigraph/ is writable",
			err,
		), *jsonOutput)
	}
	defer func() { _ = s.Close() }()

	saveStart := time.Now()
	saveErr := s.Save(ctx, g, fmt.Sprintf("extract %s at %s", runID, start.Format(time.RFC3339)))
	rigmetrics.RecordSave(time.Since(saveStart).Seconds(), saveErr)
	if saveErr != nil {
		errors.FatalError(errors.NewStoreError(
			"Cannot save the extracted RIG",
			saveErr.Error(),
			"",
			saveErr,
		), *jsonOutput)
	}

	if *jsonOutput {
		_ = outputExtractSummaryJSON(g, elapsed)
		return
	}

	ui.Successf("Extracted %d components, %d aggregators, %d runners, %d tests in %.2fs",
		componentCount, len(g.Aggregators()), len(g.Runners()), testCount, elapsed)
}
