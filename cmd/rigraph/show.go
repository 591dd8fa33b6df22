// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/kraklabs/rigraph/internal/config"
	"github.com/kraklabs/rigraph/internal/errors"
	"github.com/kraklabs/rigraph/internal/ui"
	"github.com/kraklabs/rigraph/pkg/rig"
	"github.com/kraklabs/rigraph/pkg/store"
)

// runShow executes the 'show' CLI command: loads the stored RIG and
// prints it, either as repository statistics, canonical JSON, or a
// compressed LLM-friendly payload.
//
// Flags:
//   - --stats: print component counts by type/language instead of the
//     full graph
//   - --compress: print the LLM-compressed payload (spec §4.5) instead
//     of the uncompressed canonical export
func runShow(args []string, configPath string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	stats := fs.Bool("stats", false, "Print component counts by type and language")
	compress := fs.Bool("compress", false, "Print the LLM-compressed payload instead of canonical JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rigraph show [options]

Prints the stored RIG as canonical JSON by default.

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
	if configPath == "" {
		configPath = config.ConfigPath(cwd)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"No project configuration found", err.Error(), "Run 'rigraph init' and 'rigraph extract' first",
		), false)
	}

	s, err := store.Open(cfg.StorePath(cwd))
	if err != nil {
		errors.FatalError(errors.NewStoreError("Cannot open the RIG database", err.Error(), "", err), false)
	}
	defer func() { _ = s.Close() }()

	g, err := s.Load(context.Background())
	if err != nil {
		errors.FatalError(errors.NewStoreError(
			"Cannot load the stored RIG", err.Error(), "Run 'rigraph extract' first", err,
		), false)
	}

	switch {
	case *stats:
		printStats(g)
	case *compress:
		data, err := store.Compress(g)
		if err != nil {
			errors.FatalError(errors.NewStoreError("Cannot compress the RIG", err.Error(), "", err), false)
		}
		fmt.Println(string(data))
	default:
		data, err := store.ToCanonicalJSON(g)
		if err != nil {
			errors.FatalError(errors.NewStoreError("Cannot render the RIG", err.Error(), "", err), false)
		}
		fmt.Println(string(data))
	}
}

func printStats(g *rig.RIG) {
	ui.Header("RIG statistics")

	byType := g.ComponentCountsByType()
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	ui.SubHeader("Components by type:")
	for _, t := range types {
		fmt.Printf("  %-20s %s\n", t, ui.CountText(byType[rig.ComponentType(t)]))
	}

	byLang := g.ComponentCountsByLanguage()
	langs := make([]string, 0, len(byLang))
	for l := range byLang {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	ui.SubHeader("Components by language:")
	for _, l := range langs {
		fmt.Printf("  %-20s %s\n", l, ui.CountText(byLang[l]))
	}

	fmt.Println()
	fmt.Printf("%s %s\n", ui.Label("Aggregators:"), ui.CountText(len(g.Aggregators())))
	fmt.Printf("%s %s\n", ui.Label("Runners:"), ui.CountText(len(g.Runners())))
	fmt.Printf("%s %s\n", ui.Label("Tests:"), ui.CountText(len(g.Tests())))
}
