// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/rigraph/internal/errors"
	"github.com/kraklabs/rigraph/internal/output"
	"github.com/kraklabs/rigraph/internal/ui"
	"github.com/kraklabs/rigraph/pkg/rig"
	"github.com/kraklabs/rigraph/pkg/rigmetrics"
	"github.com/kraklabs/rigraph/pkg/store"
)

// compareResult is the --json payload for the 'compare' command.
type compareResult struct {
	Identical bool   `json:"identical"`
	Diff      string `json:"diff,omitempty"`
}

// runCompare executes the 'compare' CLI command: loads two RIGs from
// SQLite databases and prints a semantic diff, normalized for
// process-scoped ids and ordering (spec §4.5's compare contract).
//
// Usage: rigraph compare <a.db> <b.db>
func runCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output the comparison as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rigraph compare [options] <a.db> <b.db>

Loads two RIGs from SQLite databases and prints a semantic diff. Two
extraction runs of the same repository compare identical regardless of
process-scoped ids or collection ordering.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	rest := fs.Args()
	if len(rest) != 2 {
		fs.Usage()
		os.Exit(1)
	}

	a, err := loadRIGFromPath(rest[0])
	if err != nil {
		errors.FatalError(errors.NewStoreError("Cannot load first RIG", err.Error(), "", err), *jsonOutput)
	}
	b, err := loadRIGFromPath(rest[1])
	if err != nil {
		errors.FatalError(errors.NewStoreError("Cannot load second RIG", err.Error(), "", err), *jsonOutput)
	}

	diff, identical, err := store.Compare(a, b)
	rigmetrics.RecordCompare(identical)
	if err != nil {
		errors.FatalError(errors.NewStoreError("Comparison failed", err.Error(), "", err), *jsonOutput)
	}

	if *jsonOutput {
		_ = output.JSON(&compareResult{Identical: identical, Diff: diff})
		return
	}

	if identical {
		ui.Success("RIGs are semantically identical")
		return
	}
	ui.Warning("RIGs differ")
	fmt.Println(diff)
}

func loadRIGFromPath(path string) (*rig.RIG, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return s.Load(context.Background())
}
