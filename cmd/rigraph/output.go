// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"github.com/kraklabs/rigraph/internal/output"
	"github.com/kraklabs/rigraph/pkg/rig"
)

// extractSummary is the --json payload for the 'extract' command.
type extractSummary struct {
	Components  int     `json:"components"`
	Aggregators int     `json:"aggregators"`
	Runners     int     `json:"runners"`
	Tests       int     `json:"tests"`
	DurationS   float64 `json:"duration_seconds"`
}

func outputExtractSummaryJSON(g *rig.RIG, durationSeconds float64) error {
	return output.JSON(&extractSummary{
		Components:  len(g.Components()),
		Aggregators: len(g.Aggregators()),
		Runners:     len(g.Runners()),
		Tests:       len(g.Tests()),
		DurationS:   durationSeconds,
	})
}
