// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package validate checks a hydrated Repository Intelligence Graph for
// correctness and consistency: missing source files, broken or circular
// dependencies, duplicate identifiers, improperly wired tests, and nodes
// lacking evidence.
//
// Validate never mutates the graph it is given; it returns an ordered
// list of diagnostics, and an empty list means the graph is clean.
package validate
