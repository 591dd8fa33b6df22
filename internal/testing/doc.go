// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package testing provides shared test fixtures for the rigraph module.
//
// # Quick Start
//
// Use SampleRIG to get a small, fully hydrated graph exercising every
// node kind and cross-reference, and OpenTestStore for a temp SQLite
// backend:
//
//	func TestMyFeature(t *testing.T) {
//	    g := testing.SampleRIG(t)
//	    s := testing.OpenTestStore(t)
//	    require.NoError(t, s.Save(context.Background(), g, "fixture"))
//	}
package testing
