// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

import (
	"fmt"
	"sync/atomic"
)

// Six monotone, process-scoped id counters, one per entity kind. They
// carry no meaning across runs or processes: two extractions of the
// same repository will not produce matching ids, which is why
// comparison (pkg/store) normalizes on stable content keys rather than
// these raw identifiers.
const (
	prefixComponent  = "comp"
	prefixAggregator = "agg"
	prefixRunner     = "runner"
	prefixTest       = "test"
	prefixPackage    = "pkg"
	prefixEvidence   = "evidence"
)

var (
	counterComponent  atomic.Uint64
	counterAggregator atomic.Uint64
	counterRunner     atomic.Uint64
	counterTest       atomic.Uint64
	counterPackage    atomic.Uint64
	counterEvidence   atomic.Uint64
)

func counterFor(prefix string) *atomic.Uint64 {
	switch prefix {
	case prefixComponent:
		return &counterComponent
	case prefixAggregator:
		return &counterAggregator
	case prefixRunner:
		return &counterRunner
	case prefixTest:
		return &counterTest
	case prefixPackage:
		return &counterPackage
	case prefixEvidence:
		return &counterEvidence
	default:
		panic("rig: unknown id prefix " + prefix)
	}
}

// nextID allocates the next identifier for the given entity prefix,
// formatted as "<prefix>-<n>" starting at 1.
func nextID(prefix string) string {
	n := counterFor(prefix).Add(1)
	return fmt.Sprintf("%s-%d", prefix, n)
}

// resetIDCounters restarts every counter at zero. Used by tests that
// want deterministic, from-1 ids across independent RIG fixtures; never
// called from production code paths.
func resetIDCounters() {
	counterComponent.Store(0)
	counterAggregator.Store(0)
	counterRunner.Store(0)
	counterTest.Store(0)
	counterPackage.Store(0)
	counterEvidence.Store(0)
}
