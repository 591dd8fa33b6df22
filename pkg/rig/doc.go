// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package rig implements the Repository Intelligence Graph: a canonical,
// build-system-agnostic description of what a repository builds, tests,
// and depends on, together with evidence pointing back to the source
// location that justified each recorded fact.
//
// A RIG is populated exclusively through its typed Add* operations, which
// perform idempotent-by-id registration and recursively propagate ids
// across the dependency and evidence closures (ID propagation). After a
// load from storage, HydrateAll populates the inverse direction: object
// reference lists from id sets.
//
// # Quick start
//
//	g := rig.New()
//	exe, err := rig.NewComponent("hello", rig.ComponentExecutable, "cxx",
//	    []string{"src/main.cpp"}, "bin/hello", nil,
//	    []rig.Evidence{mustEvidence(t, []string{"CMakeLists.txt:5"})})
//	g.AddComponent(exe)
//
// Identifiers are allocated from six monotone, process-scoped counters
// (one per entity kind) during extraction; they carry no meaning across
// runs. Comparisons across independently produced graphs must normalize
// first (see pkg/store) rather than rely on raw ids.
package rig
