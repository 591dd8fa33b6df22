// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package cmake extracts a Repository Intelligence Graph from a CMake
// project by combining three sources of truth: the CMake File API
// (codemodel, cache, cmakeFiles, configureLog, toolchains), a
// regex-level CMakeLists.txt tokenizer, and CTest's JSON test
// introspection.
//
// Extract is the package's single entry point: given a repository root
// it configures the build (if not already configured), reads the File
// API reply, classifies every target into a Component, Aggregator, or
// Runner, resolves runtime dependencies declared only via target
// properties, and registers every CTest test, returning a fully
// hydrated *rig.RIG. A failure at any stage discards the partial graph
// and returns a typed *ExtractionError.
package cmake
