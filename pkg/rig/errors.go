// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

import "fmt"

// ModelErrorKind enumerates the model-layer programming faults a RIG can
// raise. These are never caught internally: they indicate a bug in the
// code that is building the graph, not a property of the repository
// being analyzed.
type ModelErrorKind string

const (
	// InvalidEvidence means an Evidence was constructed with neither a
	// line reference nor a call stack.
	InvalidEvidence ModelErrorKind = "invalid_evidence"

	// InvalidComponent means a Component was constructed without a type
	// or without a programming language.
	InvalidComponent ModelErrorKind = "invalid_component"

	// UnknownDependencyKind means an id propagation walk encountered a
	// dependency that is not one of the four known RIG node variants.
	UnknownDependencyKind ModelErrorKind = "unknown_dependency_kind"
)

// ModelError is a programming-fault error raised by constructors and
// graph-engine helpers. It is distinct from extraction and storage
// errors (see pkg/cmake and pkg/store) and is never handled internally.
type ModelError struct {
	Kind    ModelErrorKind
	Message string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newModelError(kind ModelErrorKind, format string, args ...any) *ModelError {
	return &ModelError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
