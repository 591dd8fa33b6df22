// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package validate

// Severity classifies how serious a diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category is the closed set of diagnostic categories a validation run
// can produce.
type Category string

const (
	CategoryMissingSourceFile               Category = "missing_source_file"
	CategoryBrokenDependency                Category = "broken_dependency"
	CategoryNoDependencies                  Category = "no_dependencies"
	CategoryCircularDependency              Category = "circular_dependency"
	CategoryDuplicateNodeID                 Category = "duplicate_node_id"
	CategoryMissingTestExecutable           Category = "missing_test_executable"
	CategoryTestExecutableComponentNotFound Category = "test_executable_component_not_found"
	CategoryTestComponentOrMismatch         Category = "test_component_or_mismatch"
	CategoryMissingEvidence                 Category = "missing_evidence"
)

// Diagnostic is a single finding from a validation run.
type Diagnostic struct {
	Severity   Severity
	Category   Category
	Message    string
	NodeName   string
	FilePath   string
	Line       int
	Suggestion string
}
