// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the rigraph CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for different error categories.
//
// # Usage Example
//
// Creating and displaying errors:
//
//	err := errors.NewStoreError(
//	    "Cannot open the RIG database",
//	    "The database file is locked by another process",
//	    "Close other rigraph instances or remove .rigraph/rig.db.lock",
//	    underlyingErr,
//	)
//	if err != nil {
//	    // Simple approach: print and exit with colored output
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	err := errors.NewStoreError(
//	    "Cannot open the RIG database",
//	    "The database file is locked by another process",
//	    "Close other rigraph instances or remove .rigraph/rig.db.lock",
//	    underlyingErr,
//	)
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Output (with colors):
//	// Error: Cannot open the RIG database
//	// Cause: The database file is locked by another process
//	// Fix:   Close other rigraph instances or remove .rigraph/rig.db.lock
//
// For JSON output:
//
//	jsonData := err.ToJSON()
//	json.NewEncoder(os.Stderr).Encode(jsonData)
//	// Output:
//	// {
//	//   "error": "Cannot open the RIG database",
//	//   "cause": "The database file is locked by another process",
//	//   "fix": "Close other rigraph instances or remove .rigraph/rig.db.lock",
//	//   "exit_code": 5
//	// }
//
// # Exit Codes
//
// The package defines semantic exit codes following Unix conventions:
//   - ExitSuccess (0): Successful execution
//   - ExitInput (1): Invalid user input (bad arguments, missing config)
//   - ExitModel (2): RIG data model errors (invalid evidence, invalid component)
//   - ExitExtraction (3): CMake extraction pipeline errors
//   - ExitValidation (4): Validator found errors in a RIG
//   - ExitStore (5): Persistence errors (locked/corrupt database, load/save failure)
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitInput indicates invalid user input (bad arguments, missing
	// project configuration).
	ExitInput = 1

	// ExitModel indicates a RIG data model error (invalid evidence,
	// invalid component, unknown dependency kind).
	ExitModel = 2

	// ExitExtraction indicates a CMake extraction pipeline error.
	ExitExtraction = 3

	// ExitValidation indicates the validator found errors in a RIG.
	ExitValidation = 4

	// ExitStore indicates a persistence error (locked/corrupt database,
	// failed save or load, comparison failure).
	ExitStore = 5

	// ExitInternal indicates an internal error (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error that caused this error (optional).
	// This enables error wrapping and compatibility with errors.Is/As.
	Err error
}

// Error implements the error interface.
//
// It returns a simple error message string. If an underlying error is present,
// it appends that error's message for context.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
//
// It returns the underlying error, allowing standard library error inspection
// functions to work with error chains.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewInputError creates an input validation error with exit code ExitInput.
//
// Use this for errors related to invalid user input, such as bad
// command-line arguments or missing project configuration. Input errors
// typically do not wrap an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "No project configuration found",
//	    ".rigraph/project.yaml does not exist",
//	    "Run 'rigraph init' to create one",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInput,
		Err:      nil,
	}
}

// NewModelError creates a RIG data model error with exit code ExitModel.
//
// Use this for errors surfaced by pkg/rig's constructors and graph-engine
// helpers, such as invalid evidence or an unknown dependency kind.
//
// Example:
//
//	return NewModelError(
//	    "Cannot register component",
//	    "component has no programming language",
//	    "This is a bug in the extractor that built this component",
//	    err,
//	)
func NewModelError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitModel,
		Err:      err,
	}
}

// NewExtractionError creates a CMake extraction error with exit code
// ExitExtraction.
//
// Use this for errors from pkg/cmake's extraction pipeline: a failed
// cmake configure, an unreadable File API reply, a CTest introspection
// failure.
//
// Example:
//
//	return NewExtractionError(
//	    "CMake configure failed",
//	    "cmake exited with status 1",
//	    "Check that the build directory's cache matches the generator",
//	    err,
//	)
func NewExtractionError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitExtraction,
		Err:      err,
	}
}

// NewValidationError creates a validation error with exit code
// ExitValidation.
//
// Use this when the validator (pkg/validate) reports one or more
// error-severity diagnostics against a RIG. Validation errors typically
// do not wrap an underlying error; the diagnostics themselves are the
// cause.
//
// Example:
//
//	return NewValidationError(
//	    "RIG failed validation",
//	    "3 broken dependencies, 1 circular dependency",
//	    "Run 'rigraph validate' for the full diagnostic list",
//	)
func NewValidationError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitValidation,
		Err:      nil,
	}
}

// NewStoreError creates a persistence error with exit code ExitStore.
//
// Use this for errors related to SQLite persistence: a locked or corrupt
// database, a failed save or load, a failed comparison.
//
// Example:
//
//	return NewStoreError(
//	    "Cannot open the RIG database",
//	    "The database file is locked by another process",
//	    "Close other rigraph instances or remove .rigraph/rig.db.lock",
//	    err,
//	)
func NewStoreError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitStore,
		Err:      err,
	}
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program, such as
// assertion failures, unexpected nil values, or unhandled error cases.
// Internal errors should be reported to the maintainers.
//
// Example:
//
//	return NewInternalError(
//	    "Unexpected nil RIG",
//	    "Extract returned a nil graph with no error",
//	    "This is a bug. Please report it at github.com/kraklabs/rigraph/issues",
//	    err,
//	)
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInternal,
		Err:      err,
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter.
//
// Example output:
//
//	Error: Cannot open the RIG database
//	Cause: The database file is locked by another process
//	Fix:   Close other rigraph instances or remove .rigraph/rig.db.lock
//
// Empty Cause or Fix fields are omitted from the output.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting. Because that state is shared,
// concurrent calls are not thread-safe.
func (e *UserError) Format(noColor bool) string {
	// Save and restore global color state to avoid side effects
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
//
// This structure is suitable for machine consumption and integrates with
// CLI commands that support --json output mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
//
// Fields with empty values (Cause, Fix) are omitted from JSON output
// using the omitempty tag. This keeps JSON output clean when additional
// context is not available.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code.
//
// If the error is a UserError, it uses Format() for colored output or
// ToJSON() for JSON mode. For non-UserError types, it prints a simple
// error message and exits with ExitInternal.
//
// This function never returns - it always calls os.Exit().
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encode error is intentionally ignored since we're about to exit.
			// If JSON encoding fails, the program will still exit with the correct code.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	// Fallback for non-UserError
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
