// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import "fmt"

// ExtractionErrorKind enumerates the typed failures the CMake extractor
// can raise. Every extraction error discards the partially built graph.
type ExtractionErrorKind string

const (
	CMakeConfigureFailed    ExtractionErrorKind = "cmake_configure_failed"
	CMakeFileAPIMalformed   ExtractionErrorKind = "cmake_file_api_malformed"
	CTestIntrospectionFailed ExtractionErrorKind = "ctest_introspection_failed"
	CMakeListsParseError    ExtractionErrorKind = "cmakelists_parse_error"
	SubprocessError         ExtractionErrorKind = "subprocess_error"
	SubprocessTimeout       ExtractionErrorKind = "subprocess_timeout"
)

// ExtractionError is a typed failure from the CMake extraction
// pipeline, optionally pinpointing the file and line that triggered it.
type ExtractionError struct {
	Kind    ExtractionErrorKind
	Message string
	File    string
	Line    int
	Err     error
}

func (e *ExtractionError) Error() string {
	loc := ""
	if e.File != "" {
		if e.Line > 0 {
			loc = fmt.Sprintf(" (%s:%d)", e.File, e.Line)
		} else {
			loc = fmt.Sprintf(" (%s)", e.File)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s%s: %v", e.Kind, e.Message, loc, e.Err)
	}
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, loc)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func newExtractionError(kind ExtractionErrorKind, file string, line int, err error, format string, args ...any) *ExtractionError {
	return &ExtractionError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		File:    file,
		Line:    line,
		Err:     err,
	}
}
