// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import "fmt"

// StoreErrorKind enumerates the typed failures the persistence layer can
// raise. These are distinct from extraction errors (see pkg/cmake) and
// model errors (see pkg/rig): they describe a problem with the database
// itself rather than with the repository being analyzed.
type StoreErrorKind string

const (
	// StoreUnavailable means the database file could not be opened,
	// migrated, or otherwise prepared for use.
	StoreUnavailable StoreErrorKind = "store_unavailable"

	// CorruptStore means a database that should hold exactly one RIG
	// holds zero or more than one rig_metadata row.
	CorruptStore StoreErrorKind = "corrupt_store"

	// TransactionFailed means a Save or Load transaction was rolled
	// back because one of its statements returned an error.
	TransactionFailed StoreErrorKind = "transaction_failed"
)

// StoreError is a typed failure from the persistence layer.
type StoreError struct {
	Kind    StoreErrorKind
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

func newStoreError(kind StoreErrorKind, err error, format string, args ...any) *StoreError {
	return &StoreError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
