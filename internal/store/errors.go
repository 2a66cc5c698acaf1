// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by the Repository actor. Callers should use
// errors.Is to match against these values.
var (
	// ErrNoteNotFound is returned when GetNote targets an id with no row.
	ErrNoteNotFound = errors.New("store: note not found")

	// ErrRepositoryClosed is returned when a command is sent after Close
	// has been called.
	ErrRepositoryClosed = errors.New("store: repository is closed")

	// ErrOpeningDatabase wraps failures opening or pinging the SQLite file.
	ErrOpeningDatabase = errors.New("store: failed to open database")

	// ErrCreatingSchema wraps failures creating the notes/kv_store tables.
	ErrCreatingSchema = errors.New("store: failed to create schema")

	// ErrBeginningTransaction wraps failures starting a transaction.
	ErrBeginningTransaction = errors.New("store: failed to begin transaction")

	// ErrExecutingStatement wraps failures executing a DML statement.
	ErrExecutingStatement = errors.New("store: failed to execute statement")

	// ErrScanningRow wraps failures scanning a result row.
	ErrScanningRow = errors.New("store: failed to scan row")
)
