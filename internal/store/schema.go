// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	is_synced INTEGER NOT NULL DEFAULT 1,
	is_encrypted INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// createSchema is intentionally a plain idempotent DDL script rather than
// a pressly/goose migration chain: the client owns exactly two tables that
// never need a version history, so goose's embed-and-track machinery (used
// server-side by the teacher) would be pure ceremony here — see DESIGN.md.
func createSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("%w: %v", ErrCreatingSchema, err)
	}
	return nil
}
