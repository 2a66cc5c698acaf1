// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// TimestampLayout is the RFC3339 layout used for every stored and
// transmitted timestamp in risu: note.updated_at, the sync cursor, and
// subscription end dates.
const TimestampLayout = time.RFC3339

// EpochCursor is the default sync cursor used when a device has never
// completed a pull.
const EpochCursor = "1970-01-01T00:00:00Z"

// Note is the single unit of user content. Content is opaque text:
// plaintext while held locally, ciphertext on the wire and at rest on the
// remote service once the account has E2E enabled.
type Note struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	UpdatedAt   string `json:"updated_at"`
	IsDeleted   bool   `json:"is_deleted"`
	IsSynced    bool   `json:"is_synced"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// TableName matches the teacher's PrivateData.TableName() convention of
// naming a model's backing table explicitly.
func (Note) TableName() string {
	return "notes"
}
