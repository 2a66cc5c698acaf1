// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements risu's single-writer Repository actor over an
// embedded SQLite database, grounded on the teacher's sql_sqlite.go
// connection idiom (database/sql + mattn/go-sqlite3) and on
// original_source/src/db.rs for schema and command semantics.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/google/uuid"

	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/models"
)

// command is a single request dispatched to the actor goroutine. execute
// runs against the owned *sql.DB and its result is delivered exactly once
// on reply, mirroring the Rust actor's oneshot-reply DbRequest pattern.
type command struct {
	execute func(db *sql.DB) (any, error)
	reply   chan result
}

type result struct {
	value any
	err   error
}

// Repository is the public facade a caller uses to issue commands. Every
// method blocks until the actor goroutine has processed the request;
// cancelling ctx does not cancel in-flight work already dequeued by the
// actor — it only stops the caller from waiting on the reply.
type Repository struct {
	cmds   chan command
	done   chan struct{}
	log    *logger.Logger
}

// Open creates (if needed) the SQLite file at path, creates the schema,
// and starts the dedicated actor goroutine that owns the connection for
// the lifetime of the Repository.
func Open(path string, log *logger.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpeningDatabase, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpeningDatabase, err)
	}
	// The actor serializes all access to this connection, so a single
	// physical connection is both sufficient and correct.
	db.SetMaxOpenConns(1)

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{
		cmds: make(chan command),
		done: make(chan struct{}),
		log:  log,
	}
	log.Debug().Str("path", path).Msg("repository actor starting")
	go repo.run(db)
	return repo, nil
}

func (r *Repository) run(db *sql.DB) {
	defer db.Close()
	defer close(r.done)
	defer r.log.Debug().Msg("repository actor stopped")

	for cmd := range r.cmds {
		value, err := cmd.execute(db)
		cmd.reply <- result{value: value, err: err}
	}
}

// Close stops accepting new commands and waits for the actor goroutine to
// release the database handle.
func (r *Repository) Close() error {
	close(r.cmds)
	<-r.done
	return nil
}

// send dispatches a command and blocks for its reply, or returns
// ctx.Err() if ctx is done first.
func (r *Repository) send(ctx context.Context, execute func(db *sql.DB) (any, error)) (any, error) {
	cmd := command{execute: execute, reply: make(chan result, 1)}

	select {
	case r.cmds <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func now() string {
	return time.Now().UTC().Format(models.TimestampLayout)
}

// GetNotes returns live notes ordered by updated_at descending.
func (r *Repository) GetNotes(ctx context.Context) ([]models.Note, error) {
	v, err := r.send(ctx, func(db *sql.DB) (any, error) {
		rows, err := db.Query(`SELECT id, content, updated_at, is_deleted, is_synced, is_encrypted
			FROM notes WHERE is_deleted = 0 ORDER BY updated_at DESC`)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, err)
		}
		defer rows.Close()
		return scanNotes(rows)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Note), nil
}

// GetNote returns the row for id, regardless of is_deleted, or
// ErrNoteNotFound.
func (r *Repository) GetNote(ctx context.Context, id string) (models.Note, error) {
	v, err := r.send(ctx, func(db *sql.DB) (any, error) {
		return getNoteTx(db, id)
	})
	if err != nil {
		return models.Note{}, err
	}
	return v.(models.Note), nil
}

func getNoteTx(q querier, id string) (models.Note, error) {
	row := q.QueryRow(`SELECT id, content, updated_at, is_deleted, is_synced, is_encrypted
		FROM notes WHERE id = ?`, id)
	var n models.Note
	var isDeleted, isSynced, isEncrypted int
	err := row.Scan(&n.ID, &n.Content, &n.UpdatedAt, &isDeleted, &isSynced, &isEncrypted)
	if err == sql.ErrNoRows {
		return models.Note{}, ErrNoteNotFound
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}
	n.IsDeleted, n.IsSynced, n.IsEncrypted = isDeleted != 0, isSynced != 0, isEncrypted != 0
	return n, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting getNoteTx run
// inside or outside a transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// SaveNote upserts content under id (generating a fresh UUID when id is
// nil), sets updated_at=now, is_deleted=0, is_synced=0, and returns the
// final row.
func (r *Repository) SaveNote(ctx context.Context, id *string, content string, isEncrypted bool) (models.Note, error) {
	v, err := r.send(ctx, func(db *sql.DB) (any, error) {
		noteID := ""
		if id != nil && *id != "" {
			noteID = *id
		} else {
			noteID = uuid.NewString()
		}
		updatedAt := now()

		_, execErr := db.Exec(`
			INSERT INTO notes (id, content, updated_at, is_deleted, is_synced, is_encrypted)
			VALUES (?, ?, ?, 0, 0, ?)
			ON CONFLICT(id) DO UPDATE SET
				content = excluded.content,
				updated_at = excluded.updated_at,
				is_deleted = 0,
				is_synced = 0,
				is_encrypted = excluded.is_encrypted`,
			noteID, content, updatedAt, boolToInt(isEncrypted))
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}

		return models.Note{
			ID:          noteID,
			Content:     content,
			UpdatedAt:   updatedAt,
			IsEncrypted: isEncrypted,
		}, nil
	})
	if err != nil {
		return models.Note{}, err
	}
	return v.(models.Note), nil
}

// DeleteNote soft-deletes id: is_deleted=1, is_synced=0, updated_at=now.
func (r *Repository) DeleteNote(ctx context.Context, id string) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		_, execErr := db.Exec(`UPDATE notes SET is_deleted = 1, is_synced = 0, updated_at = ? WHERE id = ?`, now(), id)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}
		return nil, nil
	})
	return err
}

// GetUnsyncedNotes returns every row with is_synced=0, tombstones
// included.
func (r *Repository) GetUnsyncedNotes(ctx context.Context) ([]models.Note, error) {
	v, err := r.send(ctx, func(db *sql.DB) (any, error) {
		rows, err := db.Query(`SELECT id, content, updated_at, is_deleted, is_synced, is_encrypted
			FROM notes WHERE is_synced = 0`)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, err)
		}
		defer rows.Close()
		return scanNotes(rows)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Note), nil
}

// MarkAsSynced sets is_synced=1 for id.
func (r *Repository) MarkAsSynced(ctx context.Context, id string) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		_, execErr := db.Exec(`UPDATE notes SET is_synced = 1 WHERE id = ?`, id)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}
		return nil, nil
	})
	return err
}

// PullUpsertNotes applies a pulled page atomically: each incoming note is
// upserted only if strictly newer than the local copy, and the cursor
// advances in the same transaction — either the whole batch and the
// cursor commit together, or neither does.
func (r *Repository) PullUpsertNotes(ctx context.Context, notes []models.Note, cursor string) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		tx, txErr := db.Begin()
		if txErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrBeginningTransaction, txErr)
		}
		defer tx.Rollback()

		for _, n := range notes {
			_, execErr := tx.Exec(`
				INSERT INTO notes (id, content, updated_at, is_deleted, is_synced, is_encrypted)
				VALUES (?, ?, ?, ?, 1, ?)
				ON CONFLICT(id) DO UPDATE SET
					content = excluded.content,
					updated_at = excluded.updated_at,
					is_deleted = excluded.is_deleted,
					is_synced = 1,
					is_encrypted = excluded.is_encrypted
				WHERE excluded.updated_at > notes.updated_at`,
				n.ID, n.Content, n.UpdatedAt, boolToInt(n.IsDeleted), boolToInt(n.IsEncrypted))
			if execErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
			}
		}

		if execErr := setKVTx(tx, "last_synced_at", cursor); execErr != nil {
			return nil, execErr
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return nil, fmt.Errorf("store: failed to commit pull batch: %w", commitErr)
		}
		return nil, nil
	})
	return err
}

// GetKV returns the value for key, or ("", false) if absent.
func (r *Repository) GetKV(ctx context.Context, key string) (string, bool, error) {
	v, err := r.send(ctx, func(db *sql.DB) (any, error) {
		var value string
		row := db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key)
		switch scanErr := row.Scan(&value); scanErr {
		case nil:
			return [2]any{value, true}, nil
		case sql.ErrNoRows:
			return [2]any{"", false}, nil
		default:
			return nil, fmt.Errorf("%w: %v", ErrScanningRow, scanErr)
		}
	})
	if err != nil {
		return "", false, err
	}
	pair := v.([2]any)
	return pair[0].(string), pair[1].(bool), nil
}

// SetKV upserts key=value.
func (r *Repository) SetKV(ctx context.Context, key, value string) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		return nil, setKVTx(db, key, value)
	})
	return err
}

func setKVTx(q execer, key, value string) error {
	_, err := q.Exec(`INSERT INTO kv_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// DeleteKV removes key, if present.
func (r *Repository) DeleteKV(ctx context.Context, key string) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		_, execErr := db.Exec(`DELETE FROM kv_store WHERE key = ?`, key)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}
		return nil, nil
	})
	return err
}

// SetNotesEncryptedStatus bulk-updates every live note's is_encrypted flag
// and marks them unsynced, used when the E2E encryption mode changes.
func (r *Repository) SetNotesEncryptedStatus(ctx context.Context, encrypted bool) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		_, execErr := db.Exec(`UPDATE notes SET is_encrypted = ?, is_synced = 0 WHERE is_deleted = 0`, boolToInt(encrypted))
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}
		return nil, nil
	})
	return err
}

// ClearAllData deletes every row from both tables.
func (r *Repository) ClearAllData(ctx context.Context) error {
	_, err := r.send(ctx, func(db *sql.DB) (any, error) {
		if _, execErr := db.Exec(`DELETE FROM notes`); execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}
		if _, execErr := db.Exec(`DELETE FROM kv_store`); execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutingStatement, execErr)
		}
		return nil, nil
	})
	return err
}

// GetCursor returns the last_synced_at cursor, defaulting to the epoch.
func (r *Repository) GetCursor(ctx context.Context) (string, error) {
	value, ok, err := r.GetKV(ctx, "last_synced_at")
	if err != nil {
		return "", err
	}
	if !ok {
		return models.EpochCursor, nil
	}
	return value, nil
}

// SetLastSynced advances the cursor alone (used when a pulled page had
// entries but none decrypted successfully, to avoid livelock).
func (r *Repository) SetLastSynced(ctx context.Context, cursor string) error {
	return r.SetKV(ctx, "last_synced_at", cursor)
}

// GetSalt returns the locally stored base64 encryption salt, if any.
func (r *Repository) GetSalt(ctx context.Context) (string, bool, error) {
	return r.GetKV(ctx, "encryption_salt")
}

// SetSalt persists the base64 encryption salt.
func (r *Repository) SetSalt(ctx context.Context, salt string) error {
	return r.SetKV(ctx, "encryption_salt", salt)
}

// DeleteSalt removes the locally stored salt (only valid when a downgrade
// to free plan is observed).
func (r *Repository) DeleteSalt(ctx context.Context) error {
	return r.DeleteKV(ctx, "encryption_salt")
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var isDeleted, isSynced, isEncrypted int
		if err := rows.Scan(&n.ID, &n.Content, &n.UpdatedAt, &isDeleted, &isSynced, &isEncrypted); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRow, err)
		}
		n.IsDeleted, n.IsSynced, n.IsEncrypted = isDeleted != 0, isSynced != 0, isEncrypted != 0
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}
	return notes, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
