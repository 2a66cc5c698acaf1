// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/internal/store"
	"github.com/laiosys/risu/models"
)

func newTestRepo(t *testing.T) *store.Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	repo, err := store.Open(path, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveNote_GeneratesIDAndDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SaveNote(ctx, nil, "hello", false)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)

	got, err := repo.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.False(t, got.IsSynced)
	assert.False(t, got.IsDeleted)
}

func TestSaveNote_UpdateExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SaveNote(ctx, nil, "v1", false)
	require.NoError(t, err)

	_, err = repo.SaveNote(ctx, &n.ID, "v2", true)
	require.NoError(t, err)

	got, err := repo.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.True(t, got.IsEncrypted)
}

func TestGetNote_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetNote(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestDeleteNote_SoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SaveNote(ctx, nil, "content", false)
	require.NoError(t, err)
	require.NoError(t, repo.MarkAsSynced(ctx, n.ID))

	require.NoError(t, repo.DeleteNote(ctx, n.ID))

	got, err := repo.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.False(t, got.IsSynced)

	notes, err := repo.GetNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestGetNotes_OrderedByUpdatedAtDesc(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.SaveNote(ctx, nil, "first", false)
	require.NoError(t, err)
	_, err = repo.SaveNote(ctx, nil, "second", false)
	require.NoError(t, err)

	notes, err := repo.GetNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.GreaterOrEqual(t, notes[0].UpdatedAt, notes[1].UpdatedAt)
}

func TestGetUnsyncedNotes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n1, err := repo.SaveNote(ctx, nil, "unsynced", false)
	require.NoError(t, err)
	n2, err := repo.SaveNote(ctx, nil, "will be synced", false)
	require.NoError(t, err)
	require.NoError(t, repo.MarkAsSynced(ctx, n2.ID))

	unsynced, err := repo.GetUnsyncedNotes(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, n1.ID, unsynced[0].ID)
}

func TestPullUpsertNotes_LastWriterWinsStrict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := models.Note{ID: "n1", Content: "older", UpdatedAt: "2026-01-01T00:00:00Z"}
	require.NoError(t, repo.PullUpsertNotes(ctx, []models.Note{older}, "2026-01-01T00:00:00Z"))

	stale := models.Note{ID: "n1", Content: "stale-should-not-apply", UpdatedAt: "2025-01-01T00:00:00Z"}
	require.NoError(t, repo.PullUpsertNotes(ctx, []models.Note{stale}, "2026-01-02T00:00:00Z"))

	got, err := repo.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "older", got.Content, "strictly-older incoming note must not overwrite")

	cursor, err := repo.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T00:00:00Z", cursor, "cursor still advances even if no row changed")
}

func TestPullUpsertNotes_IdempotentOnRepeatApplication(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	batch := []models.Note{{ID: "n1", Content: "v1", UpdatedAt: "2026-01-01T00:00:00Z"}}
	require.NoError(t, repo.PullUpsertNotes(ctx, batch, "2026-01-01T00:00:00Z"))
	require.NoError(t, repo.PullUpsertNotes(ctx, batch, "2026-01-01T00:00:00Z"))

	got, err := repo.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content)
}

func TestPullUpsertNotes_NewerIncomingWins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pageA := []models.Note{{ID: "n1", Content: "from page A (newer)", UpdatedAt: "t2"}}
	require.NoError(t, repo.PullUpsertNotes(ctx, pageA, "t2"))

	pageB := []models.Note{{ID: "n1", Content: "from page B (older)", UpdatedAt: "t1"}}
	require.NoError(t, repo.PullUpsertNotes(ctx, pageB, "t3"))

	got, err := repo.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "from page A (newer)", got.Content)

	cursor, err := repo.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t3", cursor)
}

func TestKV_SetGetDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetKV(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetKV(ctx, "key", "value"))
	value, ok, err := repo.GetKV(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	require.NoError(t, repo.DeleteKV(ctx, "key"))
	_, ok, err = repo.GetKV(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetCursor_DefaultsToEpoch(t *testing.T) {
	repo := newTestRepo(t)
	cursor, err := repo.GetCursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.EpochCursor, cursor)
}

func TestSaltRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetSalt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetSalt(ctx, "c2FsdA=="))
	salt, ok, err := repo.GetSalt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c2FsdA==", salt)

	require.NoError(t, repo.DeleteSalt(ctx))
	_, ok, err = repo.GetSalt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetNotesEncryptedStatus_BulkUpdatesLiveNotesOnly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	live, err := repo.SaveNote(ctx, nil, "live", false)
	require.NoError(t, err)
	require.NoError(t, repo.MarkAsSynced(ctx, live.ID))

	deleted, err := repo.SaveNote(ctx, nil, "gone", false)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteNote(ctx, deleted.ID))

	require.NoError(t, repo.SetNotesEncryptedStatus(ctx, true))

	gotLive, err := repo.GetNote(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, gotLive.IsEncrypted)
	assert.False(t, gotLive.IsSynced)

	gotDeleted, err := repo.GetNote(ctx, deleted.ID)
	require.NoError(t, err)
	assert.False(t, gotDeleted.IsEncrypted)
}

func TestClearAllData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.SaveNote(ctx, nil, "content", false)
	require.NoError(t, err)
	require.NoError(t, repo.SetSalt(ctx, "salt"))

	require.NoError(t, repo.ClearAllData(ctx))

	notes, err := repo.GetNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, ok, err := repo.GetSalt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
