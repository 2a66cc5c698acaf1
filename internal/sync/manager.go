// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package sync implements risu's background sync state machine, grounded
// on original_source/src/sync.rs's SyncManager::start/try_sync/pull/push,
// translated into the teacher's service-layer ticker-and-cancel shape
// (internal/service/client_service_sync_job.go) and its fmt.Errorf wrapping
// idiom (internal/service/client_service_sync.go), generalized into a
// channel-driven loop since Manager must run concurrently with the
// controller rather than being invoked by it.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/laiosys/risu/internal/adapter"
	"github.com/laiosys/risu/internal/crypto"
	"github.com/laiosys/risu/internal/keystore"
	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/internal/store"
	"github.com/laiosys/risu/models"
)

const (
	// syncInterval is how often Start retries a sync attempt on its own,
	// independent of explicit Trigger calls.
	syncInterval = 30 * time.Second

	// maxPullPages bounds a single pull loop so a misbehaving server (or a
	// cursor that never advances) cannot hang trySync forever.
	maxPullPages = 100
)

// Manager owns the background sync loop: it polls account/plan state,
// pulls remote changes into the local repository, and pushes locally
// unsynced notes, reporting its phase on StatusCh.
type Manager struct {
	client *adapter.Client
	repo   *store.Repository
	keys   *keystore.KeyStore
	log    *logger.Logger

	// StatusCh receives the outcome of every sync attempt. It is buffered
	// so Start's loop never blocks on a slow or absent reader.
	StatusCh chan models.SyncStatus

	triggerCh chan struct{}
}

// New constructs a Manager. Call Start to begin the background loop.
func New(client *adapter.Client, repo *store.Repository, keys *keystore.KeyStore, log *logger.Logger) *Manager {
	return &Manager{
		client:    client,
		repo:      repo,
		keys:      keys,
		log:       log,
		StatusCh:  make(chan models.SyncStatus, 8),
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an out-of-band sync attempt as soon as the loop is next
// able to run one, e.g. after Save or Login. It never blocks.
func (m *Manager) Trigger() {
	select {
	case m.triggerCh <- struct{}{}:
	default:
	}
}

// Start runs one sync attempt immediately, then loops until ctx is done,
// waking on Trigger or a periodic ticker, whichever comes first.
func (m *Manager) Start(ctx context.Context) {
	m.runOnce(ctx)

	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.triggerCh:
			m.runOnce(ctx)
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *Manager) runOnce(ctx context.Context) {
	status := m.trySync(ctx)
	select {
	case m.StatusCh <- status:
	default:
		m.log.Warn().Msg("sync status channel full, dropping update")
	}
}

// trySync runs a single attempt through the state machine described in
// §5/§9 and returns its terminal status.
func (m *Manager) trySync(ctx context.Context) models.SyncStatus {
	if !m.client.HasToken() {
		return models.StatusOffline
	}

	me, err := m.client.GetMe(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("sync: account check failed")
		return models.StatusError
	}
	plan := models.ParsePlan(me.Plan)

	if !plan.IsPaid() {
		if cleanupErr := m.cleanupFreePlan(ctx); cleanupErr != nil {
			m.log.Warn().Err(cleanupErr).Msg("sync: free-plan cleanup failed")
		}
		return models.StatusOffline
	}

	_, hasLocalSalt, err := m.repo.GetSalt(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("sync: read local salt failed")
		return models.StatusError
	}
	hasRemoteSalt := me.EncryptionSalt != nil && *me.EncryptionSalt != ""

	if !hasLocalSalt && !hasRemoteSalt {
		// Paid plan, E2E never set up on any device yet.
		return models.StatusOffline
	}
	if !hasLocalSalt && hasRemoteSalt {
		// E2E was enabled from another device since this one last looked:
		// adopt the remote salt so CheckSalt can be re-evaluated with it.
		if err := m.repo.SetSalt(ctx, *me.EncryptionSalt); err != nil {
			m.log.Warn().Err(err).Msg("sync: adopt remote salt failed")
			return models.StatusError
		}
	}
	if !m.keys.IsSet() {
		// Paid plan, salt exists locally now, but this device has not
		// unlocked — AccountCheck/Unlock own recovering from this.
		return models.StatusOffline
	}

	if err := m.pull(ctx); err != nil {
		if errors.Is(err, adapter.ErrPaymentRequired) {
			return models.StatusPaymentRequired
		}
		m.log.Warn().Err(err).Msg("sync: pull failed")
		return models.StatusError
	}
	if err := m.push(ctx, plan); err != nil {
		if errors.Is(err, adapter.ErrPaymentRequired) {
			return models.StatusPaymentRequired
		}
		m.log.Warn().Err(err).Msg("sync: push failed")
		return models.StatusError
	}
	return models.StatusSynced
}

func (m *Manager) cleanupFreePlan(ctx context.Context) error {
	_, hasSalt, err := m.repo.GetSalt(ctx)
	if err != nil {
		return err
	}
	if !hasSalt {
		return nil
	}
	m.keys.Clear()
	if err := m.repo.DeleteSalt(ctx); err != nil {
		return err
	}
	return nil
}

// pull advances the local database toward the server's state, one page at
// a time, per §5's paging/decrypt/livelock-avoidance rules.
func (m *Manager) pull(ctx context.Context) error {
	cursor, err := m.repo.GetCursor(ctx)
	if err != nil {
		return err
	}

	check, err := m.client.CheckSync(ctx)
	if err != nil {
		return err
	}
	if check.LastUpdatedAt <= cursor {
		return nil
	}

	key, _ := m.keys.Get()

	for page := 0; page < maxPullPages; page++ {
		result, err := m.client.PullChanges(ctx, cursor)
		if err != nil {
			return err
		}

		decrypted := make([]models.Note, 0, len(result.Changes))
		for _, n := range result.Changes {
			if !n.IsEncrypted {
				m.log.Warn().Str("note_id", n.ID).Msg("sync: dropping deprecated plaintext remote note")
				continue
			}
			plaintext, err := crypto.DecryptString(n.Content, key)
			if err != nil {
				m.log.Warn().Err(err).Str("note_id", n.ID).Msg("sync: dropping note that failed to decrypt")
				continue
			}
			n.Content = plaintext
			decrypted = append(decrypted, n)
		}

		if len(decrypted) > 0 {
			if err := m.repo.PullUpsertNotes(ctx, decrypted, result.NextCursor); err != nil {
				return err
			}
		} else if len(result.Changes) > 0 {
			// Every note in a non-empty page failed to decrypt or was
			// deprecated plaintext: still advance the cursor alone so a
			// permanently-undecryptable page cannot stall sync forever.
			if err := m.repo.SetLastSynced(ctx, result.NextCursor); err != nil {
				return err
			}
		}

		if result.NextCursor == cursor || !result.HasMore {
			break
		}
		cursor = result.NextCursor
	}

	if key != nil {
		defer wipe(key)
	}
	return nil
}

// push uploads every locally unsynced note. It re-reads each note
// immediately before encrypting it, since the note may have changed again
// since the unsynced snapshot was taken.
func (m *Manager) push(ctx context.Context, plan models.Plan) error {
	if !plan.IsPaid() {
		return nil
	}

	unsynced, err := m.repo.GetUnsyncedNotes(ctx)
	if err != nil {
		return err
	}
	if len(unsynced) == 0 {
		return nil
	}

	key, ok := m.keys.Get()
	if !ok {
		m.log.Warn().Msg("sync: push skipped, no key loaded")
		return nil
	}
	defer wipe(key)

	for _, stale := range unsynced {
		n, err := m.repo.GetNote(ctx, stale.ID)
		if err != nil {
			m.log.Warn().Err(err).Str("note_id", stale.ID).Msg("sync: push skipped note, re-read failed")
			continue
		}

		ciphertext, err := crypto.EncryptString(n.Content, key)
		if err != nil {
			m.log.Warn().Err(err).Str("note_id", n.ID).Msg("sync: push skipped note, encrypt failed")
			continue
		}
		n.Content = ciphertext
		n.IsEncrypted = true

		if err := m.client.PushNote(ctx, n); err != nil {
			return err
		}
		if err := m.repo.MarkAsSynced(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
