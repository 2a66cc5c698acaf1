// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package controller translates user intents into Repository calls and
// sync triggers, and owns the small state machine around login, unlock,
// and E2E setup. Grounded on original_source/src/main.rs's
// save_current_note, unlock_process, perform_account_check, the E2ESetup
// key-handling block, and logout, translated 1:1 into exported Go methods
// that a thin UI layer calls — following the teacher's pattern of a
// service type wrapping a repository and adapter (internal/service).
package controller

import (
	"context"
	"errors"

	"github.com/laiosys/risu/internal/adapter"
	"github.com/laiosys/risu/internal/config"
	"github.com/laiosys/risu/internal/crypto"
	"github.com/laiosys/risu/internal/keystore"
	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/internal/store"
	"github.com/laiosys/risu/internal/sync"
	"github.com/laiosys/risu/models"
)

// Controller is the single entry point a UI layer calls to act on user
// intent. It has no UI-facing state of its own beyond what it reads from
// the Repository and KeyStore on demand.
type Controller struct {
	client *adapter.Client
	repo   *store.Repository
	keys   *keystore.KeyStore
	syncer *sync.Manager
	paths  config.Paths
	log    *logger.Logger
}

// New constructs a Controller wired to its collaborators.
func New(client *adapter.Client, repo *store.Repository, keys *keystore.KeyStore, syncer *sync.Manager, paths config.Paths, log *logger.Logger) *Controller {
	return &Controller{client: client, repo: repo, keys: keys, syncer: syncer, paths: paths, log: log}
}

// Notes returns every live note, for the UI's list view.
func (c *Controller) Notes(ctx context.Context) ([]models.Note, error) {
	return c.repo.GetNotes(ctx)
}

// TriggerSync requests an out-of-band sync attempt, e.g. in response to a
// manual "sync now" UI action.
func (c *Controller) TriggerSync() {
	c.syncer.Trigger()
}

// Save persists editor content under id, per §4.7's Save intent: empty
// content with an existing id deletes the note; unchanged content is a
// no-op; otherwise the note is saved with the current E2E-enabled status
// and a sync is triggered.
func (c *Controller) Save(ctx context.Context, id *string, content string) (models.Note, error) {
	if content == "" && id != nil && *id != "" {
		if err := c.repo.DeleteNote(ctx, *id); err != nil {
			return models.Note{}, err
		}
		c.syncer.Trigger()
		return models.Note{}, nil
	}

	if id != nil && *id != "" {
		current, err := c.repo.GetNote(ctx, *id)
		if err == nil && current.Content == content {
			return current, nil
		}
		if err != nil && !errors.Is(err, store.ErrNoteNotFound) {
			return models.Note{}, err
		}
	}

	// E2E is enabled on this device once a key is loaded or a salt is held
	// locally (the latter also covers the locked state).
	encrypted := c.keys.IsSet()
	if !encrypted {
		_, hasSalt, err := c.repo.GetSalt(ctx)
		if err != nil {
			return models.Note{}, err
		}
		encrypted = hasSalt
	}

	n, err := c.repo.SaveNote(ctx, id, content, encrypted)
	if err != nil {
		return models.Note{}, err
	}
	c.syncer.Trigger()
	return n, nil
}

// Login starts a browser-based login session, returning the URL the UI
// should open and the session ID PollLogin needs to poll it. /auth/init
// returns both in one response, so the split keeps the UI from having to
// parse a session ID back out of the URL.
func (c *Controller) Login(ctx context.Context) (url string, sessionID string, err error) {
	session, err := c.client.StartLoginSession(ctx)
	if err != nil {
		return "", "", err
	}
	return session.URL, session.SessionID, nil
}

// PollLogin polls a single /auth/poll round for sessionID. It reports done
// once the session resolves to success, having already persisted the
// returned tokens and run AccountCheck; the caller is expected to call
// PollLogin again, e.g. every 2s per §4.7, until done is true or an error
// occurs.
func (c *Controller) PollLogin(ctx context.Context, sessionID string) (done bool, err error) {
	result, err := c.client.PollLoginSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if result.Status != "success" {
		return false, nil
	}

	c.client.SetTokens(result.Token, result.RefreshToken)
	if err := config.SaveTokenData(c.paths, result.Token, result.RefreshToken); err != nil {
		return false, err
	}
	if _, err := c.AccountCheck(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// AccountCheck implements §4.7's Account Check intent and returns the
// resulting E2E gate status for the UI to react to.
func (c *Controller) AccountCheck(ctx context.Context) (models.E2EStatus, error) {
	me, err := c.client.GetMe(ctx)
	if err != nil {
		return "", err
	}
	plan := models.ParsePlan(me.Plan)

	if !plan.IsPaid() {
		if _, hasSalt, err := c.repo.GetSalt(ctx); err == nil && hasSalt {
			c.keys.Clear()
			_ = c.repo.DeleteSalt(ctx)
			_ = config.DeletePassphrase(c.paths)
		}
		return models.E2EDisabled, nil
	}

	if me.EncryptionSalt == nil || *me.EncryptionSalt == "" {
		return models.E2ESetupRequired, nil
	}

	if err := c.repo.SetSalt(ctx, *me.EncryptionSalt); err != nil {
		return "", err
	}

	passphrase, err := config.LoadPassphrase(c.paths)
	if err != nil {
		if errors.Is(err, config.ErrNoPassphrase) {
			return models.E2ELocked, nil
		}
		return "", err
	}

	go func() {
		bgCtx := context.Background()
		if _, err := c.Unlock(bgCtx, passphrase); err != nil {
			c.log.Warn().Err(err).Msg("controller: background unlock after account check failed")
		}
	}()
	return models.E2EUnlocking, nil
}

// Unlock implements §4.7's Unlock intent. A wrong passphrase, an absent
// local salt, or an empty passphrase all return (false, nil) — never an
// error — matching the original's contract that guessing is not an
// exceptional condition.
func (c *Controller) Unlock(ctx context.Context, passphrase string) (bool, error) {
	if passphrase == "" {
		return false, nil
	}

	saltB64, hasSalt, err := c.repo.GetSalt(ctx)
	if err != nil {
		return false, err
	}
	if !hasSalt {
		return false, nil
	}

	salt, err := crypto.DecodeSalt(saltB64)
	if err != nil {
		return false, nil
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return false, err
	}

	me, err := c.client.GetMe(ctx)
	if err != nil {
		return false, err
	}
	if me.EncryptionValidator != nil && *me.EncryptionValidator != "" {
		plain, err := crypto.DecryptString(*me.EncryptionValidator, key)
		if err != nil || plain != crypto.ValidatorSentinel {
			return false, nil
		}
	}

	c.keys.Set(key)
	if err := config.SavePassphrase(c.paths, passphrase); err != nil {
		return false, err
	}
	c.syncer.Trigger()
	return true, nil
}

// EnableE2E implements §4.7's Enable E2E (first time) intent.
func (c *Controller) EnableE2E(ctx context.Context, passphrase, confirm string) error {
	if passphrase != confirm {
		return ErrPassphraseMismatch
	}

	saltB64, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}
	salt, err := crypto.DecodeSalt(saltB64)
	if err != nil {
		return err
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}
	validator, err := crypto.EncryptString(crypto.ValidatorSentinel, key)
	if err != nil {
		return err
	}

	if _, err := c.client.EnableE2E(ctx, saltB64, validator); err != nil {
		return err
	}

	if err := c.repo.SetSalt(ctx, saltB64); err != nil {
		return err
	}
	if err := config.SavePassphrase(c.paths, passphrase); err != nil {
		return err
	}
	if err := c.repo.SetNotesEncryptedStatus(ctx, true); err != nil {
		return err
	}

	c.keys.Set(key)
	c.syncer.Trigger()
	return nil
}

// Logout implements §4.7's Logout intent: tokens and passphrase are
// deleted and the KeyStore is cleared, but notes are retained locally.
func (c *Controller) Logout(ctx context.Context) error {
	if err := config.DeleteTokenData(c.paths); err != nil {
		return err
	}
	if err := config.DeletePassphrase(c.paths); err != nil {
		return err
	}
	c.keys.Clear()
	c.client.SetTokens("", "")
	return nil
}

// ClearAllData implements §4.7's Clear all data intent: a best-effort
// remote reset (failures are logged, not fatal) followed by a local wipe.
func (c *Controller) ClearAllData(ctx context.Context) error {
	if c.client.HasToken() {
		if err := c.client.ResetRemote(ctx); err != nil {
			c.log.Warn().Err(err).Msg("controller: remote reset failed, clearing locally only")
		}
	}
	return c.repo.ClearAllData(ctx)
}
