// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/laiosys/risu/models"

// notesLoadedMsg is produced after every list refresh.
type notesLoadedMsg struct {
	notes []models.Note
	err   error
}

// noteSavedMsg is produced after Save completes (including delete-via-save).
type noteSavedMsg struct {
	err error
}

// unlockResultMsg is produced after Controller.Unlock completes.
type unlockResultMsg struct {
	ok  bool
	err error
}

// syncStatusMsg wraps a status read from the SyncManager's status channel.
type syncStatusMsg struct {
	status models.SyncStatus
}

// copiedMsg confirms a clipboard write and clears itself after a delay.
type copiedMsg struct{}

// clearStatusMsg clears the transient status line.
type clearStatusMsg struct{}
