// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui implements risu's terminal user interface on top of Bubble
// Tea, following the teacher's internal/tui Elm-architecture layout
// (keyMap, lipgloss styles, Msg-carrying async commands). It is
// deliberately thin relative to the teacher's multi-screen password
// manager: a note list, an editor, and an unlock prompt are enough to
// prove out the Controller's command/event contract end to end.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/laiosys/risu/internal/controller"
	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/models"
)

type screen int

const (
	screenList screen = iota
	screenEditor
	screenUnlock
)

// Model is the root Bubble Tea model for risu's TUI.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller
	log  *logger.Logger

	statusCh <-chan models.SyncStatus

	screen      screen
	notes       []models.Note
	idx         int
	loading     bool
	syncStatus  models.SyncStatus
	e2eStatus   models.E2EStatus
	statusLine  string
	lastErr     error

	editorID      string
	editorIsNew   bool
	editor        textarea.Model
	unlockInput   textinput.Model
	unlockPending bool

	buildInfo models.AppBuildInfo
}

// newModel builds the root model. statusCh is typically (*sync.Manager).StatusCh.
func newModel(ctx context.Context, ctrl *controller.Controller, statusCh <-chan models.SyncStatus, log *logger.Logger, buildInfo models.AppBuildInfo) Model {
	ta := textarea.New()
	ta.Placeholder = "Write your note..."
	ta.ShowLineNumbers = false

	ti := textinput.New()
	ti.Placeholder = "passphrase"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		log:         log,
		statusCh:    statusCh,
		screen:      screenList,
		loading:     true,
		editor:      ta,
		unlockInput: ti,
		buildInfo:   buildInfo,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.cmdLoadNotes(), m.cmdWaitForStatus())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.notes = msg.notes
		if m.idx >= len(m.notes) {
			m.idx = len(m.notes) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		return m, nil

	case noteSavedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.screen = screenList
		return m, m.cmdLoadNotes()

	case unlockResultMsg:
		m.unlockPending = false
		if msg.err != nil {
			m.lastErr = msg.err
			return m, m.cmdWaitForStatus()
		}
		if !msg.ok {
			m.statusLine = "wrong passphrase"
			return m, nil
		}
		m.screen = screenList
		m.e2eStatus = models.E2EUnlocked
		m.statusLine = "unlocked"
		return m, m.cmdLoadNotes()

	case syncStatusMsg:
		m.syncStatus = msg.status
		return m, m.cmdWaitForStatus()

	case copiedMsg:
		m.statusLine = "copied to clipboard"
		return m, cmdClearStatus()

	case clearStatusMsg:
		m.statusLine = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	switch m.screen {
	case screenList:
		return m.updateList(msg)
	case screenEditor:
		return m.updateEditor(msg)
	case screenUnlock:
		return m.updateUnlock(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.notes)-1 {
			m.idx++
		}
	case key.Matches(msg, keys.enter):
		n, ok := m.current()
		if !ok {
			return m, nil
		}
		m.editorID = n.ID
		m.editorIsNew = false
		m.editor.SetValue(n.Content)
		m.editor.Focus()
		m.screen = screenEditor
		return m, textarea.Blink
	case key.Matches(msg, keys.newNote):
		m.editorID = ""
		m.editorIsNew = true
		m.editor.SetValue("")
		m.editor.Focus()
		m.screen = screenEditor
		return m, textarea.Blink
	case key.Matches(msg, keys.delete):
		n, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, m.cmdSave(n.ID, "")
	case key.Matches(msg, keys.yank):
		n, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, cmdCopyToClipboard(n.Content)
	case key.Matches(msg, keys.sync):
		m.ctrl.TriggerSync()
		return m, nil
	case key.Matches(msg, keys.unlock):
		m.screen = screenUnlock
		m.unlockInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		m.editor.Blur()
		return m, nil
	case msg.Type == tea.KeyCtrlS:
		id := ""
		if !m.editorIsNew {
			id = m.editorID
		}
		return m, m.cmdSave(id, m.editor.Value())
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateUnlock(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.screen = screenList
		return m, nil
	case key.Matches(msg, keys.enter):
		if m.unlockPending {
			return m, nil
		}
		m.unlockPending = true
		passphrase := m.unlockInput.Value()
		m.unlockInput.SetValue("")
		return m, m.cmdUnlock(passphrase)
	}

	var cmd tea.Cmd
	m.unlockInput, cmd = m.unlockInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.screen {
	case screenList:
		body = m.viewList()
	case screenEditor:
		body = m.viewEditor()
	case screenUnlock:
		body = m.viewUnlock()
	}
	return appStyle.Render(body)
}

func (m Model) viewList() string {
	header := titleStyle.Render("risu "+m.buildInfo.BuildVersion()) + "  " + statusStyle.Render(fmt.Sprintf("[%s/%s]", m.syncStatus, m.e2eStatus))
	out := header + "\n\n"

	switch {
	case m.loading:
		out += "loading...\n"
	case len(m.notes) == 0:
		out += "no notes yet\n"
	default:
		for i, n := range m.notes {
			cursor := "  "
			if i == m.idx {
				cursor = cursorStyle.Render("> ")
			}
			title := n.Content
			if len(title) > 60 {
				title = title[:60] + "…"
			}
			out += fmt.Sprintf("%s%s\n", cursor, title)
		}
	}

	if m.statusLine != "" {
		out += "\n" + statusStyle.Render(m.statusLine) + "\n"
	}
	if m.lastErr != nil {
		out += "\n" + errorStyle.Render(m.lastErr.Error()) + "\n"
	}

	out += "\n" + helpStyle.Render("n new  enter open  d delete  y yank  s sync  ctrl+c quit")
	return out
}

func (m Model) viewEditor() string {
	return m.editor.View() + "\n\n" + helpStyle.Render("ctrl+s save  esc cancel")
}

func (m Model) viewUnlock() string {
	return titleStyle.Render("unlock risu") + "\n\n" + m.unlockInput.View() + "\n\n" + helpStyle.Render("enter unlock  esc cancel")
}

func (m Model) current() (models.Note, bool) {
	if len(m.notes) == 0 || m.idx < 0 || m.idx >= len(m.notes) {
		return models.Note{}, false
	}
	return m.notes[m.idx], true
}

func (m Model) cmdLoadNotes() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		notes, err := ctrl.Notes(ctx)
		return notesLoadedMsg{notes: notes, err: err}
	}
}

func (m Model) cmdSave(id string, content string) tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	var idPtr *string
	if id != "" {
		idPtr = &id
	}
	return func() tea.Msg {
		_, err := ctrl.Save(ctx, idPtr, content)
		return noteSavedMsg{err: err}
	}
}

func (m Model) cmdUnlock(passphrase string) tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		ok, err := ctrl.Unlock(ctx, passphrase)
		return unlockResultMsg{ok: ok, err: err}
	}
}

// cmdWaitForStatus blocks on the sync status channel for the next update,
// re-arming itself on every tick — the standard Bubble Tea pattern for
// bridging an external channel into the Msg stream.
func (m Model) cmdWaitForStatus() tea.Cmd {
	ch := m.statusCh
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return syncStatusMsg{status: status}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return noteSavedMsg{err: fmt.Errorf("tui: copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
