// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/laiosys/risu/internal/controller"
	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/models"
)

// TUI is the facade a caller uses to run the interactive interface,
// mirroring the teacher's internal/tui.TUI facade shape.
type TUI struct {
	ctrl      *controller.Controller
	statusCh  <-chan models.SyncStatus
	log       *logger.Logger
	buildInfo models.AppBuildInfo
}

// New builds a TUI wired to ctrl and a sync status channel, typically
// (*sync.Manager).StatusCh. buildInfo is shown in the list header, the
// same role it plays in the teacher's version output.
func New(ctrl *controller.Controller, statusCh <-chan models.SyncStatus, log *logger.Logger, buildInfo models.AppBuildInfo) *TUI {
	return &TUI{ctrl: ctrl, statusCh: statusCh, log: log, buildInfo: buildInfo}
}

// Run launches the interactive TUI in alternate-screen mode and blocks
// until the user quits.
func (t *TUI) Run(ctx context.Context) error {
	model := newModel(ctx, t.ctrl, t.statusCh, t.log, t.buildInfo)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
