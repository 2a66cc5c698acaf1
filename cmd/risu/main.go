// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Command risu is the interactive client entrypoint, wiring config,
// storage, the remote adapter, the background sync loop, the controller,
// and the terminal UI together, following the teacher's cmd/client/main.go
// and internal/client/app.go lifecycle.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/laiosys/risu/internal/adapter"
	"github.com/laiosys/risu/internal/config"
	"github.com/laiosys/risu/internal/controller"
	"github.com/laiosys/risu/internal/keystore"
	"github.com/laiosys/risu/internal/logger"
	"github.com/laiosys/risu/internal/store"
	"github.com/laiosys/risu/internal/sync"
	"github.com/laiosys/risu/internal/tui"
	"github.com/laiosys/risu/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "risu: %v\n", err)
		os.Exit(1)
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("risu %s (built %s, commit %s)\n", buildVersion, buildDate, buildCommit)
}

// run performs the full client lifecycle: load config, open storage, wire
// the adapter and sync manager, authenticate if needed, start the
// background sync loop, then hand off to the terminal UI.
func run() error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDir(); err != nil {
		return fmt.Errorf("create risu home: %w", err)
	}

	log := logger.NewFileLogger("risu", paths.LogFile)

	if _, err := config.LoadAppConfig(paths, log); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	repo, err := store.Open(paths.DatabaseFile, log.GetChildLogger())
	if err != nil {
		return fmt.Errorf("open local database: %w", err)
	}
	defer repo.Close()

	client := adapter.New(envCfg.APIBaseURL, log.GetChildLogger())
	client.OnRefresh(func(idToken, refreshToken string) {
		if err := config.SaveTokenData(paths, idToken, refreshToken); err != nil {
			log.Warn().Err(err).Msg("main: failed to persist refreshed tokens")
		}
	})

	tokens, source, err := config.LoadTokenData(paths)
	if err != nil {
		return fmt.Errorf("load token data: %w", err)
	}
	if source != models.SourceNone {
		client.SetTokens(tokens.IDToken, tokens.RefreshToken)
	}

	keys := keystore.New()
	syncer := sync.New(client, repo, keys, log.GetChildLogger())
	ctrl := controller.New(client, repo, keys, syncer, paths, log.GetChildLogger())

	ctx := context.Background()

	if !client.HasToken() {
		if err := loginFlow(ctx, ctrl); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	} else if _, err := ctrl.AccountCheck(ctx); err != nil {
		log.Warn().Err(err).Msg("main: startup account check failed")
	}

	go syncer.Start(ctx)

	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	ui := tui.New(ctrl, syncer.StatusCh, log.GetChildLogger(), buildInfo)
	return ui.Run(ctx)
}

// loginFlow drives the browser-based login handshake over the console:
// print the URL for the user to open, then poll every 2s per §4.7 until
// the session resolves.
func loginFlow(ctx context.Context, ctrl *controller.Controller) error {
	url, sessionID, err := ctrl.Login(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Open the following URL in your browser to sign in:")
	fmt.Println(url)
	fmt.Println("Waiting for confirmation... (Ctrl+C to cancel)")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := ctrl.PollLogin(ctx, sessionID)
			if err != nil {
				return err
			}
			if done {
				fmt.Println("Signed in.")
				return nil
			}
		}
	}
}

