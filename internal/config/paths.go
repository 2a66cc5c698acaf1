// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides risu's file-backed configuration, token, and
// passphrase storage under $HOME/.risu/, grounded on the teacher's
// caarlos0/env config layer and on original_source/src/config.rs's file
// layout and defaults.
package config

import (
	"os"
	"path/filepath"
)

const dirName = ".risu"

// Paths resolves every file risu reads or writes under its home directory.
type Paths struct {
	Dir             string
	ConfigFile      string
	TokenFile       string
	LegacyTokenFile string
	PassphraseFile  string
	DatabaseFile    string
	LogFile         string
}

// ResolvePaths builds a Paths rooted at $HOME/.risu, or $RISU_HOME when
// set (used by tests to avoid touching the real home directory).
func ResolvePaths() (Paths, error) {
	root := os.Getenv("RISU_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		root = filepath.Join(home, dirName)
	}

	return Paths{
		Dir:             root,
		ConfigFile:      filepath.Join(root, "config.toml"),
		TokenFile:       filepath.Join(root, "token.json"),
		LegacyTokenFile: filepath.Join(root, "token"),
		PassphraseFile:  filepath.Join(root, "passphrase"),
		DatabaseFile:    filepath.Join(root, "local.db"),
		LogFile:         filepath.Join(root, "logs", "risu.log"),
	}, nil
}

// EnsureDir creates the risu home directory with owner-only permissions
// if it does not already exist.
func (p Paths) EnsureDir() error {
	return os.MkdirAll(p.Dir, 0o700)
}
