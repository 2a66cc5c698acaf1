// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/laiosys/risu/models"
)

// LoadTokenData returns the first successful credential source found on
// disk: token.json, then the legacy "token" file (JSON or a raw id_token
// string), else the zero value annotated SourceNone. It never errors on
// absence — only when an existing file cannot be read, or when token.json
// exists but does not decode as JSON.
func LoadTokenData(paths Paths) (models.TokenData, models.TokenSource, error) {
	if data, err := readTokenFile(paths.TokenFile); err == nil {
		return data, models.SourceFile, nil
	} else if !os.IsNotExist(err) {
		return models.TokenData{}, models.SourceNone, fmt.Errorf("config: read token.json: %w", err)
	}

	raw, err := os.ReadFile(paths.LegacyTokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return models.TokenData{}, models.SourceNone, nil
		}
		return models.TokenData{}, models.SourceNone, fmt.Errorf("config: read legacy token file: %w", err)
	}

	var data models.TokenData
	if jsonErr := json.Unmarshal(raw, &data); jsonErr == nil && data.IDToken != "" {
		return data, models.SourceLegacyFile, nil
	}

	idToken := strings.TrimSpace(string(raw))
	if idToken == "" {
		return models.TokenData{}, models.SourceNone, nil
	}
	return models.TokenData{IDToken: idToken}, models.SourceLegacyFile, nil
}

func readTokenFile(path string) (models.TokenData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.TokenData{}, err
	}
	var data models.TokenData
	if err = json.Unmarshal(raw, &data); err != nil {
		return models.TokenData{}, fmt.Errorf("config: decode token.json: %w", err)
	}
	return data, nil
}

// SaveTokenData persists idToken/refreshToken to token.json only (mode
// 0600), matching save_token_data's "write only to the canonical file"
// contract.
func SaveTokenData(paths Paths, idToken, refreshToken string) error {
	if err := paths.EnsureDir(); err != nil {
		return err
	}

	raw, err := json.Marshal(models.TokenData{IDToken: idToken, RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("config: encode token data: %w", err)
	}

	return os.WriteFile(paths.TokenFile, raw, 0o600)
}

// DeleteTokenData removes token.json and the legacy token file, if
// present.
func DeleteTokenData(paths Paths) error {
	if err := removeIfExists(paths.TokenFile); err != nil {
		return err
	}
	return removeIfExists(paths.LegacyTokenFile)
}

// SavePassphrase persists the E2E passphrase to a mode-0600 file for
// convenience unlock on restart (see spec.md §7's passphrase-on-disk
// tradeoff).
func SavePassphrase(paths Paths, passphrase string) error {
	if err := paths.EnsureDir(); err != nil {
		return err
	}
	return os.WriteFile(paths.PassphraseFile, []byte(passphrase), 0o600)
}

// LoadPassphrase returns the stored passphrase, trimmed, or ErrNoPassphrase
// if none is stored.
func LoadPassphrase(paths Paths) (string, error) {
	raw, err := os.ReadFile(paths.PassphraseFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoPassphrase
		}
		return "", fmt.Errorf("config: read passphrase: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// DeletePassphrase removes the passphrase file, if present.
func DeletePassphrase(paths Paths) error {
	return removeIfExists(paths.PassphraseFile)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
