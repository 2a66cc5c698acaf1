// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/laiosys/risu/internal/logger"
)

// GeneralConfig holds general, non-security application settings.
type GeneralConfig struct {
	OfflineMode bool `toml:"offline_mode"`
}

// AppConfig is the persisted config.toml document.
type AppConfig struct {
	General GeneralConfig `toml:"general"`
}

// DefaultAppConfig returns the config used when no config.toml exists yet,
// or when an existing one fails to parse.
func DefaultAppConfig() AppConfig {
	return AppConfig{General: GeneralConfig{OfflineMode: false}}
}

// LoadAppConfig loads config.toml, creating the risu home directory and
// writing a fresh default file (mode 0600) if none exists. If the existing
// file fails to parse, it is renamed to config.toml.bak, a warning is
// logged, and defaults are returned — matching S6's corrupt-config
// scenario.
func LoadAppConfig(paths Paths, log *logger.Logger) (AppConfig, error) {
	if err := paths.EnsureDir(); err != nil {
		return AppConfig{}, err
	}

	if _, err := os.Stat(paths.ConfigFile); os.IsNotExist(err) {
		def := DefaultAppConfig()
		if writeErr := writeAppConfig(paths, def); writeErr != nil {
			return AppConfig{}, writeErr
		}
		return def, nil
	}

	var cfg AppConfig
	if _, err := toml.DecodeFile(paths.ConfigFile, &cfg); err != nil {
		log.Warn().Err(err).Str("file", paths.ConfigFile).Msg("config.toml failed to parse, backing up and using defaults")
		_ = os.Rename(paths.ConfigFile, paths.ConfigFile+".bak")
		return DefaultAppConfig(), nil
	}

	return cfg, nil
}

// SetOfflineMode loads the current config, sets its offline-mode flag to
// offline, and rewrites config.toml.
func SetOfflineMode(paths Paths, log *logger.Logger, offline bool) error {
	cfg, err := LoadAppConfig(paths, log)
	if err != nil {
		return err
	}
	cfg.General.OfflineMode = offline
	return writeAppConfig(paths, cfg)
}

func writeAppConfig(paths Paths, cfg AppConfig) error {
	f, err := os.OpenFile(paths.ConfigFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
