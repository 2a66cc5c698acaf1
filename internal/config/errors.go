// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Sentinel errors returned by the config package. Callers should use
// errors.Is to match against these values.
var (
	// ErrNoPassphrase is returned when no passphrase file exists on disk.
	ErrNoPassphrase = errors.New("config: no passphrase stored")
)
