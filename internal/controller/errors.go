// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package controller

import "errors"

// Sentinel errors returned by Controller. Callers should use errors.Is.
var (
	// ErrPassphraseMismatch is returned by EnableE2E when the passphrase
	// and its confirmation do not match.
	ErrPassphraseMismatch = errors.New("controller: passphrase confirmation mismatch")
)
