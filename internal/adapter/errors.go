// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

// Sentinel errors produced when the remote service returns a non-2xx
// status, or when the request policy (§4.5) gives up. Callers should use
// errors.Is to distinguish them rather than inspecting status codes or
// response bodies.
var (
	// ErrUnauthenticated is returned when a request still receives 401
	// after one refresh-and-retry cycle.
	ErrUnauthenticated = errors.New("adapter: unauthenticated")

	// ErrPaymentRequired is returned when the server responds 402/403 to
	// an operation gated by subscription plan (principally /sync/push).
	ErrPaymentRequired = errors.New("adapter: payment required")

	// ErrNotFound is returned for 404 responses that are not specially
	// handled (e.g. not the login-poll "not_found" status).
	ErrNotFound = errors.New("adapter: not found")

	// ErrServer wraps persistent 5xx/network failures after retries are
	// exhausted.
	ErrServer = errors.New("adapter: server error")
)
