// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Wire DTOs exchanged with the remote identity/sync service. Field names
// mirror §6 of the specification exactly so that (de)serialization needs
// no field-renaming glue.

// LoginSession is returned by POST /auth/init.
type LoginSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PollResult is returned by GET /auth/poll?session=.
type PollResult struct {
	Status       string `json:"status"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthMeResponse is returned by GET /auth/me.
type AuthMeResponse struct {
	ID                   string  `json:"id"`
	Plan                 string  `json:"plan"`
	SubscriptionStatus   string  `json:"subscription_status"`
	SubscriptionEndDate  *string `json:"subscription_end_date,omitempty"`
	EncryptionSalt       *string `json:"encryption_salt,omitempty"`
	EncryptionValidator  *string `json:"encryption_validator,omitempty"`
}

// E2EEnableRequest is the body of POST /auth/e2e/enable.
type E2EEnableRequest struct {
	Salt      string `json:"salt"`
	Validator string `json:"validator"`
}

// E2EEnableResponse is returned by POST /auth/e2e/enable.
type E2EEnableResponse struct {
	EncryptionSalt string `json:"encryption_salt"`
}

// SyncCheckResponse is returned by GET /sync/check.
type SyncCheckResponse struct {
	LastUpdatedAt string `json:"last_updated_at"`
}

// PullResult is returned by GET /sync/pull?since=.
type PullResult struct {
	Changes    []Note `json:"changes"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// BillingURLResponse is returned by POST /billing/checkout and
// POST /billing/portal.
type BillingURLResponse struct {
	URL string `json:"url"`
}
