// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/laiosys/risu/models"
)

func decodeJSON[T any](resp *resty.Response) (T, error) {
	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("adapter: decode response: %w", err)
	}
	return out, nil
}

// StartLoginSession calls POST /auth/init, beginning a browser-based login.
func (c *Client) StartLoginSession(ctx context.Context) (models.LoginSession, error) {
	return doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).Post("/auth/init") },
		decodeJSON[models.LoginSession])
}

// PollLoginSession calls GET /auth/poll?session=, returning status
// "success"|"pending"|"not_found" (mapped from a 404 by doAuthenticated's
// ErrNotFound).
func (c *Client) PollLoginSession(ctx context.Context, sessionID string) (models.PollResult, error) {
	result, err := doAuthenticated(ctx, c,
		func() (*resty.Response, error) {
			return c.request(ctx).SetQueryParam("session", sessionID).Get("/auth/poll")
		},
		decodeJSON[models.PollResult])
	if isErrNotFound(err) {
		return models.PollResult{Status: "not_found"}, nil
	}
	return result, err
}

// RefreshToken calls POST /auth/refresh directly (not through
// doAuthenticated, since it is the mechanism doAuthenticated itself uses
// to recover from a 401 and must not recurse into it).
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (models.RefreshResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.RefreshRequest{RefreshToken: refreshToken}).
		Post("/auth/refresh")
	if err != nil {
		return models.RefreshResponse{}, fmt.Errorf("%w: %v", ErrServer, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.RefreshResponse{}, ErrUnauthenticated
	}
	return decodeJSON[models.RefreshResponse](resp)
}

// GetMe calls GET /auth/me.
func (c *Client) GetMe(ctx context.Context) (models.AuthMeResponse, error) {
	return doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).Get("/auth/me") },
		decodeJSON[models.AuthMeResponse])
}

// EnableE2E calls POST /auth/e2e/enable with the freshly generated salt
// and validator.
func (c *Client) EnableE2E(ctx context.Context, salt, validator string) (models.E2EEnableResponse, error) {
	return doAuthenticated(ctx, c,
		func() (*resty.Response, error) {
			return c.request(ctx).SetBody(models.E2EEnableRequest{Salt: salt, Validator: validator}).Post("/auth/e2e/enable")
		},
		decodeJSON[models.E2EEnableResponse])
}

// CheckSync calls GET /sync/check.
func (c *Client) CheckSync(ctx context.Context) (models.SyncCheckResponse, error) {
	return doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).Get("/sync/check") },
		decodeJSON[models.SyncCheckResponse])
}

// PullChanges calls GET /sync/pull?since=.
func (c *Client) PullChanges(ctx context.Context, since string) (models.PullResult, error) {
	return doAuthenticated(ctx, c,
		func() (*resty.Response, error) {
			return c.request(ctx).SetQueryParam("since", since).Get("/sync/pull")
		},
		decodeJSON[models.PullResult])
}

// PushNote calls POST /sync/push with an (already encrypted) note. A
// 402/403 response surfaces as ErrPaymentRequired.
func (c *Client) PushNote(ctx context.Context, note models.Note) error {
	_, err := doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).SetBody(note).Post("/sync/push") },
		func(*resty.Response) (struct{}, error) { return struct{}{}, nil })
	return err
}

// ResetRemote calls POST /sync/reset, wiping the account's remote notes.
func (c *Client) ResetRemote(ctx context.Context) error {
	_, err := doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).Post("/sync/reset") },
		func(*resty.Response) (struct{}, error) { return struct{}{}, nil })
	return err
}

// GetCheckoutURL calls POST /billing/checkout.
func (c *Client) GetCheckoutURL(ctx context.Context) (string, error) {
	resp, err := doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).Post("/billing/checkout") },
		decodeJSON[models.BillingURLResponse])
	return resp.URL, err
}

// GetPortalURL calls POST /billing/portal.
func (c *Client) GetPortalURL(ctx context.Context) (string, error) {
	resp, err := doAuthenticated(ctx, c,
		func() (*resty.Response, error) { return c.request(ctx).Post("/billing/portal") },
		decodeJSON[models.BillingURLResponse])
	return resp.URL, err
}

func isErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
