// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway is how far ahead of a token's exp claim doAuthenticated
// refreshes proactively, so a request doesn't race a token that is about
// to expire mid-flight.
const expiryLeeway = 5 * time.Second

// tokenNearExpiry reports whether idToken's exp claim is within
// expiryLeeway of now (or already past). An empty or unparsable token, or
// one without an exp claim, reports false. The server is the sole signer of
// these tokens, so the client only ever inspects claims — it has no
// signing key to verify against — following the teacher's
// internal/utils.ParseUserIDFromJWT's use of ParseUnverified for the same
// reason.
func tokenNearExpiry(idToken string) bool {
	if idToken == "" {
		return false
	}

	token, _, err := jwt.NewParser().ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Now().Add(expiryLeeway).After(exp.Time)
}
