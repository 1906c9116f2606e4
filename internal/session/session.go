// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the authenticated-session lifecycle for the finpanel
// console: the persisted session record, its expiration evaluation, and the
// HTTP auth binding attached to the shared API client.
//
// A session is either fully absent or complete. Partial or corrupt persisted
// records are treated as absent and cleaned up on read. Expiry is judged
// client-side from the locally stamped issue time; this can drift from the
// server's view when clocks or response latency vary, which is an accepted
// limitation - the server remains the final authority via 401 responses.
package session

import (
	"time"

	"github.com/finpanel/finpanel-tui/internal/api"
)

// Session is the locally held record proving successful authentication.
type Session struct {
	// Token is the opaque bearer credential.
	Token string `json:"token"`

	// ExpiresIn is the server-declared token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`

	// IssuedAt is stamped locally at the moment the login response was
	// received, not the server-side issue time.
	IssuedAt time.Time `json:"issuedAt"`

	// User is the server-supplied profile of the authenticated user.
	User *api.User `json:"user,omitempty"`

	// Provisioning flags reported by SSO login when the server auto-created
	// a user or company record.
	NewUserCreated    bool `json:"newUserCreated,omitempty"`
	NewCompanyCreated bool `json:"newCompanyCreated,omitempty"`
}

// Complete reports whether the record satisfies the all-or-nothing session
// invariant: token, lifetime, and issue time all present.
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && s.ExpiresIn > 0 && !s.IssuedAt.IsZero()
}

// ExpiresAt returns the derived expiration instant.
func (s *Session) ExpiresAt() time.Time {
	return s.IssuedAt.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// ValidAt reports whether the session is complete and unexpired at the
// given instant.
func (s *Session) ValidAt(now time.Time) bool {
	return s.Complete() && now.Before(s.ExpiresAt())
}

// TimeRemaining returns the duration until expiry at the given instant,
// or zero if already expired or incomplete.
func (s *Session) TimeRemaining(now time.Time) time.Duration {
	if !s.Complete() {
		return 0
	}
	remaining := s.ExpiresAt().Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
