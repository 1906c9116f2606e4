// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Complete(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		s    *Session
		want bool
	}{
		{"nil session", nil, false},
		{"all fields", &Session{Token: "tok", ExpiresIn: 3600, IssuedAt: issued}, true},
		{"missing token", &Session{ExpiresIn: 3600, IssuedAt: issued}, false},
		{"zero lifetime", &Session{Token: "tok", IssuedAt: issued}, false},
		{"negative lifetime", &Session{Token: "tok", ExpiresIn: -1, IssuedAt: issued}, false},
		{"zero issue time", &Session{Token: "tok", ExpiresIn: 3600}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Complete())
		})
	}
}

func TestSession_ValidAt(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{Token: "tok", ExpiresIn: 3600, IssuedAt: issued}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at issue", issued, true},
		{"one second before expiry", issued.Add(3599 * time.Second), true},
		{"exactly at expiry", issued.Add(3600 * time.Second), false},
		{"one second after expiry", issued.Add(3601 * time.Second), false},
		{"long after expiry", issued.Add(48 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ValidAt(tt.now))
		})
	}
}

func TestSession_ExpiresAt(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{Token: "tok", ExpiresIn: 1800, IssuedAt: issued}

	assert.Equal(t, issued.Add(30*time.Minute), s.ExpiresAt())
}

func TestSession_TimeRemaining(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{Token: "tok", ExpiresIn: 3600, IssuedAt: issued}

	assert.Equal(t, time.Hour, s.TimeRemaining(issued))
	assert.Equal(t, time.Second, s.TimeRemaining(issued.Add(3599*time.Second)))
	assert.Equal(t, time.Duration(0), s.TimeRemaining(issued.Add(2*time.Hour)))

	incomplete := &Session{ExpiresIn: 3600, IssuedAt: issued}
	assert.Equal(t, time.Duration(0), incomplete.TimeRemaining(issued))
}
