// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// fakeChecker is a scriptable session checker.
type fakeChecker struct {
	expired bool
	calls   int
}

func (f *fakeChecker) IsExpired() bool {
	f.calls++
	return f.expired
}

// drive runs the guard's Init command and feeds resulting messages back
// until a RedirectMsg appears or the guard schedules a timer.
func drive(t *testing.T, g Guard) (Guard, bool) {
	t.Helper()

	cmd := g.Init()
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(RedirectMsg); ok {
			return g, true
		}
		if _, ok := msg.(recheckMsg); !ok {
			// A scheduled tea.Tick; stop driving.
			return g, false
		}
		g, cmd = g.Update(msg)
		if cmd != nil {
			// Peek: tick commands block on the timer, redirect commands
			// return immediately. Distinguish by running in a goroutine
			// with a short deadline.
			done := make(chan tea.Msg, 1)
			go func() { done <- cmd() }()
			select {
			case msg := <-done:
				if _, ok := msg.(RedirectMsg); ok {
					return g, true
				}
				g, cmd = g.Update(msg)
			case <-time.After(50 * time.Millisecond):
				return g, false
			}
		}
	}
	return g, false
}

func TestGuard_InitialStateOptimistic(t *testing.T) {
	g := New(&fakeChecker{}, time.Minute)
	require.Equal(t, StateAuthenticated, g.State())
}

func TestGuard_MountWithNoSessionRedirects(t *testing.T) {
	checker := &fakeChecker{expired: true}
	g := New(checker, time.Minute)

	g, redirected := drive(t, g)

	require.True(t, redirected, "mount-time check must yield the redirect")
	require.Equal(t, StateUnauthenticated, g.State())
	require.Equal(t, 1, checker.calls, "exactly one local check, no retries")
}

func TestGuard_MountWithValidSessionStaysAuthenticated(t *testing.T) {
	checker := &fakeChecker{expired: false}
	g := New(checker, time.Minute)

	g, redirected := drive(t, g)

	require.False(t, redirected)
	require.Equal(t, StateAuthenticated, g.State())
}

func TestGuard_ExpiryDetectedOnRecheck(t *testing.T) {
	checker := &fakeChecker{expired: false}
	g := New(checker, time.Minute)

	// Mount check passes.
	g, cmd := g.Update(recheckMsg{gen: 0})
	require.NotNil(t, cmd, "a re-check tick must be scheduled")
	require.Equal(t, StateAuthenticated, g.State())

	// Session expires between checks.
	checker.expired = true
	g, cmd = g.Update(recheckMsg{gen: 0})
	require.NotNil(t, cmd)
	require.IsType(t, RedirectMsg{}, cmd())
	require.Equal(t, StateUnauthenticated, g.State())
}

func TestGuard_NoTransitionBackToAuthenticated(t *testing.T) {
	checker := &fakeChecker{expired: true}
	g := New(checker, time.Minute)

	g, _ = g.Update(recheckMsg{gen: 0})
	require.Equal(t, StateUnauthenticated, g.State())

	// Session becomes valid again; the guard must not resume.
	checker.expired = false
	g, cmd := g.Update(recheckMsg{gen: 0})
	require.Nil(t, cmd)
	require.Equal(t, StateUnauthenticated, g.State())
}

func TestGuard_StaleTicksIgnoredAfterDeactivate(t *testing.T) {
	checker := &fakeChecker{expired: false}
	g := New(checker, time.Minute)

	g.Deactivate()

	// A tick scheduled by the old generation arrives after unmount.
	checker.expired = true
	g, cmd := g.Update(recheckMsg{gen: 0})
	require.Nil(t, cmd, "stale tick must not schedule or redirect")
	require.Equal(t, StateAuthenticated, g.State())
	require.Equal(t, 0, checker.calls, "stale tick must not even check")
}

func TestGuard_UnrelatedMessagesPassThrough(t *testing.T) {
	g := New(&fakeChecker{}, time.Minute)
	g, cmd := g.Update(tea.KeyMsg{})
	require.Nil(t, cmd)
	require.Equal(t, StateAuthenticated, g.State())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "AUTHENTICATED", StateAuthenticated.String())
	require.Equal(t, "UNAUTHENTICATED", StateUnauthenticated.String())
	require.Equal(t, "UNKNOWN", State(42).String())
}
