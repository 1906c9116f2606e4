// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guard implements the protected-view session guard.
//
// Views wrap themselves in a Guard to ensure they only render while a valid
// session exists. The guard starts optimistically authenticated, checks the
// session synchronously on mount (no network call), and re-checks on a fixed
// interval. Once it transitions to unauthenticated there is no way back - a
// fresh login creates a new guard instance.
package guard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the guard's authentication state.
type State int

const (
	// StateAuthenticated is the optimistic initial state.
	StateAuthenticated State = iota
	// StateUnauthenticated is terminal; the view must redirect to login.
	StateUnauthenticated
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// Checker reports whether the session is currently missing or expired.
// The session manager satisfies this with a pure local storage read.
type Checker interface {
	IsExpired() bool
}

// RedirectMsg is emitted when the guard transitions to unauthenticated. The
// parent model reacts by invoking logout cleanup and rendering the login
// entry point.
type RedirectMsg struct{}

// recheckMsg drives the periodic expiry re-check. It carries the generation
// of the guard instance that scheduled it so ticks from an unmounted
// instance are ignored instead of mutating a reused model.
type recheckMsg struct {
	gen int
}

// DefaultInterval is the periodic re-check interval.
const DefaultInterval = 60 * time.Second

// Guard is the protected-view session guard.
type Guard struct {
	checker  Checker
	interval time.Duration
	state    State
	gen      int
}

// New creates a guard in the optimistic authenticated state.
func New(checker Checker, interval time.Duration) Guard {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Guard{
		checker:  checker,
		interval: interval,
		state:    StateAuthenticated,
	}
}

// Init triggers the mount-time check. The check itself happens in Update so
// the state transition is recorded on the model; it reads only local state,
// so a missing session redirects without any network call.
func (g Guard) Init() tea.Cmd {
	gen := g.gen
	return func() tea.Msg { return recheckMsg{gen: gen} }
}

// Update handles re-check ticks. Any other message passes through untouched.
func (g Guard) Update(msg tea.Msg) (Guard, tea.Cmd) {
	tickMsg, ok := msg.(recheckMsg)
	if !ok {
		return g, nil
	}

	// Stale tick from a previous mount.
	if tickMsg.gen != g.gen {
		return g, nil
	}

	if g.state == StateUnauthenticated {
		return g, nil
	}

	if g.checker.IsExpired() {
		g.state = StateUnauthenticated
		return g, func() tea.Msg { return RedirectMsg{} }
	}

	return g, g.tick()
}

// Deactivate invalidates pending ticks; call when the protected view
// unmounts so no timer survives the navigation.
func (g *Guard) Deactivate() {
	g.gen++
}

// State returns the current guard state.
func (g Guard) State() State {
	return g.state
}

// tick schedules the next periodic re-check.
func (g Guard) tick() tea.Cmd {
	gen := g.gen
	return tea.Tick(g.interval, func(time.Time) tea.Msg {
		return recheckMsg{gen: gen}
	})
}
