// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds small reusable view pieces.
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finpanel/finpanel-tui/internal/ui/styles"
)

// NoticeDuration is how long a transient notice stays on screen.
const NoticeDuration = 5 * time.Second

// Severity selects the notice style.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// expireMsg dismisses a notice. The generation guards against an old timer
// clearing a newer notice.
type expireMsg struct {
	gen int
}

// Notice is a transient status line that clears itself after a delay.
type Notice struct {
	theme    *styles.Theme
	text     string
	severity Severity
	gen      int
}

// NewNotice creates an empty notice.
func NewNotice(theme *styles.Theme) Notice {
	return Notice{theme: theme}
}

// Show replaces the current notice and returns the dismissal timer.
func (n Notice) Show(severity Severity, text string) (Notice, tea.Cmd) {
	n.text = text
	n.severity = severity
	n.gen++
	gen := n.gen
	return n, tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return expireMsg{gen: gen}
	})
}

// Update handles dismissal timers.
func (n Notice) Update(msg tea.Msg) Notice {
	if expire, ok := msg.(expireMsg); ok && expire.gen == n.gen {
		n.text = ""
	}
	return n
}

// Clear dismisses the notice immediately.
func (n Notice) Clear() Notice {
	n.text = ""
	n.gen++
	return n
}

// Visible reports whether there is anything to render.
func (n Notice) Visible() bool {
	return n.text != ""
}

// View renders the notice, or an empty string when dismissed.
func (n Notice) View() string {
	if n.text == "" {
		return ""
	}
	switch n.severity {
	case SeverityError:
		return n.theme.NoticeError.Render(n.text)
	case SeveritySuccess:
		return n.theme.NoticeSuccess.Render(n.text)
	default:
		return n.theme.NoticeInfo.Render(n.text)
	}
}
