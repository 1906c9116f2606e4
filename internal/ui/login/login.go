// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the login view: username/password authentication
// plus the SSO browser flow.
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finpanel/finpanel-tui/internal/callback"
	"github.com/finpanel/finpanel-tui/internal/session"
	"github.com/finpanel/finpanel-tui/internal/ui/styles"
)

// ssoExchangeTimeout bounds the whole SSO flow: URL fetch, user round trip
// through the browser, and the code exchange.
const ssoExchangeTimeout = 5 * time.Minute

// field identifies the focused form field.
type field int

const (
	fieldUsername field = iota
	fieldPassword
	fieldRemember
	fieldCount
)

// =============================================================================
// MESSAGES
// =============================================================================

// SucceededMsg reports a completed login. The parent switches to the
// dashboard; the provisioning flags select the profile-completion notice.
type SucceededMsg struct {
	Session *session.Session
}

// FailedMsg reports a failed login attempt.
type FailedMsg struct {
	Err error
}

// ssoWaitingMsg reports that the browser flow started and carries the
// provider URL for display.
type ssoWaitingMsg struct {
	URL string
}

// =============================================================================
// MODEL
// =============================================================================

// Authenticator is the slice of the session manager the login view needs.
type Authenticator interface {
	LoginWithPassword(ctx context.Context, username, password string, rememberMe bool) (*session.Session, error)
	BeginSSOExchange(ctx context.Context) (string, error)
	CompleteSSOExchange(ctx context.Context, code, state string) (*session.Session, error)
}

// Model is the Bubble Tea model for the login view.
type Model struct {
	theme *styles.Theme

	auth         Authenticator
	callbackAddr string

	username textinput.Model
	password textinput.Model
	remember bool
	focus    field

	busy    bool
	ssoURL  string
	errText string

	// ssoCancel tears down the in-flight SSO attempt, releasing the
	// loopback listener port. Nil outside an attempt.
	ssoCancel context.CancelFunc

	width  int
	height int
}

// New creates the login view.
func New(theme *styles.Theme, auth Authenticator, callbackAddr string) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return Model{
		theme:        theme,
		auth:         auth,
		callbackAddr: callbackAddr,
		username:     username,
		password:     password,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ssoWaitingMsg:
		m.ssoURL = msg.URL
		return m, nil

	case FailedMsg:
		// A cancelled attempt reports context.Canceled from the pieces it
		// tore down; the failure that caused the cancellation already showed.
		if errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		m = m.cancelSSO()
		m.busy = false
		m.ssoURL = ""
		m.errText = friendlyError(msg.Err)
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			// Only allow bailing out while a login is in flight.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

// handleKey processes key input while the form is interactive.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
		return m.applyFocus(), nil

	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m.applyFocus(), nil

	case " ":
		if m.focus == fieldRemember {
			m.remember = !m.remember
			return m, nil
		}

	case "ctrl+s":
		// SSO flow.
		m.busy = true
		m.errText = ""
		return m.startSSO()

	case "enter":
		username := strings.TrimSpace(m.username.Value())
		password := m.password.Value()
		if username == "" || password == "" {
			m.errText = "username and password are required"
			return m, nil
		}
		m.busy = true
		m.errText = ""
		return m, m.submit(username, password, m.remember)
	}

	return m.updateInputs(msg)
}

// applyFocus moves input focus to the active field.
func (m Model) applyFocus() Model {
	m.username.Blur()
	m.password.Blur()
	switch m.focus {
	case fieldUsername:
		m.username.Focus()
	case fieldPassword:
		m.password.Focus()
	}
	return m
}

// updateInputs forwards messages to the text inputs.
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit performs the password login off the UI loop.
func (m Model) submit(username, password string, remember bool) tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		s, err := auth.LoginWithPassword(ctx, username, password, remember)
		if err != nil {
			return FailedMsg{Err: err}
		}
		return SucceededMsg{Session: s}
	}
}

// startSSO runs the full browser flow: fetch the provider URL, wait for the
// loopback redirect, then exchange the code. The whole attempt shares one
// cancellable context held on the model, so a failed or abandoned attempt
// releases the listener port immediately instead of holding it for the full
// exchange timeout.
func (m Model) startSSO() (Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), ssoExchangeTimeout)
	m.ssoCancel = cancel

	auth := m.auth
	addr := m.callbackAddr

	fetchURL := func() tea.Msg {
		fetchCtx, fetchCancel := context.WithTimeout(ctx, time.Minute)
		defer fetchCancel()

		url, err := auth.BeginSSOExchange(fetchCtx)
		if err != nil {
			return FailedMsg{Err: err}
		}
		return ssoWaitingMsg{URL: url}
	}

	waitAndExchange := func() tea.Msg {
		listener := callback.NewListener(addr)
		result, err := listener.Wait(ctx)
		if err != nil {
			return FailedMsg{Err: err}
		}

		s, err := auth.CompleteSSOExchange(ctx, result.Code, result.State)
		if err != nil {
			return FailedMsg{Err: err}
		}
		return SucceededMsg{Session: s}
	}

	return m, tea.Batch(fetchURL, waitAndExchange)
}

// cancelSSO tears down any in-flight SSO attempt.
func (m Model) cancelSSO() Model {
	if m.ssoCancel != nil {
		m.ssoCancel()
		m.ssoCancel = nil
	}
	return m
}

// friendlyError renders a server failure for the notice line.
func friendlyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "login timed out, please try again"
	}
	return err.Error()
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderTitle.Render("finpanel"))
	b.WriteString("\n")
	b.WriteString(m.theme.Label.Render("sign in to the management console"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.Label.Render("Username"))
	b.WriteString("\n")
	b.WriteString(m.username.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.Label.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	check := "[ ]"
	if m.remember {
		check = "[x]"
	}
	rememberLine := check + " remember me"
	if m.focus == fieldRemember {
		rememberLine = m.theme.FieldFocus.Render(rememberLine)
	} else {
		rememberLine = m.theme.Label.Render(rememberLine)
	}
	b.WriteString(rememberLine)
	b.WriteString("\n")

	if m.busy {
		if m.ssoURL != "" {
			b.WriteString("\n")
			b.WriteString(m.theme.NoticeInfo.Render("Open this URL in your browser to continue:"))
			b.WriteString("\n")
			b.WriteString(m.ssoURL)
			b.WriteString("\n")
		} else {
			b.WriteString("\n")
			b.WriteString(m.theme.NoticeInfo.Render("Signing in..."))
			b.WriteString("\n")
		}
	}

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.NoticeError.Render(m.errText))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.Help.Render("enter sign in • ctrl+s single sign-on • tab next field • esc quit"))

	return m.theme.Container.Render(b.String())
}

// Reset clears transient state so the view can be shown again after logout.
// Any in-flight SSO attempt is cancelled with it.
func (m Model) Reset() Model {
	m = m.cancelSSO()
	m.busy = false
	m.ssoURL = ""
	m.errText = ""
	m.password.SetValue("")
	return m
}

var _ fmt.Stringer = field(0)

// String returns the field name for debugging.
func (f field) String() string {
	switch f {
	case fieldUsername:
		return "username"
	case fieldPassword:
		return "password"
	case fieldRemember:
		return "remember"
	default:
		return "unknown"
	}
}
