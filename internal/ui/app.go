// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui wires the login and dashboard views into the application model.
package ui

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finpanel/finpanel-tui/internal/session"
	"github.com/finpanel/finpanel-tui/internal/ui/components"
	"github.com/finpanel/finpanel-tui/internal/ui/dashboard"
	"github.com/finpanel/finpanel-tui/internal/ui/guard"
	"github.com/finpanel/finpanel-tui/internal/ui/login"
	"github.com/finpanel/finpanel-tui/internal/ui/styles"
)

// errSessionEnded is shown on the login view after an expiry or a server
// token rejection forced a sign-out.
var errSessionEnded = errors.New("your session has ended, please sign in again")

// SessionRejectedMsg is injected into the program when the server rejects
// the token on any call. It forces navigation back to login, same as a
// detected expiry.
type SessionRejectedMsg struct{}

// view identifies the active top-level view.
type view int

const (
	viewLogin view = iota
	viewDashboard
)

// App is the root Bubble Tea model.
type App struct {
	theme   *styles.Theme
	manager *session.Manager

	view      view
	login     login.Model
	dashboard dashboard.Model

	newDashboard func() dashboard.Model
}

// Config carries the dependencies for the root model.
type Config struct {
	Theme        *styles.Theme
	Manager      *session.Manager
	Services     *dashboard.Services
	CallbackAddr string
	Recheck      time.Duration
}

// NewApp builds the root model. The starting view follows the stored
// session: a valid one lands on the dashboard, anything else on login.
func NewApp(cfg Config) App {
	newDashboard := func() dashboard.Model {
		return dashboard.New(cfg.Theme, cfg.Services, cfg.Manager, cfg.Recheck)
	}

	app := App{
		theme:        cfg.Theme,
		manager:      cfg.Manager,
		login:        login.New(cfg.Theme, cfg.Manager, cfg.CallbackAddr),
		newDashboard: newDashboard,
	}

	if cfg.Manager.Current() != nil {
		app.view = viewDashboard
		app.dashboard = newDashboard()
	}
	return app
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.view == viewDashboard {
		return a.dashboard.Init()
	}
	return a.login.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case login.SucceededMsg:
		a.view = viewDashboard
		a.dashboard = a.newDashboard()
		cmds := []tea.Cmd{a.dashboard.Init()}

		// Accounts provisioned during SSO land with a skeleton profile.
		if msg.Session != nil && (msg.Session.NewUserCreated || msg.Session.NewCompanyCreated) {
			var cmd tea.Cmd
			a.dashboard, cmd = a.dashboard.ShowNotice(components.SeverityInfo,
				"Welcome! Your account was just created, please complete your profile.")
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case dashboard.LogoutRequestedMsg:
		// Local teardown is immediate; the server notification runs as a
		// command so the event loop never blocks on the network. The token
		// is snapshotted first, so a notification landing late cannot touch
		// a session from a subsequent login.
		token, err := a.manager.LogoutLocal()
		if err != nil {
			log.Printf("logout: %v", err)
		}

		a = a.toLogin()
		cmds := []tea.Cmd{a.login.Init()}
		if token != "" {
			manager := a.manager
			cmds = append(cmds, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				manager.NotifyLogout(ctx, token)
				return nil
			})
		}
		return a, tea.Batch(cmds...)

	case guard.RedirectMsg, SessionRejectedMsg:
		// The session expired or the server rejected the token.
		if a.view == viewDashboard {
			a = a.toLogin()
			a.login, _ = a.login.Update(login.FailedMsg{Err: errSessionEnded})
			return a, a.login.Init()
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	default:
		a.login, cmd = a.login.Update(msg)
	}
	return a, cmd
}

// toLogin tears down the dashboard and returns to a fresh login view.
func (a App) toLogin() App {
	a.dashboard.Deactivate()
	a.view = viewLogin
	a.login = a.login.Reset()
	return a
}

// View implements tea.Model.
func (a App) View() string {
	if a.view == viewDashboard {
		return a.dashboard.View()
	}
	return a.login.View()
}
