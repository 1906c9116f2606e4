// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpanel/finpanel-tui/internal/api"
	"github.com/finpanel/finpanel-tui/internal/session"
	"github.com/finpanel/finpanel-tui/internal/ui/dashboard"
	"github.com/finpanel/finpanel-tui/internal/ui/guard"
	"github.com/finpanel/finpanel-tui/internal/ui/styles"
)

// newTestApp wires an App over a scripted backend and a temp session store.
// A valid session is persisted first so the app starts on the dashboard.
func newTestApp(t *testing.T, handler http.Handler) (App, *session.Manager) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL).WithMaxRetries(0)
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(&session.Session{
		Token:     "tok-app",
		ExpiresIn: 3600,
		IssuedAt:  time.Now(),
	}))

	manager := session.NewManager(client, store)
	manager.InitializeFromStorage()

	services := &dashboard.Services{
		Companies:    api.NewCompanyService(client),
		Departments:  api.NewDepartmentService(client),
		Users:        api.NewUserService(client),
		Funds:        api.NewFundService(client),
		Assets:       api.NewAssetService(client),
		Transactions: api.NewTransactionService(client),
	}

	app := NewApp(Config{
		Theme:        styles.Dark(),
		Manager:      manager,
		Services:     services,
		CallbackAddr: "127.0.0.1:0",
		Recheck:      time.Minute,
	})
	require.Equal(t, viewDashboard, app.view)
	return app, manager
}

// runCmd executes a command tree synchronously, flattening batches.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func TestApp_LogoutTearsDownLocallyBeforeNotifying(t *testing.T) {
	var logoutCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutCalls.Add(1)
	})

	app, manager := newTestApp(t, mux)

	model, cmd := app.Update(dashboard.LogoutRequestedMsg{})
	app = model.(App)

	// Update returns with the session gone and login shown; the server has
	// not been contacted yet.
	assert.Equal(t, viewLogin, app.view)
	assert.Nil(t, manager.Current())
	assert.Equal(t, int64(0), logoutCalls.Load())

	// The notification runs in the returned command, off the event loop.
	runCmd(cmd)
	assert.Equal(t, int64(1), logoutCalls.Load())
}

func TestApp_SessionEndedLandsOnResetLogin(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux())

	model, cmd := app.Update(guard.RedirectMsg{})
	app = model.(App)

	assert.Equal(t, viewLogin, app.view)
	assert.NotNil(t, cmd)
	assert.Contains(t, app.login.View(), "session has ended")
}
