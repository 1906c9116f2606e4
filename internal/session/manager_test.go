// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpanel/finpanel-tui/internal/api"
)

// authServer is a scripted platform backend for manager tests.
type authServer struct {
	*httptest.Server

	loginStatus int
	loginBody   api.LoginResponse

	ssoStatus int
	ssoBody   api.LoginResponse

	logoutStatus int

	loginCalls   atomic.Int64
	ssoCalls     atomic.Int64
	logoutCalls  atomic.Int64
	logoutBearer atomic.Value // string

	// companiesAuth records the Authorization header values seen by the
	// protected listing endpoint.
	companiesStatus int
	companiesAuth   atomic.Value // []string
}

func newAuthServer(t *testing.T) *authServer {
	t.Helper()

	s := &authServer{
		loginStatus:     http.StatusOK,
		ssoStatus:       http.StatusOK,
		logoutStatus:    http.StatusOK,
		companiesStatus: http.StatusOK,
	}
	s.loginBody = api.LoginResponse{Token: "tok-login", ExpiresIn: 3600}
	s.ssoBody = api.LoginResponse{Token: "tok-sso", ExpiresIn: 3600}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.loginCalls.Add(1)
		writeJSON(w, s.loginStatus, s.loginBody)
	})
	mux.HandleFunc("/api/auth/sso/login", func(w http.ResponseWriter, r *http.Request) {
		s.ssoCalls.Add(1)
		writeJSON(w, s.ssoStatus, s.ssoBody)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.logoutCalls.Add(1)
		s.logoutBearer.Store(r.Header.Get("Authorization"))
		w.WriteHeader(s.logoutStatus)
	})
	mux.HandleFunc("/api/companies", func(w http.ResponseWriter, r *http.Request) {
		headers, _ := s.companiesAuth.Load().([]string)
		s.companiesAuth.Store(append(headers, r.Header.Values("Authorization")...))
		if s.companiesStatus != http.StatusOK {
			w.WriteHeader(s.companiesStatus)
			return
		}
		writeJSON(w, http.StatusOK, []api.Company{})
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// lastCompaniesAuth returns the Authorization values seen by the most recent
// protected call.
func (s *authServer) allCompaniesAuth() []string {
	headers, _ := s.companiesAuth.Load().([]string)
	return headers
}

// testManager wires a manager over a temp store against the scripted server.
func newTestManager(t *testing.T, server *authServer) (*Manager, *Store, *api.Client) {
	t.Helper()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	client := api.NewClient(server.URL).WithMaxRetries(0)
	m := NewManager(client, store)
	return m, store, client
}

// listCompanies issues a protected call through the shared client.
func listCompanies(t *testing.T, client *api.Client) error {
	t.Helper()
	var out []api.Company
	return client.Get(context.Background(), "/api/companies", nil, &out)
}

func TestManager_LoginSuccess(t *testing.T) {
	server := newAuthServer(t)
	m, store, client := newTestManager(t, server)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	s, err := m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok-login", s.Token)
	assert.True(t, issued.Equal(s.IssuedAt), "issue time must be stamped locally")

	// The record is persisted.
	persisted, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "tok-login", persisted.Token)

	// The binding is installed: protected calls carry the bearer.
	require.NoError(t, listCompanies(t, client))
	auth := server.allCompaniesAuth()
	require.Len(t, auth, 1)
	assert.Equal(t, "Bearer tok-login", auth[0])
}

func TestManager_LoginFailurePersistsNothing(t *testing.T) {
	server := newAuthServer(t)
	server.loginStatus = http.StatusUnauthorized
	m, store, client := newTestManager(t, server)

	// A stale session from a previous user exists.
	require.NoError(t, store.Save(&Session{
		Token: "tok-stale", ExpiresIn: 3600, IssuedAt: time.Now(),
	}))
	m.InitializeFromStorage()

	_, err := m.LoginWithPassword(context.Background(), "alice", "wrong", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	// Nothing persisted: the stale record was cleared before the request
	// and the failure left nothing behind.
	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, persisted)

	// No binding either: protected calls go out bare.
	require.NoError(t, listCompanies(t, client))
	assert.Empty(t, server.allCompaniesAuth())
}

func TestManager_SequentialLoginsUseLatestToken(t *testing.T) {
	server := newAuthServer(t)
	m, _, client := newTestManager(t, server)

	server.loginBody = api.LoginResponse{Token: "tok-alice", ExpiresIn: 3600}
	_, err := m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)

	server.loginBody = api.LoginResponse{Token: "tok-bob", ExpiresIn: 3600}
	_, err = m.LoginWithPassword(context.Background(), "bob", "secret", false)
	require.NoError(t, err)

	require.NoError(t, listCompanies(t, client))
	auth := server.allCompaniesAuth()
	require.Len(t, auth, 1, "exactly one attach rule must be active")
	assert.Equal(t, "Bearer tok-bob", auth[0])
}

func TestManager_DoubleInstallSingleBinding(t *testing.T) {
	server := newAuthServer(t)
	m, _, client := newTestManager(t, server)

	m.InstallAuthBinding("tok-one")
	m.InstallAuthBinding("tok-two")

	require.NoError(t, listCompanies(t, client))
	auth := server.allCompaniesAuth()
	require.Len(t, auth, 1, "bindings must replace, never stack")
	assert.Equal(t, "Bearer tok-two", auth[0])
}

func TestManager_LogoutNotifiesServerAndDeletes(t *testing.T) {
	server := newAuthServer(t)
	m, store, _ := newTestManager(t, server)

	_, err := m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, int64(1), server.logoutCalls.Load())
	bearer, _ := server.logoutBearer.Load().(string)
	assert.Equal(t, "Bearer tok-login", bearer)

	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, persisted)
}

func TestManager_LogoutDeletesEvenWhenServerFails(t *testing.T) {
	server := newAuthServer(t)
	server.logoutStatus = http.StatusInternalServerError
	m, store, _ := newTestManager(t, server)

	_, err := m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))

	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, persisted, "local deletion is unconditional")
}

func TestManager_LogoutWithoutSessionSkipsServer(t *testing.T) {
	server := newAuthServer(t)
	m, _, _ := newTestManager(t, server)

	require.NoError(t, m.Logout(context.Background()))
	assert.Equal(t, int64(0), server.logoutCalls.Load())
}

func TestManager_LateLogoutNotificationCannotEvictNewLogin(t *testing.T) {
	server := newAuthServer(t)
	m, store, _ := newTestManager(t, server)

	_, err := m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)

	token, err := m.LogoutLocal()
	require.NoError(t, err)
	assert.Equal(t, "tok-login", token)

	// Local teardown completed without any server round trip.
	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	require.Nil(t, persisted)
	assert.Equal(t, int64(0), server.logoutCalls.Load())

	// A fresh login lands before the notification goes out.
	server.loginBody = api.LoginResponse{Token: "tok-second", ExpiresIn: 3600}
	_, err = m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)

	m.NotifyLogout(context.Background(), token)
	assert.Equal(t, int64(1), server.logoutCalls.Load())
	bearer, _ := server.logoutBearer.Load().(string)
	assert.Equal(t, "Bearer tok-login", bearer, "the notification must carry the snapshotted token")

	persisted, loadErr = store.Load()
	require.NoError(t, loadErr)
	require.NotNil(t, persisted, "the new session must survive the late notification")
	assert.Equal(t, "tok-second", persisted.Token)
}

func TestManager_CurrentExpiryMatrix(t *testing.T) {
	server := newAuthServer(t)
	m, store, _ := newTestManager(t, server)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(&Session{
		Token: "tok", ExpiresIn: 3600, IssuedAt: issued,
	}))

	// One second before expiry the session is available.
	m.now = func() time.Time { return issued.Add(3599 * time.Second) }
	assert.NotNil(t, m.Current())
	assert.False(t, m.IsExpired())

	// One second after expiry it is gone, and the record is cleaned up.
	m.now = func() time.Time { return issued.Add(3601 * time.Second) }
	assert.Nil(t, m.Current())
	assert.True(t, m.IsExpired())

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr), "expired record must be deleted on read")
}

func TestManager_CompleteSSOExchangeMissingCode(t *testing.T) {
	server := newAuthServer(t)
	m, _, _ := newTestManager(t, server)

	_, err := m.CompleteSSOExchange(context.Background(), "", "state-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCode))

	// The failure is local; no exchange request goes out.
	assert.Equal(t, int64(0), server.ssoCalls.Load())
}

func TestManager_CompleteSSOExchangeSuccess(t *testing.T) {
	server := newAuthServer(t)
	server.ssoBody = api.LoginResponse{
		Token: "tok-sso", ExpiresIn: 3600,
		NewUserCreated: true, NewCompanyCreated: true,
	}
	m, store, client := newTestManager(t, server)

	s, err := m.CompleteSSOExchange(context.Background(), "code-1", "state-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.NewUserCreated)
	assert.True(t, s.NewCompanyCreated)

	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	require.NotNil(t, persisted)
	assert.Equal(t, "tok-sso", persisted.Token)

	require.NoError(t, listCompanies(t, client))
	auth := server.allCompaniesAuth()
	require.Len(t, auth, 1)
	assert.Equal(t, "Bearer tok-sso", auth[0])
}

func TestManager_CompleteSSOExchangeFailureLeavesNothing(t *testing.T) {
	server := newAuthServer(t)
	server.ssoStatus = http.StatusUnauthorized
	m, store, _ := newTestManager(t, server)

	_, err := m.CompleteSSOExchange(context.Background(), "code-bad", "state-1")
	require.Error(t, err)

	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, persisted)
}

func TestManager_InitializeFromStorageValidRecord(t *testing.T) {
	server := newAuthServer(t)
	m, store, client := newTestManager(t, server)

	require.NoError(t, store.Save(&Session{
		Token: "tok-restored", ExpiresIn: 3600, IssuedAt: time.Now(),
	}))

	m.InitializeFromStorage()

	require.NoError(t, listCompanies(t, client))
	auth := server.allCompaniesAuth()
	require.Len(t, auth, 1)
	assert.Equal(t, "Bearer tok-restored", auth[0])
}

func TestManager_InitializeFromStorageExpiredRecord(t *testing.T) {
	server := newAuthServer(t)
	m, store, client := newTestManager(t, server)

	require.NoError(t, store.Save(&Session{
		Token: "tok-old", ExpiresIn: 60, IssuedAt: time.Now().Add(-time.Hour),
	}))

	m.InitializeFromStorage()

	// The expired record is deleted and no binding installed.
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, listCompanies(t, client))
	assert.Empty(t, server.allCompaniesAuth())
}

func TestManager_RejectionDeletesSessionAndRedirects(t *testing.T) {
	server := newAuthServer(t)
	server.companiesStatus = http.StatusUnauthorized
	m, store, client := newTestManager(t, server)

	_, err := m.LoginWithPassword(context.Background(), "alice", "secret", false)
	require.NoError(t, err)

	redirected := make(chan struct{}, 1)
	m.SetRedirectHandler(func() {
		select {
		case redirected <- struct{}{}:
		default:
		}
	})

	// Any protected call answered with 401 evicts the session.
	err = listCompanies(t, client)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	select {
	case <-redirected:
	case <-time.After(time.Second):
		t.Fatal("redirect handler was not invoked")
	}

	persisted, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, persisted)
}
