// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/finpanel/finpanel-tui/internal/api"
)

// Error variables for local validation failures.
var (
	// ErrMissingCode indicates an SSO exchange was attempted without an
	// authorization code. No network call is made.
	ErrMissingCode = errors.New("authorization code is required")
)

// Recorder receives session lifecycle events for the local audit trail.
// Recording is best-effort; implementations must not block session
// operations on failure.
type Recorder interface {
	Record(event, detail string)
}

// Manager is the single source of truth for the authenticated session: it
// owns the persisted record, its expiration evaluation, and the auth binding
// installed on the shared API client.
type Manager struct {
	client *api.Client
	auth   *api.AuthService
	store  *Store

	// recorder is optional; nil disables audit recording.
	recorder Recorder

	// onRedirect is invoked when an authentication rejection forces
	// navigation back to the login entry point.
	onRedirect func()

	// now is the clock, replaceable in tests.
	now func() time.Time

	mu sync.Mutex
}

// NewManager creates a session manager over the shared API client and the
// given persisted store.
func NewManager(client *api.Client, store *Store) *Manager {
	return &Manager{
		client: client,
		auth:   api.NewAuthService(client),
		store:  store,
		now:    time.Now,
	}
}

// SetRecorder attaches a lifecycle event recorder.
func (m *Manager) SetRecorder(r Recorder) {
	m.recorder = r
}

// SetRedirectHandler registers the navigation callback fired when the server
// rejects the credential on any call.
func (m *Manager) SetRedirectHandler(fn func()) {
	m.onRedirect = fn
}

// record emits an audit event when a recorder is attached.
func (m *Manager) record(event, detail string) {
	if m.recorder != nil {
		m.recorder.Record(event, detail)
	}
}

// =============================================================================
// LOGIN
// =============================================================================

// LoginWithPassword authenticates with username and password. Any existing
// persisted session is discarded before the request is issued, so a stale
// token can neither be sent along nor survive a failed login. On success the
// issue time is stamped locally, the combined record persisted, and the auth
// binding installed with the new token.
func (m *Manager) LoginWithPassword(ctx context.Context, username, password string, rememberMe bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Clear before the network call, never after.
	if err := m.store.Delete(); err != nil {
		return nil, err
	}
	m.uninstallLocked()

	resp, err := m.auth.Login(ctx, api.LoginRequest{
		Username:   username,
		Password:   password,
		RememberMe: rememberMe,
	})
	if err != nil {
		// Server rejections propagate unchanged; nothing was persisted.
		return nil, err
	}

	s, err := m.establishLocked(resp)
	if err != nil {
		return nil, err
	}

	m.record("LOGIN", "method=password user="+username)
	return s, nil
}

// BeginSSOExchange fetches the identity-provider login URL. The caller is
// responsible for navigating the browser to it; no local state changes.
func (m *Manager) BeginSSOExchange(ctx context.Context) (string, error) {
	return m.auth.SsoLoginURL(ctx)
}

// CompleteSSOExchange exchanges an identity-provider authorization code for
// a session. A missing code fails locally without a network round trip. On
// any failure no session is left persisted and the failure is re-raised.
func (m *Manager) CompleteSSOExchange(ctx context.Context, code, state string) (*Session, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A callback may run while stale state exists from a previous failed
	// attempt; discard it before the exchange.
	if err := m.store.Delete(); err != nil {
		return nil, err
	}
	m.uninstallLocked()

	resp, err := m.auth.SsoLogin(ctx, code, state)
	if err != nil {
		// The exchange may have failed after partial local work; make sure
		// nothing is left persisted before re-raising.
		if delErr := m.store.Delete(); delErr != nil {
			log.Printf("session: cleanup after failed SSO exchange: %v", delErr)
		}
		return nil, err
	}

	s, err := m.establishLocked(resp)
	if err != nil {
		if delErr := m.store.Delete(); delErr != nil {
			log.Printf("session: cleanup after failed SSO establish: %v", delErr)
		}
		return nil, err
	}

	m.record("SSO_LOGIN", "provisioned_user="+boolStr(s.NewUserCreated)+" provisioned_company="+boolStr(s.NewCompanyCreated))
	return s, nil
}

// establishLocked stamps, persists, and binds a fresh session from a login
// response. Caller holds m.mu.
func (m *Manager) establishLocked(resp *api.LoginResponse) (*Session, error) {
	s := &Session{
		Token:             resp.Token,
		ExpiresIn:         resp.ExpiresIn,
		IssuedAt:          m.now(),
		User:              resp.User,
		NewUserCreated:    resp.NewUserCreated,
		NewCompanyCreated: resp.NewCompanyCreated,
	}

	if err := m.store.Save(s); err != nil {
		return nil, err
	}

	m.installLocked(s.Token)
	return s, nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// Logout tears down the session. If a valid session exists the server is
// notified so it can invalidate the token; notification failures are logged
// and swallowed. The persisted record is deleted unconditionally.
func (m *Manager) Logout(ctx context.Context) error {
	token, err := m.LogoutLocal()
	m.NotifyLogout(ctx, token)
	return err
}

// LogoutLocal performs the local half of a logout: the binding is removed and
// the persisted record deleted unconditionally. The valid token, if one
// existed, is returned so the caller can notify the server off the UI loop;
// snapshotting it here means a notification that lands late cannot touch a
// session established by a subsequent login.
func (m *Manager) LogoutLocal() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := ""
	if s := m.currentLocked(); s != nil {
		token = s.Token
	}

	m.uninstallLocked()
	m.record("LOGOUT", "")
	return token, m.store.Delete()
}

// NotifyLogout sends the best-effort server-side invalidation for a token
// captured by LogoutLocal. An empty token is a no-op; failures are logged and
// swallowed.
func (m *Manager) NotifyLogout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := m.auth.Logout(ctx, token); err != nil {
		log.Printf("session: logout notification failed: %v", err)
	}
}

// =============================================================================
// READ
// =============================================================================

// Current returns the persisted session, or nil when absent. An expired
// record is deleted as a side effect and nil returned - expired sessions are
// never handed to callers.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

// currentLocked implements Current. Caller holds m.mu.
func (m *Manager) currentLocked() *Session {
	s, err := m.store.Load()
	if err != nil {
		log.Printf("session: failed to read record: %v", err)
		return nil
	}
	if s == nil {
		return nil
	}

	if !s.ValidAt(m.now()) {
		// Lazy cleanup.
		if err := m.store.Delete(); err != nil {
			log.Printf("session: failed to delete expired record: %v", err)
		}
		m.record("EXPIRED", "lazy cleanup on read")
		return nil
	}

	return s
}

// IsExpired reports whether no valid session is available. Both "never
// logged in" and "expired" collapse to true; this is a convenience predicate
// over the same rule Current applies.
func (m *Manager) IsExpired() bool {
	return m.Current() == nil
}

// =============================================================================
// AUTH BINDING
// =============================================================================

// InstallAuthBinding installs the request/response rule pair for the given
// token on the shared client. Idempotent with respect to repeated calls: the
// new binding always wraps the client's pristine base transport, so exactly
// one attach rule and one reject rule are active at any time.
func (m *Manager) InstallAuthBinding(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installLocked(token)
}

// installLocked replaces the active binding. Caller holds m.mu.
func (m *Manager) installLocked(token string) {
	m.client.SetTransport(&authTransport{
		base:       m.client.BaseTransport(),
		token:      token,
		onRejected: m.handleRejection,
	})
}

// UninstallAuthBinding removes any active binding, restoring the pristine
// transport.
func (m *Manager) UninstallAuthBinding() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uninstallLocked()
}

// uninstallLocked restores the base transport. Caller holds m.mu.
func (m *Manager) uninstallLocked() {
	m.client.SetTransport(nil)
}

// handleRejection reacts to a 401 from any platform call: the session is
// deleted and the registered redirect handler invoked. Runs on the transport
// goroutine, so it must not take m.mu - a rejection can surface mid-operation.
func (m *Manager) handleRejection() {
	if err := m.store.Delete(); err != nil {
		log.Printf("session: failed to delete record after rejection: %v", err)
	}
	m.record("REJECTED", "server returned 401")
	if m.onRedirect != nil {
		m.onRedirect()
	}
}

// =============================================================================
// STARTUP
// =============================================================================

// InitializeFromStorage reconstructs the auth binding from any persisted
// session found valid at this moment. Expired or corrupt records are deleted
// and the binding left uninstalled. Must run once, synchronously, before any
// protected view mounts.
func (m *Manager) InitializeFromStorage() {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.currentLocked()
	if s == nil {
		m.uninstallLocked()
		return
	}

	m.installLocked(s.Token)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
