// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package callback provides the loopback HTTP listener that receives the
// identity-provider redirect during an SSO login.
//
// The listener is one-shot: it serves until a redirect carrying an
// authorization code arrives (or the context is cancelled), then shuts down.
// The code/state pair is handed back to the caller for the exchange; the
// listener itself performs no authentication.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultAddr is the default loopback address for the listener.
	DefaultAddr = "127.0.0.1:8757"

	// shutdownTimeout bounds the graceful shutdown after a result arrives.
	shutdownTimeout = 3 * time.Second
)

// ErrMissingCode indicates the redirect arrived without an authorization code.
var ErrMissingCode = errors.New("redirect did not carry an authorization code")

// Result is the code/state pair extracted from the provider redirect.
type Result struct {
	Code  string
	State string
}

// Listener is a one-shot loopback server for the SSO redirect leg.
type Listener struct {
	addr string

	mu       sync.Mutex
	bound    string
	resultCh chan Result
	done     bool
}

// NewListener creates a listener bound to the given loopback address.
func NewListener(addr string) *Listener {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Listener{
		addr:     addr,
		resultCh: make(chan Result, 1),
	}
}

// Addr returns the bound listen address. Before Wait has bound the socket
// this is the configured address; afterwards it is the concrete one, which
// differs when the listener was configured with port 0.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound != "" {
		return l.bound
	}
	return l.addr
}

// RedirectURL returns the URL the identity provider should redirect to.
func (l *Listener) RedirectURL() string {
	return "http://" + l.Addr() + "/api/auth/sso/callback"
}

// Wait serves until one redirect arrives or ctx is cancelled, then shuts the
// server down and returns the result.
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return Result{}, fmt.Errorf("failed to bind callback listener: %w", err)
	}

	l.mu.Lock()
	l.bound = ln.Addr().String()
	l.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleRedirect)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("callback: shutdown: %v", err)
		}
	}()

	select {
	case res := <-l.resultCh:
		return res, nil
	case err := <-serveErr:
		return Result{}, fmt.Errorf("callback listener failed: %w", err)
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// handleRedirect accepts the provider redirect on any path, mirroring the
// two callback routes the platform registers (/api/auth/sso/callback and
// /api/sso/callback).
func (l *Listener) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		http.Error(w, "authorization code is missing", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h3>Login received.</h3><p>You can close this window and return to the terminal.</p></body></html>")

	// Deliver only the first redirect; retries and stray requests after the
	// first are acknowledged but dropped.
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return
	}
	l.done = true
	l.resultCh <- Result{Code: code, State: query.Get("state")}
}
