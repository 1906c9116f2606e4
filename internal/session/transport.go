// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"net/http"
)

// authTransport is the HTTP auth binding: a RoundTripper pair of rules that
// attaches the bearer credential to outgoing requests and reacts to
// authentication-rejection responses from any call.
//
// The binding is a process-wide singleton by construction: the manager
// installs it by replacing the shared client's transport with a new
// authTransport wrapping the client's pristine base transport, so repeated
// installs can never stack bindings.
type authTransport struct {
	base  http.RoundTripper
	token string

	// onRejected is invoked when any response comes back with 401. The
	// manager uses it to delete the persisted session and force navigation
	// to the login entry point.
	onRejected func()
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())

	// Attach rule: set the bearer only when the request doesn't already
	// carry an Authorization header.
	if t.token != "" && clone.Header.Get("Authorization") == "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.base.RoundTrip(clone)

	// Reject rule: the server is the final authority on token validity, so
	// a 401 from any call - including plain CRUD fetches - evicts the
	// session.
	if err == nil && resp.StatusCode == http.StatusUnauthorized && t.onRejected != nil {
		t.onRejected()
	}

	return resp, err
}
