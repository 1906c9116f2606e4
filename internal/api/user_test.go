// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_AssignRole(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{UserID: 5, Username: "alice", Roles: []string{"FUND MANAGER"}})
	}))
	defer server.Close()

	users := NewUserService(NewClient(server.URL))
	updated, err := users.AssignRole(context.Background(), 5, "FUND MANAGER")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/users/5/roles/FUND%20MANAGER", gotPath)
	assert.Contains(t, updated.Roles, "FUND MANAGER")
}

func TestUserService_RemoveRole(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	users := NewUserService(NewClient(server.URL))
	require.NoError(t, users.RemoveRole(context.Background(), 5, "AUDITOR"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/users/5/roles/AUDITOR", gotPath)
}
