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

func TestCompanyService_ListPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/companies", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CompanyPage{
			Content:       []Company{{CompanyID: 51, CompanyName: "Acme"}},
			TotalElements: 120,
			TotalPages:    5,
			Number:        2,
			Size:          25,
		})
	}))
	defer server.Close()

	companies := NewCompanyService(NewClient(server.URL))
	page, err := companies.ListPage(context.Background(), 2, 25)
	require.NoError(t, err)

	assert.Equal(t, int64(120), page.TotalElements)
	assert.Equal(t, 5, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Acme", page.Content[0].CompanyName)
}

func TestCompanyService_GetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"company 99 not found"}`))
	}))
	defer server.Close()

	companies := NewCompanyService(NewClient(server.URL))
	_, err := companies.Get(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompanyService_Delete(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	companies := NewCompanyService(NewClient(server.URL))
	require.NoError(t, companies.Delete(context.Background(), 7))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/companies/7", gotPath)
}
