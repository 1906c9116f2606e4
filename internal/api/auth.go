// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/url"
)

// AuthService exposes the authentication endpoints under /api/auth.
//
// Login, registration, and the SSO exchange are the only platform calls made
// without a bearer credential; Logout carries one explicitly because it may
// be called while an auth binding from a previous session is still installed.
type AuthService struct {
	client *Client
}

// NewAuthService creates an auth service backed by the shared client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login authenticates with username and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := s.client.Post(ctx, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout asks the server to invalidate the given token. The bearer header is
// set per-request so logout works even when no binding is installed.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.client.PostAuthorized(ctx, "/api/auth/logout", token, struct{}{}, nil)
}

// SsoLoginURL fetches the identity-provider login URL.
func (s *AuthService) SsoLoginURL(ctx context.Context) (string, error) {
	var resp SsoLoginURLResponse
	if err := s.client.Get(ctx, "/api/auth/sso/login-url", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// SsoLogin exchanges an identity-provider authorization code for a platform
// session. The state token is passed through opaquely for server-side CSRF
// validation.
func (s *AuthService) SsoLogin(ctx context.Context, code, state string) (*LoginResponse, error) {
	query := url.Values{}
	query.Set("code", code)
	if state != "" {
		query.Set("state", state)
	}
	var resp LoginResponse
	if err := s.client.Post(ctx, "/api/auth/sso/login", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := s.client.Post(ctx, "/api/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterCompany creates a new company together with its admin user.
func (s *AuthService) RegisterCompany(ctx context.Context, req CompanyRegisterRequest) (*User, error) {
	var user User
	if err := s.client.Post(ctx, "/api/auth/company/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
