// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"
)

// UserService exposes the /api/users endpoints.
type UserService struct {
	client *Client
}

// NewUserService creates a user service backed by the shared client.
func NewUserService(client *Client) *UserService {
	return &UserService{client: client}
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.Get(ctx, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := s.client.Get(ctx, fmt.Sprintf("/api/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create registers a new user.
func (s *UserService) Create(ctx context.Context, user User) (*User, error) {
	var created User
	if err := s.client.Post(ctx, "/api/users", nil, user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a user record.
func (s *UserService) Update(ctx context.Context, id int64, user User) (*User, error) {
	var updated User
	if err := s.client.Put(ctx, fmt.Sprintf("/api/users/%d", id), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/users/%d", id))
}

// AssignRole grants a role to a user. The role name is path-escaped; role
// names come from user input in the role management view.
func (s *UserService) AssignRole(ctx context.Context, userID int64, role string) (*User, error) {
	var updated User
	path := fmt.Sprintf("/api/users/%d/roles/%s", userID, url.PathEscape(role))
	if err := s.client.Post(ctx, path, nil, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveRole revokes a role from a user.
func (s *UserService) RemoveRole(ctx context.Context, userID int64, role string) error {
	path := fmt.Sprintf("/api/users/%d/roles/%s", userID, url.PathEscape(role))
	return s.client.Delete(ctx, path)
}
