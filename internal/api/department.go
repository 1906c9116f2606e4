// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
)

// DepartmentService exposes the /api/departments endpoints.
type DepartmentService struct {
	client *Client
}

// NewDepartmentService creates a department service backed by the shared client.
func NewDepartmentService(client *Client) *DepartmentService {
	return &DepartmentService{client: client}
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]Department, error) {
	var departments []Department
	if err := s.client.Get(ctx, "/api/departments", nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// Get returns a department by ID.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*Department, error) {
	var department Department
	if err := s.client.Get(ctx, fmt.Sprintf("/api/departments/%d", id), nil, &department); err != nil {
		return nil, err
	}
	return &department, nil
}

// ByCompany returns the departments of a company.
func (s *DepartmentService) ByCompany(ctx context.Context, companyID int64) ([]Department, error) {
	var departments []Department
	path := fmt.Sprintf("/api/departments/company/%d", companyID)
	if err := s.client.Get(ctx, path, nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// SubDepartments returns the direct children of a department.
func (s *DepartmentService) SubDepartments(ctx context.Context, parentID int64) ([]Department, error) {
	var departments []Department
	path := fmt.Sprintf("/api/departments/%d/subdepartments", parentID)
	if err := s.client.Get(ctx, path, nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// ByManager returns the departments managed by a user.
func (s *DepartmentService) ByManager(ctx context.Context, managerID int64) ([]Department, error) {
	var departments []Department
	path := fmt.Sprintf("/api/departments/manager/%d", managerID)
	if err := s.client.Get(ctx, path, nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// Create registers a new department.
func (s *DepartmentService) Create(ctx context.Context, department Department) (*Department, error) {
	var created Department
	if err := s.client.Post(ctx, "/api/departments", nil, department, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a department record.
func (s *DepartmentService) Update(ctx context.Context, id int64, department Department) (*Department, error) {
	var updated Department
	if err := s.client.Put(ctx, fmt.Sprintf("/api/departments/%d", id), department, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a department.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/departments/%d", id))
}
