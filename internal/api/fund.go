// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
)

// FundService exposes the /api/funds endpoints.
type FundService struct {
	client *Client
}

// NewFundService creates a fund service backed by the shared client.
func NewFundService(client *Client) *FundService {
	return &FundService{client: client}
}

// ByCompany returns all funds of a company.
func (s *FundService) ByCompany(ctx context.Context, companyID int64) ([]Fund, error) {
	var funds []Fund
	path := fmt.Sprintf("/api/funds/company/%d", companyID)
	if err := s.client.Get(ctx, path, nil, &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// ActiveByCompany returns only the active funds of a company.
func (s *FundService) ActiveByCompany(ctx context.Context, companyID int64) ([]Fund, error) {
	var funds []Fund
	path := fmt.Sprintf("/api/funds/company/%d/active", companyID)
	if err := s.client.Get(ctx, path, nil, &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// Get returns a fund by ID.
func (s *FundService) Get(ctx context.Context, id int64) (*Fund, error) {
	var fund Fund
	if err := s.client.Get(ctx, fmt.Sprintf("/api/funds/%d", id), nil, &fund); err != nil {
		return nil, err
	}
	return &fund, nil
}

// Create registers a new fund.
func (s *FundService) Create(ctx context.Context, fund Fund) (*Fund, error) {
	var created Fund
	if err := s.client.Post(ctx, "/api/funds", nil, fund, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a fund record.
func (s *FundService) Update(ctx context.Context, id int64, fund Fund) (*Fund, error) {
	var updated Fund
	if err := s.client.Put(ctx, fmt.Sprintf("/api/funds/%d", id), fund, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a fund.
func (s *FundService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/funds/%d", id))
}
