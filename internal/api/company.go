// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CompanyService exposes the /api/companies endpoints.
type CompanyService struct {
	client *Client
}

// NewCompanyService creates a company service backed by the shared client.
func NewCompanyService(client *Client) *CompanyService {
	return &CompanyService{client: client}
}

// List returns all companies.
func (s *CompanyService) List(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := s.client.Get(ctx, "/api/companies", nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// ListPage returns one page of companies.
func (s *CompanyService) ListPage(ctx context.Context, page, size int) (*CompanyPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result CompanyPage
	if err := s.client.Get(ctx, "/api/companies", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a company by ID.
func (s *CompanyService) Get(ctx context.Context, id int64) (*Company, error) {
	var company Company
	if err := s.client.Get(ctx, fmt.Sprintf("/api/companies/%d", id), nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// Create registers a new company.
func (s *CompanyService) Create(ctx context.Context, company Company) (*Company, error) {
	var created Company
	if err := s.client.Post(ctx, "/api/companies", nil, company, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a company record.
func (s *CompanyService) Update(ctx context.Context, id int64, company Company) (*Company, error) {
	var updated Company
	if err := s.client.Put(ctx, fmt.Sprintf("/api/companies/%d", id), company, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a company.
func (s *CompanyService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/companies/%d", id))
}
