// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"
)

// AssetService exposes the /api/fixed-assets endpoints.
type AssetService struct {
	client *Client
}

// NewAssetService creates an asset service backed by the shared client.
func NewAssetService(client *Client) *AssetService {
	return &AssetService{client: client}
}

// List returns all fixed assets.
func (s *AssetService) List(ctx context.Context) ([]FixedAsset, error) {
	var assets []FixedAsset
	if err := s.client.Get(ctx, "/api/fixed-assets", nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Get returns a fixed asset by ID.
func (s *AssetService) Get(ctx context.Context, id int64) (*FixedAsset, error) {
	var asset FixedAsset
	if err := s.client.Get(ctx, fmt.Sprintf("/api/fixed-assets/%d", id), nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// ByCompany returns the fixed assets registered to a company.
func (s *AssetService) ByCompany(ctx context.Context, companyID int64) ([]FixedAsset, error) {
	var assets []FixedAsset
	path := fmt.Sprintf("/api/fixed-assets/company/%d", companyID)
	if err := s.client.Get(ctx, path, nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// ByDepartment returns the fixed assets assigned to a department.
func (s *AssetService) ByDepartment(ctx context.Context, departmentID int64) ([]FixedAsset, error) {
	var assets []FixedAsset
	path := fmt.Sprintf("/api/fixed-assets/department/%d", departmentID)
	if err := s.client.Get(ctx, path, nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// ByStatus returns fixed assets filtered by status.
func (s *AssetService) ByStatus(ctx context.Context, status string) ([]FixedAsset, error) {
	var assets []FixedAsset
	path := "/api/fixed-assets/status/" + url.PathEscape(status)
	if err := s.client.Get(ctx, path, nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Create registers a new fixed asset.
func (s *AssetService) Create(ctx context.Context, asset FixedAsset) (*FixedAsset, error) {
	var created FixedAsset
	if err := s.client.Post(ctx, "/api/fixed-assets", nil, asset, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a fixed asset record.
func (s *AssetService) Update(ctx context.Context, id int64, asset FixedAsset) (*FixedAsset, error) {
	var updated FixedAsset
	if err := s.client.Put(ctx, fmt.Sprintf("/api/fixed-assets/%d", id), asset, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a fixed asset.
func (s *AssetService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/fixed-assets/%d", id))
}
