// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"
)

// TransactionService exposes the /api/transactions endpoints.
type TransactionService struct {
	client *Client
}

// NewTransactionService creates a transaction service backed by the shared client.
func NewTransactionService(client *Client) *TransactionService {
	return &TransactionService{client: client}
}

// List returns all transactions.
func (s *TransactionService) List(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction
	if err := s.client.Get(ctx, "/api/transactions", nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Get returns a transaction by ID.
func (s *TransactionService) Get(ctx context.Context, id int64) (*Transaction, error) {
	var transaction Transaction
	if err := s.client.Get(ctx, fmt.Sprintf("/api/transactions/%d", id), nil, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ByCompanyAndType returns a company's transactions of one type.
func (s *TransactionService) ByCompanyAndType(ctx context.Context, companyID int64, txType string) ([]Transaction, error) {
	var transactions []Transaction
	path := fmt.Sprintf("/api/transactions/company/%d/type/%s", companyID, url.PathEscape(txType))
	if err := s.client.Get(ctx, path, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// ByUserAndType returns a user's transactions of one type.
func (s *TransactionService) ByUserAndType(ctx context.Context, userID int64, txType string) ([]Transaction, error) {
	var transactions []Transaction
	path := fmt.Sprintf("/api/transactions/user/%d/type/%s", userID, url.PathEscape(txType))
	if err := s.client.Get(ctx, path, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// ByDepartmentAndType returns a department's transactions of one type.
func (s *TransactionService) ByDepartmentAndType(ctx context.Context, departmentID int64, txType string) ([]Transaction, error) {
	var transactions []Transaction
	path := fmt.Sprintf("/api/transactions/department/%d/type/%s", departmentID, url.PathEscape(txType))
	if err := s.client.Get(ctx, path, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// ByDateRange returns a company's transactions between two dates. Dates use
// the backend's ISO date format (YYYY-MM-DD).
func (s *TransactionService) ByDateRange(ctx context.Context, companyID int64, startDate, endDate string) ([]Transaction, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	var transactions []Transaction
	path := fmt.Sprintf("/api/transactions/company/%d/date-range", companyID)
	if err := s.client.Get(ctx, path, query, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// SumByCompanyAndType returns the total amount of a company's transactions
// of one type.
func (s *TransactionService) SumByCompanyAndType(ctx context.Context, companyID int64, txType string) (float64, error) {
	var sum float64
	path := fmt.Sprintf("/api/transactions/company/%d/type/%s/sum", companyID, url.PathEscape(txType))
	if err := s.client.Get(ctx, path, nil, &sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// Create registers a new transaction.
func (s *TransactionService) Create(ctx context.Context, transaction Transaction) (*Transaction, error) {
	var created Transaction
	if err := s.client.Post(ctx, "/api/transactions", nil, transaction, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a transaction record.
func (s *TransactionService) Update(ctx context.Context, id int64, transaction Transaction) (*Transaction, error) {
	var updated Transaction
	if err := s.client.Put(ctx, fmt.Sprintf("/api/transactions/%d", id), transaction, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/transactions/%d", id))
}
