// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// ENTITY TYPES
// =============================================================================

// Company represents a tenant company on the platform.
type Company struct {
	CompanyID   int64  `json:"companyId"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Status      string `json:"status"`
}

// CompanyRef is a minimal company reference carried by child entities.
type CompanyRef struct {
	CompanyID   int64  `json:"companyId"`
	CompanyName string `json:"companyName,omitempty"`
}

// Department represents an organizational unit within a company.
type Department struct {
	DepartmentID int64       `json:"departmentId"`
	Name         string      `json:"name"`
	Code         string      `json:"code"`
	Budget       float64     `json:"budget"`
	IsActive     bool        `json:"isActive"`
	Company      *CompanyRef `json:"company,omitempty"`
	Manager      *UserRef    `json:"manager,omitempty"`
	ParentID     *int64      `json:"parentId,omitempty"`
}

// User represents a platform user account.
type User struct {
	UserID   int64       `json:"userId"`
	Username string      `json:"username"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Enabled  bool        `json:"enabled"`
	Roles    []string    `json:"roles,omitempty"`
	Company  *CompanyRef `json:"company,omitempty"`
}

// UserRef is a minimal user reference carried by other entities.
type UserRef struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// Fund represents a company fund.
type Fund struct {
	FundID   int64       `json:"fundId"`
	Name     string      `json:"name"`
	FundType string      `json:"fundType"`
	Balance  float64     `json:"balance"`
	IsActive bool        `json:"isActive"`
	Company  *CompanyRef `json:"company,omitempty"`
}

// FixedAsset represents a fixed asset registered to a company.
type FixedAsset struct {
	AssetID      int64          `json:"assetId"`
	Name         string         `json:"name"`
	Location     string         `json:"location"`
	SerialNumber string         `json:"serialNumber"`
	Status       string         `json:"status"`
	CurrentValue float64        `json:"currentValue"`
	Company      *CompanyRef    `json:"company,omitempty"`
	Department   *DepartmentRef `json:"department,omitempty"`
}

// DepartmentRef is a minimal department reference carried by other entities.
type DepartmentRef struct {
	DepartmentID int64  `json:"departmentId"`
	Name         string `json:"name,omitempty"`
}

// Transaction represents a financial transaction.
type Transaction struct {
	TransactionID   int64          `json:"transactionId"`
	TransactionType string         `json:"transactionType"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	TransactionDate string         `json:"transactionDate"`
	Description     string         `json:"description"`
	Company         *CompanyRef    `json:"company,omitempty"`
	User            *UserRef       `json:"user,omitempty"`
	Department      *DepartmentRef `json:"department,omitempty"`
}

// CompanyPage is a paginated company listing.
type CompanyPage struct {
	Content       []Company `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Number        int       `json:"number"`
	Size          int       `json:"size"`
}

// =============================================================================
// AUTH PAYLOADS
// =============================================================================

// LoginRequest is the password-login request body.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse is the server response for password and SSO logins.
// ExpiresIn is the token lifetime in seconds as declared by the server.
// The provisioning flags are only meaningful on SSO logins.
type LoginResponse struct {
	Token             string `json:"token"`
	ExpiresIn         int64  `json:"expiresIn"`
	User              *User  `json:"user,omitempty"`
	NewUserCreated    bool   `json:"newUserCreated,omitempty"`
	NewCompanyCreated bool   `json:"newCompanyCreated,omitempty"`
}

// SsoLoginURLResponse carries the identity-provider login URL.
type SsoLoginURLResponse struct {
	URL string `json:"url"`
}

// RegisterRequest is the self-registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// CompanyRegisterRequest registers a new company together with its admin user.
type CompanyRegisterRequest struct {
	CompanyName   string `json:"companyName"`
	Email         string `json:"email"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	AdminUsername string `json:"adminUsername"`
	AdminPassword string `json:"adminPassword"`
	AdminFullName string `json:"adminFullName,omitempty"`
}
