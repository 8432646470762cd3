// Package dto contains Data Transfer Objects for API request and response structures
package dto

// ListCompaniesRequest represents the admin request to list registered companies
type ListCompaniesRequest struct {
	UserID           uint    `json:"-"`
	ValidationStatus *string `json:"-" validate:"omitempty,oneof=pending approved rejected"`
	Page             int     `json:"-" validate:"omitempty,min=1"`
	PageSize         int     `json:"-" validate:"omitempty,min=1,max=100"`
}

// ListCompaniesResponse represents the admin company listing
type ListCompaniesResponse struct {
	Companies []CompanyDTO `json:"companies"`
	Total     int64        `json:"total"`
	Page      int          `json:"page"`
	PageSize  int          `json:"page_size"`
}

// ApproveCompanyRequest represents the admin request to approve a company
type ApproveCompanyRequest struct {
	UserID      uint   `json:"-"`
	CompanyUUID string `json:"-"`
}

// ApproveCompanyResponse represents the response after approving a company
type ApproveCompanyResponse struct {
	Message string     `json:"message"`
	Company CompanyDTO `json:"company"`
}

// RevokeCompanyRequest represents the admin request to revoke a company's approval
type RevokeCompanyRequest struct {
	UserID      uint   `json:"-"`
	CompanyUUID string `json:"-"`
}

// RevokeCompanyResponse represents the response after revoking approval.
// The company drops back to pending and its terms acceptances are wiped.
type RevokeCompanyResponse struct {
	Message string     `json:"message"`
	Company CompanyDTO `json:"company"`
}
