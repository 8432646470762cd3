// Package dto contains Data Transfer Objects for API request and response structures
package dto

// GetMyCompanyResponse represents the caller's company details
type GetMyCompanyResponse struct {
	Company CompanyDTO `json:"company"`
}

// UpdateCompanyRequest represents a partial update of company profile fields.
// Nil fields are left untouched.
type UpdateCompanyRequest struct {
	CompanyUUID string  `json:"-"`
	UserID      uint    `json:"-"`
	TradeName   *string `json:"trade_name,omitempty" validate:"omitempty,max=255"`
	Sector      *string `json:"sector,omitempty" validate:"omitempty,max=128"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	LogoURL     *string `json:"logo_url,omitempty" validate:"omitempty,url,max=2000"`
}

// UpdateCompanyResponse represents the response after a profile update
type UpdateCompanyResponse struct {
	Message string     `json:"message"`
	Company CompanyDTO `json:"company"`
}

// AcceptTermsRequest represents the request to accept the platform terms
type AcceptTermsRequest struct {
	UserID  uint   `json:"-"`
	Version string `json:"version" validate:"required,max=32"`
}

// AcceptTermsResponse represents the response after accepting terms
type AcceptTermsResponse struct {
	Message    string `json:"message"`
	Version    string `json:"version"`
	AcceptedAt string `json:"accepted_at"`
}
