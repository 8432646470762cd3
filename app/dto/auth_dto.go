// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegisterRequest represents the registration form data. Registration creates
// the company and its first (admin) user atomically.
type RegisterRequest struct {
	// Company fields
	TaxNumber string `json:"tax_number" validate:"required,min=5,max=32"`
	TradeName string `json:"trade_name" validate:"required,max=255"`
	Sector    string `json:"sector" validate:"required,max=128"`

	// Admin user fields
	UserName        string `json:"user_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// RegisterResponse represents the response after successful registration
type RegisterResponse struct {
	Message string     `json:"message"`
	Company CompanyDTO `json:"company"`
	User    UserDTO    `json:"user"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Message      string     `json:"message"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
	User         UserDTO    `json:"user"`
	Company      CompanyDTO `json:"company"`
}

// UserDTO represents user data for API responses
type UserDTO struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	CompanyID   uint    `json:"company_id"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// CompanyDTO represents company data for API responses
type CompanyDTO struct {
	ID               uint    `json:"id"`
	UUID             string  `json:"uuid"`
	TaxNumber        string  `json:"tax_number"`
	TradeName        string  `json:"trade_name"`
	Sector           string  `json:"sector"`
	ValidationStatus string  `json:"validation_status"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	Address          *string `json:"address,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Description      *string `json:"description,omitempty"`
	LogoURL          *string `json:"logo_url,omitempty"`
	TermsAccepted    bool    `json:"terms_accepted"`
	CreatedAt        string  `json:"created_at"`
}
