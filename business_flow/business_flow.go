// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// getUser loads a user by ID, failing when the user is unknown
func getUser(ctx context.Context, userRepo repository.UserRepository, userID uint) (models.User, error) {
	user, err := userRepo.ByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, ErrUserNotFound
	}
	return *user, nil
}

// getCompany loads a company by ID, failing when the company is unknown
func getCompany(ctx context.Context, companyRepo repository.CompanyRepository, companyID uint) (models.Company, error) {
	company, err := companyRepo.ByID(ctx, companyID)
	if err != nil {
		return models.Company{}, err
	}
	if company == nil {
		return models.Company{}, ErrCompanyNotFound
	}
	return *company, nil
}

// ToCompanyDTO converts a company model to CompanyDTO for API responses
func ToCompanyDTO(company models.Company, termsAccepted bool) dto.CompanyDTO {
	out := dto.CompanyDTO{
		ID:               company.ID,
		UUID:             company.UUID.String(),
		TaxNumber:        company.TaxNumber,
		TradeName:        company.TradeName,
		Sector:           company.Sector,
		ValidationStatus: company.ValidationStatus.String(),
		Address:          company.Address,
		Phone:            company.Phone,
		Description:      company.Description,
		LogoURL:          company.LogoURL,
		TermsAccepted:    termsAccepted,
		CreatedAt:        company.CreatedAt.Format(time.RFC3339),
	}
	if company.ApprovedAt != nil {
		approvedAt := company.ApprovedAt.Format(time.RFC3339)
		out.ApprovedAt = &approvedAt
	}
	return out
}

// ToUserDTO converts a user model to UserDTO for API responses
func ToUserDTO(user models.User) dto.UserDTO {
	out := dto.UserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		out.LastLoginAt = &lastLogin
	}
	return out
}

// ToPurchaseDTO converts a purchase model to PurchaseDTO. The confirmed total
// is supplied by the caller because only the caller knows whether it was
// computed under the purchase row lock.
func ToPurchaseDTO(purchase models.CollectivePurchase, totalConfirmed int64) dto.PurchaseDTO {
	out := dto.PurchaseDTO{
		ID:                purchase.ID,
		UUID:              purchase.UUID.String(),
		CompanyID:         purchase.CompanyID,
		ProductName:       purchase.ProductName,
		Description:       purchase.Description,
		TargetQuantity:    purchase.TargetQuantity,
		ConfirmedQuantity: totalConfirmed,
		RemainingQuantity: purchase.RemainingQuantity(totalConfirmed),
		Status:            purchase.Status.String(),
		CreatedAt:         purchase.CreatedAt.Format(time.RFC3339),
	}
	if purchase.Company != nil {
		out.CompanyTradeName = purchase.Company.TradeName
	}
	if purchase.ClosedAt != nil {
		closedAt := purchase.ClosedAt.Format(time.RFC3339)
		out.ClosedAt = &closedAt
	}
	return out
}

// ToParticipantDTO converts a participant model to ParticipantDTO
func ToParticipantDTO(participant models.PurchaseParticipant) dto.ParticipantDTO {
	out := dto.ParticipantDTO{
		ID:               participant.ID,
		UUID:             participant.UUID.String(),
		CompanyID:        participant.CompanyID,
		Quantity:         participant.Quantity,
		Status:           participant.Status.String(),
		SignatureID:      participant.SignatureID,
		SignatureName:    participant.SignatureName,
		SignatureContact: participant.SignatureContact,
		CreatedAt:        participant.CreatedAt.Format(time.RFC3339),
	}
	if participant.Company != nil {
		out.CompanyTradeName = participant.Company.TradeName
	}
	return out
}
