// Package businessflow contains the core business logic and use cases for company profile workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	"github.com/corporateguard/backend/utils"
	"gorm.io/gorm"
)

// ProfileFlow handles company profile and terms acceptance
type ProfileFlow interface {
	GetMyCompany(ctx context.Context, userID uint) (*dto.GetMyCompanyResponse, error)
	UpdateCompany(ctx context.Context, req *dto.UpdateCompanyRequest, metadata *ClientMetadata) (*dto.UpdateCompanyResponse, error)
	AcceptTerms(ctx context.Context, req *dto.AcceptTermsRequest, metadata *ClientMetadata) (*dto.AcceptTermsResponse, error)
}

// ProfileFlowImpl implements the company profile business flow
type ProfileFlowImpl struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	termsRepo   repository.TermsAcceptanceRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewProfileFlow creates a new profile flow instance
func NewProfileFlow(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	termsRepo repository.TermsAcceptanceRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ProfileFlow {
	return &ProfileFlowImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		termsRepo:   termsRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// GetMyCompany returns the caller's company details
func (p *ProfileFlowImpl) GetMyCompany(ctx context.Context, userID uint) (*dto.GetMyCompanyResponse, error) {
	user, err := getUser(ctx, p.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	company, err := getCompany(ctx, p.companyRepo, user.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	acceptance, err := p.termsRepo.LatestByCompany(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("TERMS_LOOKUP_FAILED", "Failed to lookup terms acceptance", err)
	}

	return &dto.GetMyCompanyResponse{
		Company: ToCompanyDTO(company, acceptance != nil),
	}, nil
}

// UpdateCompany applies a partial update to the company profile. Only admins
// of the company itself may update it; nil fields stay untouched.
func (p *ProfileFlowImpl) UpdateCompany(ctx context.Context, req *dto.UpdateCompanyRequest, metadata *ClientMetadata) (*dto.UpdateCompanyResponse, error) {
	if req.TradeName == nil && req.Sector == nil && req.Address == nil &&
		req.Phone == nil && req.Description == nil && req.LogoURL == nil {
		return nil, NewBusinessError("PROFILE_VALIDATION_FAILED", "Profile validation failed", ErrCompanyUpdateRequired)
	}

	user, err := getUser(ctx, p.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if !user.IsAdmin() {
		return nil, NewBusinessError("ADMIN_REQUIRED", "Admin access required", ErrAdminAccessRequired)
	}

	company, err := p.companyRepo.ByUUID(ctx, req.CompanyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}
	if company.ID != user.CompanyID {
		return nil, NewBusinessError("COMPANY_ACCESS_DENIED", "Company access denied", ErrCompanyAccessDenied)
	}

	if req.TradeName != nil {
		company.TradeName = *req.TradeName
	}
	if req.Sector != nil {
		company.Sector = *req.Sector
	}
	if req.Address != nil {
		company.Address = req.Address
	}
	if req.Phone != nil {
		company.Phone = req.Phone
	}
	if req.Description != nil {
		company.Description = req.Description
	}
	if req.LogoURL != nil {
		company.LogoURL = req.LogoURL
	}

	if err := p.companyRepo.Update(ctx, *company); err != nil {
		return nil, NewBusinessError("PROFILE_UPDATE_FAILED", "Failed to update company", err)
	}

	acceptance, err := p.termsRepo.LatestByCompany(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("TERMS_LOOKUP_FAILED", "Failed to lookup terms acceptance", err)
	}

	msg := fmt.Sprintf("Company %s profile updated", company.UUID.String())
	_ = p.createAuditLog(ctx, &user, models.AuditActionProfileUpdated, msg, true, nil, metadata)

	return &dto.UpdateCompanyResponse{
		Message: "Company updated successfully",
		Company: ToCompanyDTO(*company, acceptance != nil),
	}, nil
}

// AcceptTerms records the company's acceptance of a terms version
func (p *ProfileFlowImpl) AcceptTerms(ctx context.Context, req *dto.AcceptTermsRequest, metadata *ClientMetadata) (*dto.AcceptTermsResponse, error) {
	user, err := getUser(ctx, p.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	acceptance := &models.TermsAcceptance{
		CompanyID: user.CompanyID,
		UserID:    user.ID,
		Version:   req.Version,
	}
	if err := p.termsRepo.Save(ctx, acceptance); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("TERMS_ALREADY_ACCEPTED", "Terms already accepted", ErrTermsAlreadyAccepted)
		}
		return nil, NewBusinessError("TERMS_ACCEPT_FAILED", "Failed to accept terms", err)
	}

	msg := fmt.Sprintf("Terms version %s accepted", req.Version)
	_ = p.createAuditLog(ctx, &user, models.AuditActionTermsAccepted, msg, true, nil, metadata)

	return &dto.AcceptTermsResponse{
		Message:    "Terms accepted",
		Version:    acceptance.Version,
		AcceptedAt: acceptance.AcceptedAt.Format(time.RFC3339),
	}, nil
}

func (p *ProfileFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	var companyID *uint
	if user != nil {
		userID = &user.ID
		companyID = &user.CompanyID
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		CompanyID:    companyID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	if err := p.auditRepo.Save(ctx, audit); err != nil {
		return err
	}

	return nil
}
