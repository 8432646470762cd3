// Package businessflow contains the core business logic and use cases for platform admin workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	"github.com/corporateguard/backend/utils"
	"gorm.io/gorm"
)

// AdminFlow handles company validation by platform admins
type AdminFlow interface {
	ListCompanies(ctx context.Context, req *dto.ListCompaniesRequest) (*dto.ListCompaniesResponse, error)
	ApproveCompany(ctx context.Context, req *dto.ApproveCompanyRequest, metadata *ClientMetadata) (*dto.ApproveCompanyResponse, error)
	RevokeCompany(ctx context.Context, req *dto.RevokeCompanyRequest, metadata *ClientMetadata) (*dto.RevokeCompanyResponse, error)
}

// AdminFlowImpl implements the platform admin business flow
type AdminFlowImpl struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	termsRepo   repository.TermsAcceptanceRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewAdminFlow creates a new admin flow instance
func NewAdminFlow(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	termsRepo repository.TermsAcceptanceRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AdminFlow {
	return &AdminFlowImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		termsRepo:   termsRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// ListCompanies returns registered companies, optionally filtered by
// validation status, newest first
func (a *AdminFlowImpl) ListCompanies(ctx context.Context, req *dto.ListCompaniesRequest) (*dto.ListCompaniesResponse, error) {
	if _, err := a.requireAdmin(ctx, req.UserID); err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.CompanyFilter{}
	if req.ValidationStatus != nil {
		status := models.ValidationStatus(*req.ValidationStatus)
		if !status.Valid() {
			return nil, NewBusinessErrorf("LIST_COMPANIES_VALIDATION_FAILED", "invalid validation status %q", nil, *req.ValidationStatus)
		}
		filter.ValidationStatus = &status
	}

	total, err := a.companyRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_COMPANIES_FAILED", "Failed to count companies", err)
	}

	companies, err := a.companyRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_COMPANIES_FAILED", "Failed to list companies", err)
	}

	items := make([]dto.CompanyDTO, 0, len(companies))
	for _, company := range companies {
		acceptance, err := a.termsRepo.LatestByCompany(ctx, company.ID)
		if err != nil {
			return nil, NewBusinessError("TERMS_LOOKUP_FAILED", "Failed to lookup terms acceptance", err)
		}
		items = append(items, ToCompanyDTO(*company, acceptance != nil))
	}

	return &dto.ListCompaniesResponse{
		Companies: items,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// ApproveCompany marks a company as approved so it can create and join
// collective purchases
func (a *AdminFlowImpl) ApproveCompany(ctx context.Context, req *dto.ApproveCompanyRequest, metadata *ClientMetadata) (*dto.ApproveCompanyResponse, error) {
	admin, err := a.requireAdmin(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	company, err := a.companyRepo.ByUUID(ctx, req.CompanyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	now := utils.UTCNow()
	if err := a.companyRepo.UpdateValidationStatus(ctx, company.ID, models.ValidationStatusApproved, &now); err != nil {
		return nil, NewBusinessError("COMPANY_APPROVE_FAILED", "Failed to approve company", err)
	}
	company.ValidationStatus = models.ValidationStatusApproved
	company.ApprovedAt = &now

	acceptance, err := a.termsRepo.LatestByCompany(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("TERMS_LOOKUP_FAILED", "Failed to lookup terms acceptance", err)
	}

	msg := fmt.Sprintf("Company %s approved", company.UUID.String())
	_ = a.createAuditLog(ctx, &admin, models.AuditActionCompanyApproved, msg, true, nil, metadata)

	return &dto.ApproveCompanyResponse{
		Message: "Company approved",
		Company: ToCompanyDTO(*company, acceptance != nil),
	}, nil
}

// RevokeCompany drops a company back to pending validation and wipes its
// terms acceptances, so it must be re-approved and re-accept the terms
// before trading again
func (a *AdminFlowImpl) RevokeCompany(ctx context.Context, req *dto.RevokeCompanyRequest, metadata *ClientMetadata) (*dto.RevokeCompanyResponse, error) {
	admin, err := a.requireAdmin(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	company, err := a.companyRepo.ByUUID(ctx, req.CompanyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	err = repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		if err := a.companyRepo.UpdateValidationStatus(txCtx, company.ID, models.ValidationStatusPending, nil); err != nil {
			return err
		}
		return a.termsRepo.DeleteByCompany(txCtx, company.ID)
	})
	if err != nil {
		return nil, NewBusinessError("COMPANY_REVOKE_FAILED", "Failed to revoke company approval", err)
	}
	company.ValidationStatus = models.ValidationStatusPending
	company.ApprovedAt = nil

	msg := fmt.Sprintf("Company %s approval revoked", company.UUID.String())
	_ = a.createAuditLog(ctx, &admin, models.AuditActionCompanyRevoked, msg, true, nil, metadata)

	return &dto.RevokeCompanyResponse{
		Message: "Company approval revoked",
		Company: ToCompanyDTO(*company, false),
	}, nil
}

func (a *AdminFlowImpl) requireAdmin(ctx context.Context, userID uint) (models.User, error) {
	user, err := getUser(ctx, a.userRepo, userID)
	if err != nil {
		return models.User{}, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if !user.IsAdmin() {
		return models.User{}, NewBusinessError("ADMIN_REQUIRED", "Admin access required", ErrAdminAccessRequired)
	}
	return user, nil
}

func (a *AdminFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

	if err := a.auditRepo.Save(ctx, audit); err != nil {
		return err
	}

	return nil
}
