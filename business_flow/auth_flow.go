// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/app/services"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	"github.com/corporateguard/backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles registration and login
type AuthFlow interface {
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	companyRepo  repository.CompanyRepository
	termsRepo    repository.TermsAcceptanceRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	termsRepo repository.TermsAcceptanceRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		termsRepo:    termsRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Register creates a company and its first user atomically. The user becomes
// the company admin; the company starts in pending validation status and must
// be approved before it can trade.
func (a *AuthFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, NewBusinessError("REGISTER_VALIDATION_FAILED", "Registration validation failed", ErrPasswordsDoNotMatch)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	var company *models.Company
	var user *models.User

	err = repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		existing, err := a.companyRepo.ByTaxNumber(txCtx, req.TaxNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrTaxNumberAlreadyUsed
		}

		existingUser, err := a.userRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existingUser != nil {
			return ErrEmailAlreadyExists
		}

		company = &models.Company{
			TaxNumber:        req.TaxNumber,
			TradeName:        req.TradeName,
			Sector:           req.Sector,
			ValidationStatus: models.ValidationStatusPending,
		}
		if err := a.companyRepo.Save(txCtx, company); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrTaxNumberAlreadyUsed
			}
			return err
		}

		user = &models.User{
			Name:         req.UserName,
			Email:        email,
			Role:         models.UserRoleAdmin,
			PasswordHash: string(hashedPassword),
			CompanyID:    company.ID,
		}
		if err := a.userRepo.Save(txCtx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailAlreadyExists
			}
			return err
		}

		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Registration failed for %s: %s", email, err.Error())
		_ = a.createAuditLog(ctx, nil, models.AuditActionRegisterFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	msg := fmt.Sprintf("Company %s registered", company.UUID.String())
	_ = a.createAuditLog(ctx, user, models.AuditActionRegisterCompleted, msg, true, nil, metadata)

	return &dto.RegisterResponse{
		Message: "Registration successful, company pending validation",
		Company: ToCompanyDTO(*company, false),
		User:    ToUserDTO(*user),
	}, nil
}

// Login authenticates a user by email and password and issues a token pair
func (a *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := a.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Invalid credentials", ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errMsg := fmt.Sprintf("Failed login attempt for %s", email)
		_ = a.createAuditLog(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Invalid credentials", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := a.tokenService.GenerateTokens(user.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	now := utils.UTCNow()
	if err := a.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, NewBusinessError("LOGIN_UPDATE_FAILED", "Failed to update login timestamp", err)
	}
	user.LastLoginAt = &now

	company, err := getCompany(ctx, a.companyRepo, user.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	acceptance, err := a.termsRepo.LatestByCompany(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("TERMS_LOOKUP_FAILED", "Failed to lookup terms acceptance", err)
	}

	msg := fmt.Sprintf("User %s logged in", user.UUID.String())
	_ = a.createAuditLog(ctx, user, models.AuditActionLoginSuccessful, msg, true, nil, metadata)

	return &dto.LoginResponse{
		Message:      "Login successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    utils.AccessTokenTTLSeconds,
		User:         ToUserDTO(*user),
		Company:      ToCompanyDTO(company, acceptance != nil),
	}, nil
}

func (a *AuthFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
