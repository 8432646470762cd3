// Package businessflow contains the core business logic and use cases for collective purchase workflows
package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/config"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	"github.com/corporateguard/backend/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PurchaseFlow handles the collective purchase business logic
type PurchaseFlow interface {
	CreatePurchase(ctx context.Context, req *dto.CreatePurchaseRequest, metadata *ClientMetadata) (*dto.CreatePurchaseResponse, error)
	JoinPurchase(ctx context.Context, req *dto.JoinPurchaseRequest, metadata *ClientMetadata) (*dto.JoinPurchaseResponse, error)
	CancelParticipation(ctx context.Context, req *dto.CancelParticipationRequest, metadata *ClientMetadata) (*dto.CancelParticipationResponse, error)
	ListMyPurchases(ctx context.Context, userID uint) (*dto.ListMyPurchasesResponse, error)
	ListMarketplaceOpen(ctx context.Context, userID uint) (*dto.ListMarketplaceResponse, error)
	GetCompanyPurchaseHistory(ctx context.Context, userID uint) (*dto.PurchaseHistoryResponse, error)
	GetFinalDocumentData(ctx context.Context, purchaseUUID string, userID uint) (*dto.FinalDocumentDataResponse, error)
}

// PurchaseFlowImpl implements the collective purchase business flow
type PurchaseFlowImpl struct {
	purchaseRepo    repository.PurchaseRepository
	participantRepo repository.ParticipantRepository
	userRepo        repository.UserRepository
	companyRepo     repository.CompanyRepository
	reputationRepo  repository.ReputationLogRepository
	termsRepo       repository.TermsAcceptanceRepository
	auditRepo       repository.AuditLogRepository
	cacheConfig     *config.CacheConfig
	rc              *redis.Client
	db              *gorm.DB
}

// NewPurchaseFlow creates a new purchase flow instance
func NewPurchaseFlow(
	purchaseRepo repository.PurchaseRepository,
	participantRepo repository.ParticipantRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	reputationRepo repository.ReputationLogRepository,
	termsRepo repository.TermsAcceptanceRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) PurchaseFlow {
	return &PurchaseFlowImpl{
		purchaseRepo:    purchaseRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		companyRepo:     companyRepo,
		reputationRepo:  reputationRepo,
		termsRepo:       termsRepo,
		auditRepo:       auditRepo,
		cacheConfig:     cacheConfig,
		rc:              rc,
		db:              db,
	}
}

// CreatePurchase proposes a new collective purchase. The proposing company
// commits its own quantity in the same transaction, and the purchase closes
// immediately when that quantity already meets the target.
func (s *PurchaseFlowImpl) CreatePurchase(ctx context.Context, req *dto.CreatePurchaseRequest, metadata *ClientMetadata) (*dto.CreatePurchaseResponse, error) {
	if err := s.validateCreatePurchaseRequest(req); err != nil {
		return nil, NewBusinessError("PURCHASE_VALIDATION_FAILED", "Purchase validation failed", err)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	company, err := getCompany(ctx, s.companyRepo, user.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	if err := s.requireEligibleCompany(ctx, &company); err != nil {
		return nil, NewBusinessError("COMPANY_NOT_ELIGIBLE", "Company is not eligible", err)
	}

	var purchase *models.CollectivePurchase
	var participant *models.PurchaseParticipant
	var totalConfirmed int64

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		purchase = &models.CollectivePurchase{
			CompanyID:       company.ID,
			CreatedByUserID: user.ID,
			ProductName:     strings.TrimSpace(req.ProductName),
			Description:     strings.TrimSpace(req.Description),
			TargetQuantity:  req.TargetQuantity,
			Status:          models.PurchaseStatusOpen,
		}
		if err := s.purchaseRepo.Save(txCtx, purchase); err != nil {
			return err
		}

		participant = &models.PurchaseParticipant{
			PurchaseID:       purchase.ID,
			CompanyID:        company.ID,
			UserID:           user.ID,
			Quantity:         req.Quantity,
			SignatureID:      req.Signature.ID,
			SignatureName:    req.Signature.Name,
			SignatureContact: req.Signature.Contact,
			Status:           models.ParticipationStatusConfirmed,
		}
		if err := s.participantRepo.Save(txCtx, participant); err != nil {
			return err
		}

		total, err := s.participantRepo.SumConfirmedQuantity(txCtx, purchase.ID)
		if err != nil {
			return err
		}
		totalConfirmed = total

		// The creator's own quantity can meet the target outright.
		if totalConfirmed >= purchase.TargetQuantity {
			if err := s.closePurchase(txCtx, purchase); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Purchase creation failed: %s", err.Error())
		_ = s.createAuditLog(ctx, &user, models.AuditActionPurchaseCreated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PURCHASE_CREATION_FAILED", "Purchase creation failed", err)
	}

	msg := fmt.Sprintf("Purchase created: %s", purchase.UUID.String())
	_ = s.createAuditLog(ctx, &user, models.AuditActionPurchaseCreated, msg, true, nil, metadata)
	s.invalidateMarketplaceCache(ctx)

	purchase.Company = &company
	return &dto.CreatePurchaseResponse{
		Message:        "Purchase created successfully",
		Purchase:       ToPurchaseDTO(*purchase, totalConfirmed),
		Participant:    ToParticipantDTO(*participant),
		TotalConfirmed: totalConfirmed,
	}, nil
}

// JoinPurchase admits a company into an open purchase. The purchase row is
// locked for the whole decision, so the confirmed total read here cannot be
// changed by a concurrent join or cancellation. The accepted quantity is
// clamped to remaining capacity rather than rejected.
func (s *PurchaseFlowImpl) JoinPurchase(ctx context.Context, req *dto.JoinPurchaseRequest, metadata *ClientMetadata) (*dto.JoinPurchaseResponse, error) {
	if err := s.validateJoinPurchaseRequest(req); err != nil {
		return nil, NewBusinessError("JOIN_VALIDATION_FAILED", "Join validation failed", err)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	company, err := getCompany(ctx, s.companyRepo, user.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	if err := s.requireEligibleCompany(ctx, &company); err != nil {
		return nil, NewBusinessError("COMPANY_NOT_ELIGIBLE", "Company is not eligible", err)
	}

	var purchase *models.CollectivePurchase
	var acceptedQuantity int64
	var remainingAfter int64

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		purchase, err = s.purchaseRepo.ByUUIDForUpdate(txCtx, req.PurchaseUUID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return ErrPurchaseNotFound
		}
		if !purchase.IsOpen() {
			return ErrPurchaseClosed
		}

		totalConfirmed, err := s.participantRepo.SumConfirmedQuantity(txCtx, purchase.ID)
		if err != nil {
			return err
		}

		remaining := purchase.RemainingQuantity(totalConfirmed)
		if remaining <= 0 {
			return ErrPurchaseFull
		}

		acceptedQuantity = min(req.Quantity, remaining)

		participant := &models.PurchaseParticipant{
			PurchaseID:       purchase.ID,
			CompanyID:        company.ID,
			UserID:           user.ID,
			Quantity:         acceptedQuantity,
			SignatureID:      req.Signature.ID,
			SignatureName:    req.Signature.Name,
			SignatureContact: req.Signature.Contact,
			Status:           models.ParticipationStatusConfirmed,
		}
		if err := s.participantRepo.Save(txCtx, participant); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyParticipating
			}
			return err
		}

		newTotal := totalConfirmed + acceptedQuantity
		if newTotal >= purchase.TargetQuantity {
			if err := s.closePurchase(txCtx, purchase); err != nil {
				return err
			}
		}
		remainingAfter = purchase.RemainingQuantity(newTotal)

		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Join failed for purchase %s: %s", req.PurchaseUUID, err.Error())
		_ = s.createAuditLog(ctx, &user, models.AuditActionPurchaseJoined, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PURCHASE_JOIN_FAILED", "Failed to join purchase", err)
	}

	msg := fmt.Sprintf("Joined purchase %s with quantity %d", purchase.UUID.String(), acceptedQuantity)
	_ = s.createAuditLog(ctx, &user, models.AuditActionPurchaseJoined, msg, true, nil, metadata)
	s.invalidateMarketplaceCache(ctx)

	message := "Joined purchase successfully"
	if acceptedQuantity < req.Quantity {
		message = fmt.Sprintf("Joined purchase with reduced quantity %d (requested %d)", acceptedQuantity, req.Quantity)
	}

	return &dto.JoinPurchaseResponse{
		Message:           message,
		Purchase:          ToPurchaseDTO(*purchase, purchase.TargetQuantity-remainingAfter),
		AcceptedQuantity:  acceptedQuantity,
		RequestedQuantity: req.Quantity,
		RemainingQuantity: remainingAfter,
	}, nil
}

// CancelParticipation withdraws a company's commitment from an open purchase
// and records the cancellation as a reputation event in the same transaction.
// The purchase itself never changes status here; freed capacity simply makes
// room for other companies.
func (s *PurchaseFlowImpl) CancelParticipation(ctx context.Context, req *dto.CancelParticipationRequest, metadata *ClientMetadata) (*dto.CancelParticipationResponse, error) {
	if req.PurchaseUUID == "" {
		return nil, NewBusinessError("CANCEL_VALIDATION_FAILED", "Cancel validation failed", ErrPurchaseUUIDRequired)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	company, err := getCompany(ctx, s.companyRepo, user.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	var remainingAfter int64

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		purchase, err := s.purchaseRepo.ByUUIDForUpdate(txCtx, req.PurchaseUUID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return ErrPurchaseNotFound
		}
		if !purchase.IsOpen() {
			return ErrPurchaseClosed
		}

		affected, err := s.participantRepo.CancelConfirmed(txCtx, purchase.ID, company.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrParticipationNotFound
		}

		details := fmt.Sprintf("Cancelled confirmed participation in purchase %s", purchase.UUID.String())
		reputationLog := &models.ReputationLog{
			CompanyID:  company.ID,
			UserID:     user.ID,
			PurchaseID: &purchase.ID,
			EventType:  models.ReputationEventCancelledAfterConfirm,
			Details:    &details,
		}
		if err := s.reputationRepo.Save(txCtx, reputationLog); err != nil {
			return err
		}

		totalConfirmed, err := s.participantRepo.SumConfirmedQuantity(txCtx, purchase.ID)
		if err != nil {
			return err
		}
		remainingAfter = purchase.RemainingQuantity(totalConfirmed)

		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Cancellation failed for purchase %s: %s", req.PurchaseUUID, err.Error())
		_ = s.createAuditLog(ctx, &user, models.AuditActionParticipationCancelled, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PARTICIPATION_CANCEL_FAILED", "Failed to cancel participation", err)
	}

	msg := fmt.Sprintf("Cancelled participation in purchase %s", req.PurchaseUUID)
	_ = s.createAuditLog(ctx, &user, models.AuditActionParticipationCancelled, msg, true, nil, metadata)
	s.invalidateMarketplaceCache(ctx)
	s.invalidateReputationCache(ctx, company.ID)

	return &dto.CancelParticipationResponse{
		Message:           "Participation cancelled",
		RemainingQuantity: remainingAfter,
	}, nil
}

// ListMyPurchases lists the purchases proposed by the caller's company,
// newest first, with participants embedded
func (s *PurchaseFlowImpl) ListMyPurchases(ctx context.Context, userID uint) (*dto.ListMyPurchasesResponse, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	purchases, err := s.purchaseRepo.ListByCompany(ctx, user.CompanyID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_LIST_FAILED", "Failed to list purchases", err)
	}

	out, err := s.toPurchaseDTOs(ctx, purchases, true)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_LIST_FAILED", "Failed to list purchases", err)
	}

	return &dto.ListMyPurchasesResponse{Purchases: out}, nil
}

// ListMarketplaceOpen lists open purchases from other companies with their
// remaining capacity. The listing is informational and may be served from a
// short-lived cache; authoritative capacity checks happen only at join time.
func (s *PurchaseFlowImpl) ListMarketplaceOpen(ctx context.Context, userID uint) (*dto.ListMarketplaceResponse, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	cacheKey := s.marketplaceCacheKey(user.CompanyID)
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.ListMarketplaceResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	purchases, err := s.purchaseRepo.ListOpenExcludingCompany(ctx, user.CompanyID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("MARKETPLACE_LIST_FAILED", "Failed to list marketplace", err)
	}

	out, err := s.toPurchaseDTOs(ctx, purchases, false)
	if err != nil {
		return nil, NewBusinessError("MARKETPLACE_LIST_FAILED", "Failed to list marketplace", err)
	}

	resp := &dto.ListMarketplaceResponse{Purchases: out}
	if s.rc != nil {
		if bs, err := json.Marshal(resp); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.MarketplaceCacheTTL).Err()
		}
	}

	return resp, nil
}

// GetCompanyPurchaseHistory lists all of the company's participations,
// including cancelled ones, newest first
func (s *PurchaseFlowImpl) GetCompanyPurchaseHistory(ctx context.Context, userID uint) (*dto.PurchaseHistoryResponse, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	participants, err := s.participantRepo.ListByCompany(ctx, user.CompanyID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("HISTORY_LIST_FAILED", "Failed to list purchase history", err)
	}

	history := make([]dto.PurchaseHistoryItemDTO, 0, len(participants))
	for _, p := range participants {
		item := dto.PurchaseHistoryItemDTO{
			ParticipantUUID: p.UUID.String(),
			Quantity:        p.Quantity,
			Status:          p.Status.String(),
			JoinedAt:        p.CreatedAt.Format(time.RFC3339),
		}
		if p.Purchase != nil {
			item.PurchaseUUID = p.Purchase.UUID.String()
			item.ProductName = p.Purchase.ProductName
			item.TargetQuantity = p.Purchase.TargetQuantity
			item.PurchaseStatus = p.Purchase.Status.String()
		}
		history = append(history, item)
	}

	return &dto.PurchaseHistoryResponse{History: history}, nil
}

// GetFinalDocumentData assembles the settlement data of a closed purchase.
// Participants appear in join order; cancelled commitments never appear.
func (s *PurchaseFlowImpl) GetFinalDocumentData(ctx context.Context, purchaseUUID string, userID uint) (*dto.FinalDocumentDataResponse, error) {
	if purchaseUUID == "" {
		return nil, NewBusinessError("FINAL_DOCUMENT_VALIDATION_FAILED", "Validation failed", ErrPurchaseUUIDRequired)
	}

	if _, err := getUser(ctx, s.userRepo, userID); err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	purchase, err := s.purchaseRepo.ByUUID(ctx, purchaseUUID)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_LOOKUP_FAILED", "Failed to lookup purchase", err)
	}
	if purchase == nil {
		return nil, NewBusinessError("PURCHASE_NOT_FOUND", "Purchase not found", ErrPurchaseNotFound)
	}
	if purchase.IsOpen() {
		return nil, NewBusinessError("PURCHASE_STILL_OPEN", "Final document is only available for closed purchases", ErrPurchaseStillOpen)
	}

	participants, err := s.participantRepo.ListConfirmedByPurchase(ctx, purchase.ID)
	if err != nil {
		return nil, NewBusinessError("PARTICIPANT_LIST_FAILED", "Failed to list participants", err)
	}

	rows := make([]dto.FinalDocumentParticipantDTO, 0, len(participants))
	var totalQuantity int64
	for _, p := range participants {
		row := dto.FinalDocumentParticipantDTO{
			Quantity:         p.Quantity,
			SignatureID:      p.SignatureID,
			SignatureName:    p.SignatureName,
			SignatureContact: p.SignatureContact,
			JoinedAt:         p.CreatedAt.Format(time.RFC3339),
		}
		if p.Company != nil {
			row.CompanyUUID = p.Company.UUID.String()
			row.TradeName = p.Company.TradeName
			row.TaxNumber = p.Company.TaxNumber
			row.Sector = p.Company.Sector
		}
		totalQuantity += p.Quantity
		rows = append(rows, row)
	}

	return &dto.FinalDocumentDataResponse{
		Purchase:      ToPurchaseDTO(*purchase, totalQuantity),
		Participants:  rows,
		TotalQuantity: totalQuantity,
	}, nil
}

// closePurchase flips the purchase to CLOSED inside the caller's transaction
// and mirrors the change on the in-memory model
func (s *PurchaseFlowImpl) closePurchase(ctx context.Context, purchase *models.CollectivePurchase) error {
	now := utils.UTCNow()
	if err := s.purchaseRepo.Close(ctx, purchase.ID, now); err != nil {
		return err
	}
	purchase.Status = models.PurchaseStatusClosed
	purchase.ClosedAt = &now
	return nil
}

// requireEligibleCompany checks that the company passed admin validation and
// accepted the current terms before it may propose or join purchases
func (s *PurchaseFlowImpl) requireEligibleCompany(ctx context.Context, company *models.Company) error {
	if !company.IsApproved() {
		return ErrCompanyNotApproved
	}

	acceptance, err := s.termsRepo.LatestByCompany(ctx, company.ID)
	if err != nil {
		return err
	}
	if acceptance == nil {
		return ErrTermsNotAccepted
	}

	return nil
}

func (s *PurchaseFlowImpl) validateCreatePurchaseRequest(req *dto.CreatePurchaseRequest) error {
	if strings.TrimSpace(req.ProductName) == "" {
		return ErrProductNameRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		return ErrDescriptionRequired
	}
	if req.TargetQuantity <= 0 {
		return ErrTargetQuantityInvalid
	}
	if req.Quantity <= 0 {
		return ErrQuantityInvalid
	}
	return validateSignature(req.Signature)
}

func (s *PurchaseFlowImpl) validateJoinPurchaseRequest(req *dto.JoinPurchaseRequest) error {
	if req.PurchaseUUID == "" {
		return ErrPurchaseUUIDRequired
	}
	if req.Quantity <= 0 {
		return ErrQuantityInvalid
	}
	return validateSignature(req.Signature)
}

func validateSignature(sig dto.SignatureDTO) error {
	if strings.TrimSpace(sig.ID) == "" ||
		strings.TrimSpace(sig.Name) == "" ||
		strings.TrimSpace(sig.Contact) == "" {
		return ErrSignatureIncomplete
	}
	return nil
}

// toPurchaseDTOs converts purchases to DTOs with confirmed totals computed in
// one grouped query
func (s *PurchaseFlowImpl) toPurchaseDTOs(ctx context.Context, purchases []*models.CollectivePurchase, includeParticipants bool) ([]dto.PurchaseDTO, error) {
	ids := make([]uint, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
	}

	totals, err := s.participantRepo.SumConfirmedQuantities(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PurchaseDTO, 0, len(purchases))
	for _, p := range purchases {
		d := ToPurchaseDTO(*p, totals[p.ID])
		if includeParticipants {
			for _, participant := range p.Participants {
				d.Participants = append(d.Participants, ToParticipantDTO(participant))
			}
		}
		out = append(out, d)
	}

	return out, nil
}

func (s *PurchaseFlowImpl) marketplaceCacheKey(companyID uint) string {
	return redisKey(s.cacheConfig, fmt.Sprintf("marketplace:open:%d", companyID))
}

// invalidateMarketplaceCache drops cached marketplace listings after a
// mutation. Per-company keys expire on their own TTL; this only covers the
// shared prefix scan being unavailable, so it is best effort.
func (s *PurchaseFlowImpl) invalidateMarketplaceCache(ctx context.Context) {
	if s.rc == nil {
		return
	}

	pattern := redisKey(s.cacheConfig, "marketplace:open:*")
	iter := s.rc.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = s.rc.Del(ctx, iter.Val()).Err()
	}
}

func (s *PurchaseFlowImpl) invalidateReputationCache(ctx context.Context, companyID uint) {
	if s.rc == nil {
		return
	}
	_ = s.rc.Del(ctx, redisKey(s.cacheConfig, fmt.Sprintf("reputation:%d", companyID))).Err()
}

// redisKey prefixes a cache key with the configured namespace
func redisKey(cfg *config.CacheConfig, key string) string {
	if cfg == nil || cfg.RedisPrefix == "" {
		return key
	}
	return cfg.RedisPrefix + ":" + key
}

func (s *PurchaseFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	if err := s.auditRepo.Save(ctx, audit); err != nil {
		return err
	}

	return nil
}


