// Package businessflow contains the core business logic and use cases for reputation workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/config"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	"github.com/corporateguard/backend/utils"
	"github.com/redis/go-redis/v9"
)

// ReputationFlow exposes the derived reputation of companies
type ReputationFlow interface {
	GetCompanyReputation(ctx context.Context, userID uint) (*dto.ReputationResponse, error)
}

// ReputationFlowImpl implements the reputation business flow
type ReputationFlowImpl struct {
	participantRepo repository.ParticipantRepository
	reputationRepo  repository.ReputationLogRepository
	userRepo        repository.UserRepository
	companyRepo     repository.CompanyRepository
	cacheConfig     *config.CacheConfig
	rc              *redis.Client
}

// NewReputationFlow creates a new reputation flow instance
func NewReputationFlow(
	participantRepo repository.ParticipantRepository,
	reputationRepo repository.ReputationLogRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) ReputationFlow {
	return &ReputationFlowImpl{
		participantRepo: participantRepo,
		reputationRepo:  reputationRepo,
		userRepo:        userRepo,
		companyRepo:     companyRepo,
		cacheConfig:     cacheConfig,
		rc:              rc,
	}
}

// GetCompanyReputation derives the caller company's reputation from its
// participation record. The score is never stored; it is always
// count(CONFIRMED) minus count(CANCELLED) at read time, so replaying the
// participation history always reproduces it.
func (s *ReputationFlowImpl) GetCompanyReputation(ctx context.Context, userID uint) (*dto.ReputationResponse, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}

	company, err := getCompany(ctx, s.companyRepo, user.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to lookup company", err)
	}

	cacheKey := redisKey(s.cacheConfig, fmt.Sprintf("reputation:%d", company.ID))
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.ReputationResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	confirmed, err := s.participantRepo.CountByCompanyAndStatus(ctx, company.ID, models.ParticipationStatusConfirmed)
	if err != nil {
		return nil, NewBusinessError("REPUTATION_COUNT_FAILED", "Failed to count participations", err)
	}

	cancelled, err := s.participantRepo.CountByCompanyAndStatus(ctx, company.ID, models.ParticipationStatusCancelled)
	if err != nil {
		return nil, NewBusinessError("REPUTATION_COUNT_FAILED", "Failed to count participations", err)
	}

	logs, err := s.reputationRepo.ListByCompany(ctx, company.ID, 100, 0)
	if err != nil {
		return nil, NewBusinessError("REPUTATION_LIST_FAILED", "Failed to list reputation events", err)
	}

	events := make([]dto.ReputationEventDTO, 0, len(logs))
	for _, l := range logs {
		event := dto.ReputationEventDTO{
			UUID:      l.UUID.String(),
			EventType: l.EventType,
			UserID:    l.UserID,
			Details:   l.Details,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		}
		if l.Purchase != nil {
			purchaseUUID := l.Purchase.UUID.String()
			event.PurchaseUUID = &purchaseUUID
		}
		events = append(events, event)
	}

	resp := &dto.ReputationResponse{
		CompanyUUID:    company.UUID.String(),
		Score:          confirmed - cancelled,
		ConfirmedCount: confirmed,
		CancelledCount: cancelled,
		Events:         events,
	}

	if s.rc != nil {
		if bs, err := json.Marshal(resp); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.ReputationCacheTTL).Err()
		}
	}

	return resp, nil
}
