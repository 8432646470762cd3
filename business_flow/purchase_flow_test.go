package businessflow_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/corporateguard/backend/app/dto"
	businessflow "github.com/corporateguard/backend/business_flow"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	testingutil "github.com/corporateguard/backend/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// purchaseTestEnv bundles the flow under test with direct repository access
// for assertions against the database
type purchaseTestEnv struct {
	flow            businessflow.PurchaseFlow
	reputationFlow  businessflow.ReputationFlow
	fixtures        *testingutil.TestFixtures
	purchaseRepo    repository.PurchaseRepository
	participantRepo repository.ParticipantRepository
	reputationRepo  repository.ReputationLogRepository
}

// withPurchaseEnv provisions a fresh database per test and skips when no
// PostgreSQL instance is reachable
func withPurchaseEnv(t *testing.T, fn func(t *testing.T, env *purchaseTestEnv)) {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("skipping, test database unavailable: %v", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			t.Logf("failed to cleanup test database: %v", cleanupErr)
		}
	}()

	companyRepo := repository.NewCompanyRepository(testDB.DB)
	userRepo := repository.NewUserRepository(testDB.DB)
	purchaseRepo := repository.NewPurchaseRepository(testDB.DB)
	participantRepo := repository.NewParticipantRepository(testDB.DB)
	reputationRepo := repository.NewReputationLogRepository(testDB.DB)
	termsRepo := repository.NewTermsAcceptanceRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)

	env := &purchaseTestEnv{
		flow: businessflow.NewPurchaseFlow(
			purchaseRepo,
			participantRepo,
			userRepo,
			companyRepo,
			reputationRepo,
			termsRepo,
			auditRepo,
			testDB.DB,
			nil,
			nil,
		),
		reputationFlow: businessflow.NewReputationFlow(
			participantRepo,
			reputationRepo,
			userRepo,
			companyRepo,
			nil,
			nil,
		),
		fixtures:        testingutil.NewTestFixtures(testDB),
		purchaseRepo:    purchaseRepo,
		participantRepo: participantRepo,
		reputationRepo:  reputationRepo,
	}

	fn(t, env)
}

func createPurchaseRequest(userID uint, target, quantity int64) *dto.CreatePurchaseRequest {
	return &dto.CreatePurchaseRequest{
		UserID:         userID,
		ProductName:    "Industrial Steel Sheets",
		Description:    "Bulk order of cold-rolled steel sheets",
		TargetQuantity: target,
		Quantity:       quantity,
		Signature: dto.SignatureDTO{
			ID:      "SIG-001",
			Name:    "Jane Doe",
			Contact: "jane.doe@example.com",
		},
	}
}

func joinPurchaseRequest(purchaseUUID string, userID uint, quantity int64) *dto.JoinPurchaseRequest {
	return &dto.JoinPurchaseRequest{
		PurchaseUUID: purchaseUUID,
		UserID:       userID,
		Quantity:     quantity,
		Signature: dto.SignatureDTO{
			ID:      fmt.Sprintf("SIG-%d", userID),
			Name:    "Jane Doe",
			Contact: "jane.doe@example.com",
		},
	}
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
}

func TestCreatePurchase(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		t.Run("SuccessfulCreation", func(t *testing.T) {
			_, user, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			result, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(user.ID, 100, 30), testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, models.PurchaseStatusOpen.String(), result.Purchase.Status)
			assert.Equal(t, int64(30), result.TotalConfirmed)
			assert.Equal(t, int64(70), result.Purchase.RemainingQuantity)
			assert.Equal(t, models.ParticipationStatusConfirmed.String(), result.Participant.Status)
			assert.NotEmpty(t, result.Purchase.UUID)
		})

		t.Run("ClosesImmediatelyWhenCreatorMeetsTarget", func(t *testing.T) {
			_, user, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			result, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(user.ID, 50, 50), testMetadata())
			require.NoError(t, err)

			assert.Equal(t, models.PurchaseStatusClosed.String(), result.Purchase.Status)
			assert.Equal(t, int64(0), result.Purchase.RemainingQuantity)

			purchase, err := env.purchaseRepo.ByUUID(ctx, result.Purchase.UUID)
			require.NoError(t, err)
			require.NotNil(t, purchase)
			assert.Equal(t, models.PurchaseStatusClosed, purchase.Status)
			assert.NotNil(t, purchase.ClosedAt)
		})

		t.Run("RejectsBlankProductName", func(t *testing.T) {
			_, user, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			req := createPurchaseRequest(user.ID, 100, 30)
			req.ProductName = "   "

			_, err = env.flow.CreatePurchase(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsProductNameRequired(err))
		})

		t.Run("RejectsUnapprovedCompany", func(t *testing.T) {
			company, err := env.fixtures.CreateTestCompany(models.ValidationStatusPending)
			require.NoError(t, err)
			user, err := env.fixtures.CreateTestUser(company.ID, models.UserRoleAdmin)
			require.NoError(t, err)

			_, err = env.flow.CreatePurchase(ctx, createPurchaseRequest(user.ID, 100, 30), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotApproved(err))
		})

		t.Run("RejectsCompanyWithoutTermsAcceptance", func(t *testing.T) {
			company, err := env.fixtures.CreateTestCompany(models.ValidationStatusApproved)
			require.NoError(t, err)
			user, err := env.fixtures.CreateTestUser(company.ID, models.UserRoleAdmin)
			require.NoError(t, err)

			_, err = env.flow.CreatePurchase(ctx, createPurchaseRequest(user.ID, 100, 30), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsTermsNotAccepted(err))
		})
	})
}

func TestJoinPurchase(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		t.Run("SuccessfulJoin", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
			require.NoError(t, err)

			_, joiner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			result, err := env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 40), testMetadata())
			require.NoError(t, err)

			assert.Equal(t, int64(40), result.AcceptedQuantity)
			assert.Equal(t, int64(40), result.RequestedQuantity)
			assert.Equal(t, int64(30), result.RemainingQuantity)
			assert.Equal(t, models.PurchaseStatusOpen.String(), result.Purchase.Status)
		})

		t.Run("ClampsQuantityToRemainingCapacityAndCloses", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 70), testMetadata())
			require.NoError(t, err)

			_, joiner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			result, err := env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 80), testMetadata())
			require.NoError(t, err)

			assert.Equal(t, int64(30), result.AcceptedQuantity)
			assert.Equal(t, int64(80), result.RequestedQuantity)
			assert.Equal(t, int64(0), result.RemainingQuantity)
			assert.Equal(t, models.PurchaseStatusClosed.String(), result.Purchase.Status)
		})

		t.Run("RejectsJoinOnClosedPurchase", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 50, 50), testMetadata())
			require.NoError(t, err)

			_, joiner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 10), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPurchaseClosed(err))
		})

		t.Run("RejectsSecondActiveCommitment", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 10), testMetadata())
			require.NoError(t, err)

			_, joiner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 20), testMetadata())
			require.NoError(t, err)

			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 5), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadyParticipating(err))
		})

		t.Run("RejectsUnknownPurchase", func(t *testing.T) {
			_, joiner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest("00000000-0000-0000-0000-000000000000", joiner.ID, 10), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPurchaseNotFound(err))
		})
	})
}

func TestConcurrentJoinsNeverOvercommit(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		_, owner, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)
		created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 10), testMetadata())
		require.NoError(t, err)

		const joiners = 8
		users := make([]*models.User, 0, joiners)
		for i := 0; i < joiners; i++ {
			_, user, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			users = append(users, user)
		}

		// Each joiner asks for 20; combined demand far exceeds the remaining 90
		var wg sync.WaitGroup
		for _, user := range users {
			wg.Add(1)
			go func(userID uint) {
				defer wg.Done()
				_, _ = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, userID, 20), testMetadata())
			}(user.ID)
		}
		wg.Wait()

		purchase, err := env.purchaseRepo.ByUUID(ctx, created.Purchase.UUID)
		require.NoError(t, err)
		require.NotNil(t, purchase)

		total, err := env.participantRepo.SumConfirmedQuantity(ctx, purchase.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, total, purchase.TargetQuantity)
		assert.Equal(t, purchase.TargetQuantity, total)
		assert.Equal(t, models.PurchaseStatusClosed, purchase.Status)
	})
}

func TestCancelParticipation(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		t.Run("FreesCapacityAndRecordsReputationEvent", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
			require.NoError(t, err)

			joinerCompany, joiner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 40), testMetadata())
			require.NoError(t, err)

			result, err := env.flow.CancelParticipation(ctx, &dto.CancelParticipationRequest{
				PurchaseUUID: created.Purchase.UUID,
				UserID:       joiner.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(70), result.RemainingQuantity)

			logs, err := env.reputationRepo.ListByCompany(ctx, joinerCompany.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, models.ReputationEventCancelledAfterConfirm, logs[0].EventType)

			// Freed capacity lets the company commit again
			rejoined, err := env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, joiner.ID, 20), testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(20), rejoined.AcceptedQuantity)
		})

		t.Run("RejectsCancelWithoutActiveCommitment", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
			require.NoError(t, err)

			_, outsider, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)

			_, err = env.flow.CancelParticipation(ctx, &dto.CancelParticipationRequest{
				PurchaseUUID: created.Purchase.UUID,
				UserID:       outsider.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsParticipationNotFound(err))
		})

		t.Run("RejectsCancelOnClosedPurchase", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 30, 30), testMetadata())
			require.NoError(t, err)

			_, err = env.flow.CancelParticipation(ctx, &dto.CancelParticipationRequest{
				PurchaseUUID: created.Purchase.UUID,
				UserID:       owner.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPurchaseClosed(err))
		})
	})
}

func TestMarketplaceListing(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		_, owner, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)
		open, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
		require.NoError(t, err)
		_, err = env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 40, 40), testMetadata())
		require.NoError(t, err)

		_, viewer, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)

		// Closed purchases and the viewer's own proposals never appear
		result, err := env.flow.ListMarketplaceOpen(ctx, viewer.ID)
		require.NoError(t, err)
		require.Len(t, result.Purchases, 1)
		assert.Equal(t, open.Purchase.UUID, result.Purchases[0].UUID)
		assert.Equal(t, int64(70), result.Purchases[0].RemainingQuantity)

		ownerView, err := env.flow.ListMarketplaceOpen(ctx, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, ownerView.Purchases)
	})
}

func TestGetFinalDocumentData(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		t.Run("RejectsOpenPurchase", func(t *testing.T) {
			_, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
			require.NoError(t, err)

			_, err = env.flow.GetFinalDocumentData(ctx, created.Purchase.UUID, owner.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsPurchaseStillOpen(err))
		})

		t.Run("ListsConfirmedParticipantsInJoinOrder", func(t *testing.T) {
			ownerCompany, owner, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			created, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 40), testMetadata())
			require.NoError(t, err)

			// A cancelled commitment must not surface in the final document
			quitterCompany, quitter, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, quitter.ID, 10), testMetadata())
			require.NoError(t, err)
			_, err = env.flow.CancelParticipation(ctx, &dto.CancelParticipationRequest{
				PurchaseUUID: created.Purchase.UUID,
				UserID:       quitter.ID,
			}, testMetadata())
			require.NoError(t, err)

			secondCompany, second, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, second.ID, 25), testMetadata())
			require.NoError(t, err)

			thirdCompany, third, err := env.fixtures.CreateEligibleCompany()
			require.NoError(t, err)
			closing, err := env.flow.JoinPurchase(ctx, joinPurchaseRequest(created.Purchase.UUID, third.ID, 50), testMetadata())
			require.NoError(t, err)
			require.Equal(t, models.PurchaseStatusClosed.String(), closing.Purchase.Status)

			result, err := env.flow.GetFinalDocumentData(ctx, created.Purchase.UUID, owner.ID)
			require.NoError(t, err)

			require.Len(t, result.Participants, 3)
			assert.Equal(t, ownerCompany.UUID.String(), result.Participants[0].CompanyUUID)
			assert.Equal(t, secondCompany.UUID.String(), result.Participants[1].CompanyUUID)
			assert.Equal(t, thirdCompany.UUID.String(), result.Participants[2].CompanyUUID)
			assert.Equal(t, int64(100), result.TotalQuantity)

			for _, row := range result.Participants {
				assert.NotEqual(t, quitterCompany.UUID.String(), row.CompanyUUID)
				assert.NotEmpty(t, row.SignatureID)
				assert.NotEmpty(t, row.TaxNumber)
			}
		})
	})
}

func TestCompanyReputation(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		_, owner, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)
		first, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
		require.NoError(t, err)
		second, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
		require.NoError(t, err)

		companyUnderTest, member, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)

		_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(first.Purchase.UUID, member.ID, 10), testMetadata())
		require.NoError(t, err)
		_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(second.Purchase.UUID, member.ID, 10), testMetadata())
		require.NoError(t, err)
		_, err = env.flow.CancelParticipation(ctx, &dto.CancelParticipationRequest{
			PurchaseUUID: second.Purchase.UUID,
			UserID:       member.ID,
		}, testMetadata())
		require.NoError(t, err)

		result, err := env.reputationFlow.GetCompanyReputation(ctx, member.ID)
		require.NoError(t, err)

		assert.Equal(t, companyUnderTest.UUID.String(), result.CompanyUUID)
		assert.Equal(t, int64(1), result.ConfirmedCount)
		assert.Equal(t, int64(1), result.CancelledCount)
		assert.Equal(t, int64(0), result.Score)
		require.Len(t, result.Events, 1)
		assert.Equal(t, models.ReputationEventCancelledAfterConfirm, result.Events[0].EventType)
	})
}

func TestGetCompanyPurchaseHistory(t *testing.T) {
	withPurchaseEnv(t, func(t *testing.T, env *purchaseTestEnv) {
		ctx := context.Background()

		_, owner, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)
		first, err := env.flow.CreatePurchase(ctx, createPurchaseRequest(owner.ID, 100, 30), testMetadata())
		require.NoError(t, err)

		_, member, err := env.fixtures.CreateEligibleCompany()
		require.NoError(t, err)
		_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(first.Purchase.UUID, member.ID, 10), testMetadata())
		require.NoError(t, err)
		_, err = env.flow.CancelParticipation(ctx, &dto.CancelParticipationRequest{
			PurchaseUUID: first.Purchase.UUID,
			UserID:       member.ID,
		}, testMetadata())
		require.NoError(t, err)
		_, err = env.flow.JoinPurchase(ctx, joinPurchaseRequest(first.Purchase.UUID, member.ID, 15), testMetadata())
		require.NoError(t, err)

		// History covers both cancelled and active commitments
		result, err := env.flow.GetCompanyPurchaseHistory(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, result.History, 2)

		statuses := []string{result.History[0].Status, result.History[1].Status}
		assert.Contains(t, statuses, models.ParticipationStatusConfirmed.String())
		assert.Contains(t, statuses, models.ParticipationStatusCancelled.String())
		for _, item := range result.History {
			assert.Equal(t, first.Purchase.UUID, item.PurchaseUUID)
			assert.Equal(t, "Industrial Steel Sheets", item.ProductName)
		}
	})
}
