package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/app/services"
	businessflow "github.com/corporateguard/backend/business_flow"
	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/repository"
	testingutil "github.com/corporateguard/backend/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAuthFlow(t *testing.T, fn func(t *testing.T, flow businessflow.AuthFlow, testDB *testingutil.TestDB)) {
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

	tokenService, err := services.NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	flow := businessflow.NewAuthFlow(
		repository.NewUserRepository(testDB.DB),
		repository.NewCompanyRepository(testDB.DB),
		repository.NewTermsAcceptanceRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		tokenService,
		testDB.DB,
	)

	fn(t, flow, testDB)
}

func registerRequest(taxNumber, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		TaxNumber:       taxNumber,
		TradeName:       "Acme Manufacturing",
		Sector:          "manufacturing",
		UserName:        "Jane Doe",
		Email:           email,
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
	}
}

func TestRegister(t *testing.T) {
	withAuthFlow(t, func(t *testing.T, flow businessflow.AuthFlow, testDB *testingutil.TestDB) {
		ctx := context.Background()

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			result, err := flow.Register(ctx, registerRequest("1234567890", "jane@acme.example.com"), testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, models.ValidationStatusPending.String(), result.Company.ValidationStatus)
			assert.Equal(t, models.UserRoleAdmin, result.User.Role)
			assert.Equal(t, "jane@acme.example.com", result.User.Email)

			// The user must never see a password hash
			var user models.User
			require.NoError(t, testDB.DB.Where("email = ?", "jane@acme.example.com").First(&user).Error)
			assert.NotEqual(t, "SecurePass123!", user.PasswordHash)
			assert.NotEmpty(t, user.PasswordHash)
		})

		t.Run("RejectsMismatchedPasswords", func(t *testing.T) {
			req := registerRequest("2234567890", "mismatch@acme.example.com")
			req.ConfirmPassword = "SomethingElse123!"

			_, err := flow.Register(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPasswordsDoNotMatch(err))
		})

		t.Run("RejectsDuplicateTaxNumber", func(t *testing.T) {
			_, err := flow.Register(ctx, registerRequest("3234567890", "first@dup.example.com"), testMetadata())
			require.NoError(t, err)

			_, err = flow.Register(ctx, registerRequest("3234567890", "second@dup.example.com"), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsTaxNumberAlreadyUsed(err))
		})

		t.Run("RejectsDuplicateEmail", func(t *testing.T) {
			_, err := flow.Register(ctx, registerRequest("4234567890", "shared@dup.example.com"), testMetadata())
			require.NoError(t, err)

			_, err = flow.Register(ctx, registerRequest("5234567890", "shared@dup.example.com"), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})
	})
}

func TestLogin(t *testing.T) {
	withAuthFlow(t, func(t *testing.T, flow businessflow.AuthFlow, testDB *testingutil.TestDB) {
		ctx := context.Background()

		_, err := flow.Register(ctx, registerRequest("6234567890", "login@acme.example.com"), testMetadata())
		require.NoError(t, err)

		t.Run("SuccessfulLogin", func(t *testing.T) {
			result, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "login@acme.example.com",
				Password: "SecurePass123!",
			}, testMetadata())
			require.NoError(t, err)

			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)
			assert.NotEqual(t, result.AccessToken, result.RefreshToken)
			assert.Equal(t, "Bearer", result.TokenType)
			assert.Equal(t, "login@acme.example.com", result.User.Email)

			// Last login timestamp is recorded
			var user models.User
			require.NoError(t, testDB.DB.Where("email = ?", "login@acme.example.com").First(&user).Error)
			assert.NotNil(t, user.LastLoginAt)
		})

		t.Run("RejectsWrongPassword", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "login@acme.example.com",
				Password: "WrongPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("RejectsUnknownEmail", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "nobody@acme.example.com",
				Password: "SecurePass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})
	})
}
