// Package testing provides test utilities and database setup for testing the collective purchase platform
package testing

import (
	"fmt"
	"math/rand"

	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCompany creates a company with the given validation status
func (tf *TestFixtures) CreateTestCompany(status models.ValidationStatus) (*models.Company, error) {
	// Random tax number containing exactly 10 digits
	taxNumber := fmt.Sprintf("%010d", rand.Intn(9000000000)+1000000000)

	company := &models.Company{
		TaxNumber:        taxNumber,
		TradeName:        fmt.Sprintf("Test Company %s", taxNumber),
		Sector:           "manufacturing",
		ValidationStatus: status,
	}
	if status == models.ValidationStatusApproved {
		company.ApprovedAt = utils.UTCNowPtr()
	}

	if err := tf.DB.DB.Create(company).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}

	return company, nil
}

// CreateTestUser creates a user belonging to the given company
func (tf *TestFixtures) CreateTestUser(companyID uint, role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := rand.Intn(100000000)
	user := &models.User{
		Name:         "Jane Doe",
		Email:        fmt.Sprintf("jane.doe.%d.%d@example.com", companyID, suffix),
		Role:         role,
		PasswordHash: string(hashedPassword),
		CompanyID:    companyID,
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestTermsAcceptance records acceptance of the current terms version
func (tf *TestFixtures) CreateTestTermsAcceptance(companyID, userID uint) (*models.TermsAcceptance, error) {
	acceptance := &models.TermsAcceptance{
		CompanyID: companyID,
		UserID:    userID,
		Version:   utils.CurrentTermsVersion,
	}

	if err := tf.DB.DB.Create(acceptance).Error; err != nil {
		return nil, fmt.Errorf("failed to create test terms acceptance: %w", err)
	}

	return acceptance, nil
}

// CreateEligibleCompany creates an approved company with an admin user that
// has accepted the terms, ready to create and join purchases
func (tf *TestFixtures) CreateEligibleCompany() (*models.Company, *models.User, error) {
	company, err := tf.CreateTestCompany(models.ValidationStatusApproved)
	if err != nil {
		return nil, nil, err
	}

	user, err := tf.CreateTestUser(company.ID, models.UserRoleAdmin)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tf.CreateTestTermsAcceptance(company.ID, user.ID); err != nil {
		return nil, nil, err
	}

	return company, user, nil
}

// CreateTestPurchase creates an open collective purchase owned by the given company
func (tf *TestFixtures) CreateTestPurchase(companyID, userID uint, targetQuantity int64) (*models.CollectivePurchase, error) {
	purchase := &models.CollectivePurchase{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		ProductName:     "Industrial Steel Sheets",
		Description:     "Bulk order of cold-rolled steel sheets",
		TargetQuantity:  targetQuantity,
		Status:          models.PurchaseStatusOpen,
	}

	if err := tf.DB.DB.Create(purchase).Error; err != nil {
		return nil, fmt.Errorf("failed to create test purchase: %w", err)
	}

	return purchase, nil
}

// CreateTestParticipant creates a confirmed participation row directly,
// bypassing the join flow
func (tf *TestFixtures) CreateTestParticipant(purchaseID, companyID, userID uint, quantity int64) (*models.PurchaseParticipant, error) {
	participant := &models.PurchaseParticipant{
		PurchaseID:       purchaseID,
		CompanyID:        companyID,
		UserID:           userID,
		Quantity:         quantity,
		SignatureID:      fmt.Sprintf("SIG-%08d", rand.Intn(100000000)),
		SignatureName:    "Jane Doe",
		SignatureContact: "jane.doe@example.com",
		Status:           models.ParticipationStatusConfirmed,
	}

	if err := tf.DB.DB.Create(participant).Error; err != nil {
		return nil, fmt.Errorf("failed to create test participant: %w", err)
	}

	return participant, nil
}
