package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseStatusTransitions(t *testing.T) {
	open := CollectivePurchase{Status: PurchaseStatusOpen}
	closed := CollectivePurchase{Status: PurchaseStatusClosed}

	assert.True(t, open.CanTransitionTo(PurchaseStatusClosed))
	assert.False(t, open.CanTransitionTo(PurchaseStatusOpen))

	// CLOSED is terminal
	assert.False(t, closed.CanTransitionTo(PurchaseStatusOpen))
	assert.False(t, closed.CanTransitionTo(PurchaseStatusClosed))
}

func TestRemainingQuantity(t *testing.T) {
	purchase := CollectivePurchase{TargetQuantity: 100}

	assert.Equal(t, int64(100), purchase.RemainingQuantity(0))
	assert.Equal(t, int64(30), purchase.RemainingQuantity(70))
	assert.Equal(t, int64(0), purchase.RemainingQuantity(100))

	// Never negative, even when the confirmed total overshoots
	assert.Equal(t, int64(0), purchase.RemainingQuantity(150))
}

func TestPurchaseStatusValid(t *testing.T) {
	assert.True(t, PurchaseStatusOpen.Valid())
	assert.True(t, PurchaseStatusClosed.Valid())
	assert.False(t, PurchaseStatus("PENDING").Valid())
	assert.False(t, PurchaseStatus("").Valid())
}

func TestPurchaseStatusScanAndValue(t *testing.T) {
	var status PurchaseStatus
	require.NoError(t, status.Scan("CLOSED"))
	assert.Equal(t, PurchaseStatusClosed, status)

	require.NoError(t, status.Scan([]byte("OPEN")))
	assert.Equal(t, PurchaseStatusOpen, status)

	require.NoError(t, status.Scan(nil))
	assert.Equal(t, PurchaseStatus(""), status)

	assert.Error(t, status.Scan(42))

	value, err := PurchaseStatusOpen.Value()
	require.NoError(t, err)
	assert.Equal(t, "OPEN", value)

	_, err = PurchaseStatus("bogus").Value()
	assert.Error(t, err)
}

func TestParticipationStatusValid(t *testing.T) {
	assert.True(t, ParticipationStatusConfirmed.Valid())
	assert.True(t, ParticipationStatusCancelled.Valid())
	assert.False(t, ParticipationStatus("WITHDRAWN").Valid())
}

func TestPurchaseBeforeCreateDefaults(t *testing.T) {
	purchase := &CollectivePurchase{
		CompanyID:       1,
		CreatedByUserID: 1,
		ProductName:     "Steel",
		Description:     "Bulk order",
		TargetQuantity:  100,
	}

	require.NoError(t, purchase.BeforeCreate(nil))

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", purchase.UUID.String())
	assert.Equal(t, PurchaseStatusOpen, purchase.Status)
	assert.False(t, purchase.CreatedAt.IsZero())
}

func TestCompanyIsApproved(t *testing.T) {
	assert.True(t, (&Company{ValidationStatus: ValidationStatusApproved}).IsApproved())
	assert.False(t, (&Company{ValidationStatus: ValidationStatusPending}).IsApproved())
	assert.False(t, (&Company{ValidationStatus: ValidationStatusRejected}).IsApproved())
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: UserRoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: UserRoleMember}).IsAdmin())
}
