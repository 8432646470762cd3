// Package businessflow contains the core business logic and use cases for collective purchase workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Auth-related errors
	ErrUserNotFound         = errors.New("user not found")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrTaxNumberAlreadyUsed = errors.New("tax number already registered")
	ErrPasswordsDoNotMatch  = errors.New("passwords do not match")
	ErrAdminAccessRequired  = errors.New("admin access required")
	ErrCompanyAccessDenied  = errors.New("company access denied")

	// Company-related errors
	ErrCompanyNotFound       = errors.New("company not found")
	ErrCompanyNotApproved    = errors.New("company is not approved")
	ErrTermsNotAccepted      = errors.New("terms have not been accepted")
	ErrTermsAlreadyAccepted  = errors.New("terms already accepted")
	ErrCompanyUpdateRequired = errors.New("at least one field must be provided for update")

	// Purchase-related errors
	ErrPurchaseNotFound      = errors.New("purchase not found")
	ErrPurchaseClosed        = errors.New("purchase is closed")
	ErrPurchaseFull          = errors.New("purchase has no remaining capacity")
	ErrPurchaseStillOpen     = errors.New("purchase is still open")
	ErrAlreadyParticipating  = errors.New("company is already participating")
	ErrParticipationNotFound = errors.New("no active participation found")
	ErrProductNameRequired   = errors.New("product name is required")
	ErrDescriptionRequired   = errors.New("description is required")
	ErrTargetQuantityInvalid = errors.New("target quantity must be greater than zero")
	ErrQuantityInvalid       = errors.New("quantity must be greater than zero")
	ErrSignatureIncomplete   = errors.New("signature id, name, and contact are required")
	ErrPurchaseUUIDRequired  = errors.New("purchase UUID is required")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsTaxNumberAlreadyUsed(err error) bool {
	return errors.Is(err, ErrTaxNumberAlreadyUsed)
}

func IsPasswordsDoNotMatch(err error) bool {
	return errors.Is(err, ErrPasswordsDoNotMatch)
}

func IsAdminAccessRequired(err error) bool {
	return errors.Is(err, ErrAdminAccessRequired)
}

func IsCompanyAccessDenied(err error) bool {
	return errors.Is(err, ErrCompanyAccessDenied)
}

func IsCompanyNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

func IsCompanyNotApproved(err error) bool {
	return errors.Is(err, ErrCompanyNotApproved)
}

func IsTermsNotAccepted(err error) bool {
	return errors.Is(err, ErrTermsNotAccepted)
}

func IsTermsAlreadyAccepted(err error) bool {
	return errors.Is(err, ErrTermsAlreadyAccepted)
}

func IsCompanyUpdateRequired(err error) bool {
	return errors.Is(err, ErrCompanyUpdateRequired)
}

func IsPurchaseNotFound(err error) bool {
	return errors.Is(err, ErrPurchaseNotFound)
}

func IsPurchaseClosed(err error) bool {
	return errors.Is(err, ErrPurchaseClosed)
}

func IsPurchaseFull(err error) bool {
	return errors.Is(err, ErrPurchaseFull)
}

func IsPurchaseStillOpen(err error) bool {
	return errors.Is(err, ErrPurchaseStillOpen)
}

func IsAlreadyParticipating(err error) bool {
	return errors.Is(err, ErrAlreadyParticipating)
}

func IsParticipationNotFound(err error) bool {
	return errors.Is(err, ErrParticipationNotFound)
}

func IsProductNameRequired(err error) bool {
	return errors.Is(err, ErrProductNameRequired)
}

func IsDescriptionRequired(err error) bool {
	return errors.Is(err, ErrDescriptionRequired)
}

func IsTargetQuantityInvalid(err error) bool {
	return errors.Is(err, ErrTargetQuantityInvalid)
}

func IsQuantityInvalid(err error) bool {
	return errors.Is(err, ErrQuantityInvalid)
}

func IsSignatureIncomplete(err error) bool {
	return errors.Is(err, ErrSignatureIncomplete)
}

func IsPurchaseUUIDRequired(err error) bool {
	return errors.Is(err, ErrPurchaseUUIDRequired)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
