// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/app/middleware"
	businessflow "github.com/corporateguard/backend/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PurchaseHandlerInterface defines the contract for collective purchase handlers
type PurchaseHandlerInterface interface {
	CreatePurchase(c fiber.Ctx) error
	ListMyPurchases(c fiber.Ctx) error
	ListMarketplace(c fiber.Ctx) error
	JoinPurchase(c fiber.Ctx) error
	CancelParticipation(c fiber.Ctx) error
	GetPurchaseHistory(c fiber.Ctx) error
	GetFinalDocumentData(c fiber.Ctx) error
	GetReputation(c fiber.Ctx) error
}

// PurchaseHandler handles collective purchase HTTP requests
type PurchaseHandler struct {
	purchaseFlow   businessflow.PurchaseFlow
	reputationFlow businessflow.ReputationFlow
	validator      *validator.Validate
}

// NewPurchaseHandler creates a new collective purchase handler
func NewPurchaseHandler(purchaseFlow businessflow.PurchaseFlow, reputationFlow businessflow.ReputationFlow) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseFlow:   purchaseFlow,
		reputationFlow: reputationFlow,
		validator:      validator.New(),
	}
}

func (h *PurchaseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PurchaseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatePurchase handles proposing a new collective purchase
// @Summary Propose Collective Purchase
// @Description Propose a collective purchase with the proposer's own quantity commitment
// @Tags Purchases
// @Accept json
// @Produce json
// @Param request body dto.CreatePurchaseRequest true "Purchase proposal"
// @Success 201 {object} dto.APIResponse{data=dto.CreatePurchaseResponse} "Purchase created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Company not eligible"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/collective-purchases [post]
func (h *PurchaseHandler) CreatePurchase(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreatePurchaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	// Call business logic with proper context
	result, err := h.purchaseFlow.CreatePurchase(createRequestContext(c, "/api/v1/collective-purchases"), &req, clientMetadata(c))
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Create purchase failed", err)
		// Handle generic business errors
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create purchase", "PURCHASE_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListMyPurchases lists purchases proposed by the caller's company
// @Summary List My Purchases
// @Description List collective purchases proposed by the caller's company
// @Tags Purchases
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListMyPurchasesResponse} "Purchases listed"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/collective-purchases/my [get]
func (h *PurchaseHandler) ListMyPurchases(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.purchaseFlow.ListMyPurchases(createRequestContext(c, "/api/v1/collective-purchases/my"), userID)
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("List my purchases failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list purchases", "PURCHASE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Purchases retrieved", result)
}

// ListMarketplace lists open purchases from other companies
// @Summary List Marketplace
// @Description List open collective purchases proposed by other companies
// @Tags Marketplace
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListMarketplaceResponse} "Marketplace listed"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/marketplace/open [get]
func (h *PurchaseHandler) ListMarketplace(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.purchaseFlow.ListMarketplaceOpen(createRequestContext(c, "/api/v1/marketplace/open"), userID)
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("List marketplace failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list marketplace", "MARKETPLACE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Marketplace retrieved", result)
}

// JoinPurchase handles joining an open collective purchase
// @Summary Join Purchase
// @Description Join an open collective purchase with a quantity commitment. The accepted quantity may be clamped to the remaining capacity.
// @Tags Marketplace
// @Accept json
// @Produce json
// @Param uuid path string true "Purchase UUID"
// @Param request body dto.JoinPurchaseRequest true "Join request"
// @Success 200 {object} dto.APIResponse{data=dto.JoinPurchaseResponse} "Joined successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Purchase not found"
// @Failure 409 {object} dto.APIResponse "Purchase closed, full, or already joined"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/marketplace/{uuid}/join [post]
func (h *PurchaseHandler) JoinPurchase(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.JoinPurchaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	req.PurchaseUUID = c.Params("uuid")

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	// Call business logic with proper context
	result, err := h.purchaseFlow.JoinPurchase(createRequestContext(c, "/api/v1/marketplace/join"), &req, clientMetadata(c))
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Join purchase failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to join purchase", "PURCHASE_JOIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// CancelParticipation handles withdrawing from an open collective purchase
// @Summary Cancel Participation
// @Description Withdraw a confirmed commitment from an open purchase. Cancellation is recorded against the company's reputation.
// @Tags Marketplace
// @Produce json
// @Param uuid path string true "Purchase UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CancelParticipationResponse} "Cancelled successfully"
// @Failure 404 {object} dto.APIResponse "No confirmed participation found"
// @Failure 409 {object} dto.APIResponse "Purchase already closed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/marketplace/{uuid}/cancel [post]
func (h *PurchaseHandler) CancelParticipation(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.CancelParticipationRequest{
		UserID:       userID,
		PurchaseUUID: c.Params("uuid"),
	}

	result, err := h.purchaseFlow.CancelParticipation(createRequestContext(c, "/api/v1/marketplace/cancel"), &req, clientMetadata(c))
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Cancel participation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel participation", "PARTICIPATION_CANCEL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetPurchaseHistory returns the caller company's participation history
// @Summary Purchase History
// @Description List the caller company's participation history, including cancelled commitments
// @Tags Company
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PurchaseHistoryResponse} "History retrieved"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/company/purchase-history [get]
func (h *PurchaseHandler) GetPurchaseHistory(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.purchaseFlow.GetCompanyPurchaseHistory(createRequestContext(c, "/api/v1/company/purchase-history"), userID)
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Get purchase history failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get purchase history", "PURCHASE_HISTORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Purchase history retrieved", result)
}

// GetFinalDocumentData returns the settlement data of a closed purchase
// @Summary Final Document Data
// @Description Return everything needed to render the final document of a closed purchase. Participants appear in join order.
// @Tags Purchases
// @Produce json
// @Param uuid path string true "Purchase UUID"
// @Success 200 {object} dto.APIResponse{data=dto.FinalDocumentDataResponse} "Document data retrieved"
// @Failure 404 {object} dto.APIResponse "Purchase not found"
// @Failure 409 {object} dto.APIResponse "Purchase still open"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/collective-purchases/{uuid}/final-document-data [get]
func (h *PurchaseHandler) GetFinalDocumentData(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	purchaseUUID := c.Params("uuid")
	if purchaseUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Purchase UUID is required", "PURCHASE_UUID_REQUIRED", nil)
	}

	result, err := h.purchaseFlow.GetFinalDocumentData(createRequestContext(c, "/api/v1/collective-purchases/final-document-data"), purchaseUUID, userID)
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Get final document data failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get final document data", "FINAL_DOCUMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Final document data retrieved", result)
}

// GetReputation returns the caller company's derived reputation
// @Summary Company Reputation
// @Description Return the caller company's reputation score, derived from its participation record
// @Tags Company
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ReputationResponse} "Reputation retrieved"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/company/reputation [get]
func (h *PurchaseHandler) GetReputation(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.reputationFlow.GetCompanyReputation(createRequestContext(c, "/api/v1/company/reputation"), userID)
	if err != nil {
		if status, code, message, ok := mapPurchaseError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Get reputation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get reputation", "REPUTATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Reputation retrieved", result)
}

// mapPurchaseError translates business errors shared across purchase endpoints
// into HTTP responses
func mapPurchaseError(err error) (status int, code, message string, ok bool) {
	switch {
	case businessflow.IsUserNotFound(err):
		return fiber.StatusUnauthorized, "USER_NOT_FOUND", "User not found", true
	case businessflow.IsCompanyNotFound(err):
		return fiber.StatusNotFound, "COMPANY_NOT_FOUND", "Company not found", true
	case businessflow.IsCompanyNotApproved(err):
		return fiber.StatusForbidden, "COMPANY_NOT_APPROVED", "Company has not been approved", true
	case businessflow.IsTermsNotAccepted(err):
		return fiber.StatusForbidden, "TERMS_NOT_ACCEPTED", "Terms of service have not been accepted", true
	case businessflow.IsPurchaseNotFound(err):
		return fiber.StatusNotFound, "PURCHASE_NOT_FOUND", "Purchase not found", true
	case businessflow.IsPurchaseClosed(err):
		return fiber.StatusConflict, "PURCHASE_CLOSED", "Purchase is closed", true
	case businessflow.IsPurchaseFull(err):
		return fiber.StatusConflict, "PURCHASE_FULL", "Purchase has reached its target quantity", true
	case businessflow.IsAlreadyParticipating(err):
		return fiber.StatusConflict, "ALREADY_PARTICIPATING", "Company already has a confirmed participation", true
	case businessflow.IsParticipationNotFound(err):
		return fiber.StatusNotFound, "PARTICIPATION_NOT_FOUND", "No confirmed participation found", true
	case businessflow.IsPurchaseStillOpen(err):
		return fiber.StatusConflict, "PURCHASE_STILL_OPEN", "Purchase has not been closed yet", true
	case businessflow.IsProductNameRequired(err):
		return fiber.StatusBadRequest, "PRODUCT_NAME_REQUIRED", "Product name is required", true
	case businessflow.IsDescriptionRequired(err):
		return fiber.StatusBadRequest, "DESCRIPTION_REQUIRED", "Description is required", true
	case businessflow.IsTargetQuantityInvalid(err):
		return fiber.StatusBadRequest, "TARGET_QUANTITY_INVALID", "Target quantity must be a positive integer", true
	case businessflow.IsQuantityInvalid(err):
		return fiber.StatusBadRequest, "QUANTITY_INVALID", "Quantity must be a positive integer", true
	case businessflow.IsSignatureIncomplete(err):
		return fiber.StatusBadRequest, "SIGNATURE_INCOMPLETE", "Signature id, name and contact are required", true
	case businessflow.IsPurchaseUUIDRequired(err):
		return fiber.StatusBadRequest, "PURCHASE_UUID_REQUIRED", "Purchase UUID is required", true
	default:
		return 0, "", "", false
	}
}
