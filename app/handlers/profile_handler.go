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

// ProfileHandlerInterface defines the contract for company profile handlers
type ProfileHandlerInterface interface {
	GetMyCompany(c fiber.Ctx) error
	UpdateCompany(c fiber.Ctx) error
	AcceptTerms(c fiber.Ctx) error
}

// ProfileHandler handles company profile HTTP requests
type ProfileHandler struct {
	profileFlow businessflow.ProfileFlow
	validator   *validator.Validate
}

// NewProfileHandler creates a new company profile handler
func NewProfileHandler(profileFlow businessflow.ProfileFlow) *ProfileHandler {
	return &ProfileHandler{
		profileFlow: profileFlow,
		validator:   validator.New(),
	}
}

func (h *ProfileHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProfileHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetMyCompany returns the caller's company details
// @Summary My Company
// @Description Return the caller's company details
// @Tags Company
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GetMyCompanyResponse} "Company retrieved"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/users/me/company [get]
func (h *ProfileHandler) GetMyCompany(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.profileFlow.GetMyCompany(createRequestContext(c, "/api/v1/users/me/company"), userID)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}

		log.Println("Get my company failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get company", "COMPANY_GET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Company retrieved", result)
}

// UpdateCompany applies a partial update to the company profile
// @Summary Update Company
// @Description Apply a partial update to the company profile. Only the company's admin may update it.
// @Tags Company
// @Accept json
// @Produce json
// @Param uuid path string true "Company UUID"
// @Param request body dto.UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateCompanyResponse} "Company updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Not allowed to update this company"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/companies/{uuid} [patch]
func (h *ProfileHandler) UpdateCompany(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateCompanyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	req.CompanyUUID = c.Params("uuid")

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.profileFlow.UpdateCompany(createRequestContext(c, "/api/v1/companies/update"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsCompanyUpdateRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "NO_FIELDS_PROVIDED", nil)
		}
		if businessflow.IsAdminAccessRequired(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Admin access required", "ADMIN_REQUIRED", nil)
		}
		if businessflow.IsCompanyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to update this company", "COMPANY_ACCESS_DENIED", nil)
		}
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Update company failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update company", "COMPANY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// AcceptTerms records the caller company's acceptance of the platform terms
// @Summary Accept Terms
// @Description Record the caller company's acceptance of a terms version
// @Tags Company
// @Accept json
// @Produce json
// @Param request body dto.AcceptTermsRequest true "Terms version"
// @Success 200 {object} dto.APIResponse{data=dto.AcceptTermsResponse} "Terms accepted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Terms already accepted"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/terms/accept [post]
func (h *ProfileHandler) AcceptTerms(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.AcceptTermsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.profileFlow.AcceptTerms(createRequestContext(c, "/api/v1/terms/accept"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsTermsAlreadyAccepted(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Terms already accepted", "TERMS_ALREADY_ACCEPTED", nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Accept terms failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to accept terms", "TERMS_ACCEPT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
