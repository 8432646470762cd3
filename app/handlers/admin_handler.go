// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/app/middleware"
	businessflow "github.com/corporateguard/backend/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminHandlerInterface defines the contract for company validation handlers
type AdminHandlerInterface interface {
	ListCompanies(c fiber.Ctx) error
	ApproveCompany(c fiber.Ctx) error
	RevokeCompany(c fiber.Ctx) error
}

// AdminHandler handles company validation HTTP requests
type AdminHandler struct {
	adminFlow businessflow.AdminFlow
	validator *validator.Validate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminFlow businessflow.AdminFlow) *AdminHandler {
	return &AdminHandler{
		adminFlow: adminFlow,
		validator: validator.New(),
	}
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListCompanies lists registered companies for validation review
// @Summary List Companies
// @Description List registered companies, optionally filtered by validation status
// @Tags Admin
// @Produce json
// @Param status query string false "Validation status filter" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCompaniesResponse} "Companies listed"
// @Failure 403 {object} dto.APIResponse "Admin access required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/companies [get]
func (h *AdminHandler) ListCompanies(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.ListCompaniesRequest{UserID: userID}
	if status := c.Query("status"); status != "" {
		req.ValidationStatus = &status
	}
	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil {
		req.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size", "20")); err == nil {
		req.PageSize = pageSize
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.adminFlow.ListCompanies(createRequestContext(c, "/api/v1/admin/companies"), &req)
	if err != nil {
		if status, code, message, ok := mapAdminError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("List companies failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list companies", "LIST_COMPANIES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Companies retrieved", result)
}

// ApproveCompany marks a company as approved
// @Summary Approve Company
// @Description Approve a registered company so it can create and join collective purchases
// @Tags Admin
// @Produce json
// @Param uuid path string true "Company UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveCompanyResponse} "Company approved"
// @Failure 403 {object} dto.APIResponse "Admin access required"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/companies/{uuid}/approve [post]
func (h *AdminHandler) ApproveCompany(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.ApproveCompanyRequest{
		UserID:      userID,
		CompanyUUID: c.Params("uuid"),
	}
	if req.CompanyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "COMPANY_UUID_REQUIRED", nil)
	}

	result, err := h.adminFlow.ApproveCompany(createRequestContext(c, "/api/v1/admin/companies/approve"), &req, clientMetadata(c))
	if err != nil {
		if status, code, message, ok := mapAdminError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Approve company failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to approve company", "COMPANY_APPROVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// RevokeCompany drops a company back to pending validation
// @Summary Revoke Company Approval
// @Description Revoke a company's approval. The company drops back to pending and must re-accept the terms.
// @Tags Admin
// @Produce json
// @Param uuid path string true "Company UUID"
// @Success 200 {object} dto.APIResponse{data=dto.RevokeCompanyResponse} "Approval revoked"
// @Failure 403 {object} dto.APIResponse "Admin access required"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/companies/{uuid}/revoke [post]
func (h *AdminHandler) RevokeCompany(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.RevokeCompanyRequest{
		UserID:      userID,
		CompanyUUID: c.Params("uuid"),
	}
	if req.CompanyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "COMPANY_UUID_REQUIRED", nil)
	}

	result, err := h.adminFlow.RevokeCompany(createRequestContext(c, "/api/v1/admin/companies/revoke"), &req, clientMetadata(c))
	if err != nil {
		if status, code, message, ok := mapAdminError(err); ok {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Revoke company failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke company approval", "COMPANY_REVOKE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// mapAdminError translates business errors shared across admin endpoints into
// HTTP responses
func mapAdminError(err error) (status int, code, message string, ok bool) {
	switch {
	case businessflow.IsUserNotFound(err):
		return fiber.StatusUnauthorized, "USER_NOT_FOUND", "User not found", true
	case businessflow.IsAdminAccessRequired(err):
		return fiber.StatusForbidden, "ADMIN_REQUIRED", "Admin access required", true
	case businessflow.IsCompanyNotFound(err):
		return fiber.StatusNotFound, "COMPANY_NOT_FOUND", "Company not found", true
	default:
		return 0, "", "", false
	}
}
