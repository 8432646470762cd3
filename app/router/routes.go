// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/corporateguard/backend/app/dto"
	"github.com/corporateguard/backend/app/handlers"
	"github.com/corporateguard/backend/app/middleware"
	"github.com/corporateguard/backend/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app             *fiber.App
	authHandler     handlers.AuthHandlerInterface
	profileHandler  handlers.ProfileHandlerInterface
	purchaseHandler handlers.PurchaseHandlerInterface
	adminHandler    handlers.AdminHandlerInterface
	authMiddleware  *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	authHandler handlers.AuthHandlerInterface,
	profileHandler handlers.ProfileHandlerInterface,
	purchaseHandler handlers.PurchaseHandlerInterface,
	adminHandler handlers.AdminHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
) Router {
	// Configure Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CorporateGuard API",
		ServerHeader: "CorporateGuard",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:             app,
		authHandler:     authHandler,
		profileHandler:  profileHandler,
		purchaseHandler: purchaseHandler,
		adminHandler:    adminHandler,
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// Prometheus scrape endpoint, outside the /api/v1 prefix
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		log.Println("API documentation enabled for development")
	}

	// Apply general rate limiting to all API routes (aligned with nginx)
	api.Use(limiter.New(limiter.Config{
		Max:        2000,            // Maximum 2000 requests (matches nginx api zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")

	// Apply stricter rate limiting to auth endpoints (aligned with nginx)
	auth.Use(limiter.New(limiter.Config{
		Max:        20,              // Maximum 20 requests (matches nginx auth zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	// Auth endpoints
	auth.Post("/register", r.authHandler.Register)
	auth.Post("/login", r.authHandler.Login)

	// Authenticated routes
	authenticate := r.authMiddleware.Authenticate()

	// Company profile endpoints
	api.Get("/users/me/company", r.profileHandler.GetMyCompany, authenticate)
	api.Patch("/companies/:uuid", r.profileHandler.UpdateCompany, authenticate)
	api.Post("/terms/accept", r.profileHandler.AcceptTerms, authenticate)

	// Collective purchase endpoints
	purchases := api.Group("/collective-purchases", authenticate)
	purchases.Post("/", r.purchaseHandler.CreatePurchase)
	purchases.Get("/my", r.purchaseHandler.ListMyPurchases)
	purchases.Get("/:uuid/final-document-data", r.purchaseHandler.GetFinalDocumentData)

	// Marketplace endpoints
	marketplace := api.Group("/marketplace", authenticate)
	marketplace.Get("/open", r.purchaseHandler.ListMarketplace)
	marketplace.Post("/:uuid/join", r.purchaseHandler.JoinPurchase)
	marketplace.Post("/:uuid/cancel", r.purchaseHandler.CancelParticipation)

	// Company insight endpoints
	company := api.Group("/company", authenticate)
	company.Get("/purchase-history", r.purchaseHandler.GetPurchaseHistory)
	company.Get("/reputation", r.purchaseHandler.GetReputation)

	// Admin endpoints (role is checked in the business flow)
	admin := api.Group("/admin", authenticate)
	admin.Get("/companies", r.adminHandler.ListCompanies)
	admin.Post("/companies/:uuid/approve", r.adminHandler.ApproveCompany)
	admin.Post("/companies/:uuid/revoke", r.adminHandler.RevokeCompany)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://corporateguard.io",
			"https://api.corporateguard.io",
			"https://admin.corporateguard.io",
			"https://app.corporateguard.io",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Skip compression for certain content types
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "video/") ||
				contains(contentType, "audio/")
		},
	}))

	// Cache middleware for static content
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			// Only cache GET requests to specific endpoints
			return c.Method() != "GET" ||
				!contains(c.Path(), "/health") &&
					!contains(c.Path(), "/docs")
		},
		Expiration:          30 * time.Minute,
		DisableCacheControl: false,
	}))

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus metrics middleware
	r.app.Use(middleware.Metrics())

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	// Add security headers
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "CorporateGuard")

	// Continue to next middleware
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "corporateguard-api",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	docs := GetRouteDocumentation()
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "CorporateGuard API Documentation",
			"version":     "1.0.0",
			"description": "Collective purchase aggregation API for registered companies",
			"endpoints":   docs,
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "POST",
			"path":        "/api/v1/auth/register",
			"description": "Register a company with its first admin user",
			"parameters": map[string]any{
				"tax_number":       "string (required) - Company tax number",
				"trade_name":       "string (required) - Company trade name",
				"sector":           "string (required) - Business sector",
				"user_name":        "string (required) - Admin user full name",
				"email":            "string (required) - Admin user email",
				"password":         "string (required) - Password",
				"confirm_password": "string (required) - Password confirmation",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/auth/login",
			"description": "Authenticate a user with email and password",
			"parameters": map[string]any{
				"email":    "string (required) - Email address",
				"password": "string (required) - User password",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/users/me/company",
			"description": "Return the caller's company details",
			"parameters":  map[string]any{},
		},
		{
			"method":      "PATCH",
			"path":        "/api/v1/companies/:uuid",
			"description": "Apply a partial update to the company profile",
			"parameters": map[string]any{
				"trade_name":  "string (optional) - New trade name",
				"sector":      "string (optional) - New sector",
				"address":     "string (optional) - New address",
				"phone":       "string (optional) - New phone",
				"description": "string (optional) - New description",
				"logo_url":    "string (optional) - New logo URL",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/terms/accept",
			"description": "Record the company's acceptance of a terms version",
			"parameters": map[string]any{
				"version": "string (required) - Terms version identifier",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/collective-purchases",
			"description": "Propose a collective purchase with the proposer's own quantity",
			"parameters": map[string]any{
				"product_name":    "string (required) - Product being purchased",
				"description":     "string (required) - Purchase description",
				"target_quantity": "number (required) - Target quantity to reach",
				"quantity":        "number (required) - Proposer's committed quantity",
				"signature":       "object (required) - id, name, contact",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/collective-purchases/my",
			"description": "List purchases proposed by the caller's company",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/collective-purchases/:uuid/final-document-data",
			"description": "Return settlement data of a closed purchase, participants in join order",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/marketplace/open",
			"description": "List open purchases from other companies",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/marketplace/:uuid/join",
			"description": "Join an open purchase; the accepted quantity may be clamped",
			"parameters": map[string]any{
				"quantity":  "number (required) - Requested quantity",
				"signature": "object (required) - id, name, contact",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/marketplace/:uuid/cancel",
			"description": "Withdraw a confirmed commitment from an open purchase",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/company/purchase-history",
			"description": "List the caller company's participation history",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/company/reputation",
			"description": "Return the caller company's derived reputation",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/companies",
			"description": "List registered companies for validation review",
			"parameters": map[string]any{
				"status":    "string (optional) - pending|approved|rejected",
				"page":      "number (optional) - Page number",
				"page_size": "number (optional) - Page size",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/companies/:uuid/approve",
			"description": "Approve a registered company",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/companies/:uuid/revoke",
			"description": "Revoke a company's approval",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}
