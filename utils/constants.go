package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Cache constants
const (
	// MarketplaceCacheTTL bounds staleness of the open purchases listing
	MarketplaceCacheTTL = 15 * time.Second

	// ReputationCacheTTL bounds staleness of the derived reputation score
	ReputationCacheTTL = 30 * time.Second
)

// Terms constants
const (
	// CurrentTermsVersion is the terms version companies must accept
	CurrentTermsVersion = "1.0"
)
