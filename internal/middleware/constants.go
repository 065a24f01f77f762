package middleware

import "time"

// HTTP header names
const (
	// HeaderUserID carries the caller's user identity
	HeaderUserID = "X-User-ID"

	// HeaderRetryAfter tells throttled clients when to come back
	HeaderRetryAfter = "Retry-After"
)

// Default Values
const (
	// EmptyUserID represents an empty or missing user ID
	EmptyUserID = ""

	// DefaultLimiterCacheSize bounds the number of tracked users
	DefaultLimiterCacheSize = 10000

	// DefaultLimiterIdleTTL drops limiters of users who stopped calling
	DefaultLimiterIdleTTL = 10 * time.Minute
)

// Error messages
const (
	ErrMsgMissingUserID = "Missing X-User-ID header"
	ErrMsgInvalidUserID = "X-User-ID must be a UUID"
	ErrMsgRateLimited   = "Too many requests. Please slow down."
)

// Log Messages
const (
	LogMsgMissingUserID = "Request without user identity rejected"
	LogMsgInvalidUserID = "Request with malformed user identity rejected"
	LogMsgRateLimited   = "User request rate limited"
)
