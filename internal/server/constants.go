package server

import "time"

// HTTP error messages for middleware responses
const (
	ErrMsgUnauthorized    = "Unauthorized"
	ErrMsgTooManyRequests = "Too Many Requests"
)

// Security alert message templates
const (
	SecurityAlertFailedAuth = "SECURITY ALERT: Multiple failed authentication attempts"
	SecurityAlertHighRate   = "SECURITY ALERT: Blocking high request rate"
)

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting   = "Server starting"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
	LogMsgRequestHeaders   = "Request headers"
	LogMsgAuthFailed       = "Authentication failed"
)

// HTTP header names
const (
	HeaderAPIKey         = "X-API-Key"
	HeaderAuthorization  = "Authorization"
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderContentType    = "X-Content-Type-Options"
	HeaderFrameOptions   = "X-Frame-Options"
	HeaderXSSProtection  = "X-XSS-Protection"
	HeaderReferrerPolicy = "Referrer-Policy"
)

// Security header values
const (
	HeaderValueNoSniff              = "nosniff"
	HeaderValueSameOrigin           = "SAMEORIGIN"
	HeaderValueXSSBlock             = "1; mode=block"
	HeaderValueReferrerStrictOrigin = "strict-origin-when-cross-origin"
)

// Per-IP abuse detection thresholds
const (
	DetectorWindow        = 5 * time.Minute
	DetectorTrackedIPs    = 10000
	FailedAuthAlertCount  = 5
	MaxRequestsPerWindow  = 1000
	HighRateLogEvery      = 100
	MaxRequestBodyBytes   = 1 << 16
	ReadHeaderTimeout     = 5 * time.Second
	DefaultRateLimitRPS   = 5
	DefaultRateLimitBurst = 10
)

// Public path prefixes that bypass authentication
var PublicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/version",
}

// Header redaction marker
const (
	RedactedValue = "[REDACTED]"
)
