package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// AuthMiddleware validates API key
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(HeaderAPIKey)

			// Use constant time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				detector.RecordFailedAuth(ip)

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isPublicPath(path string) bool {
	for _, prefix := range PublicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RequestSizeLimitMiddleware limits request body size
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ipWindow holds one address's counters for the current window
type ipWindow struct {
	start    time.Time
	failed   int
	requests int
}

// SuspiciousActivityDetector counts failed logins and requests per IP in
// fixed windows of DetectorWindow. At most DetectorTrackedIPs addresses
// are tracked; the least recently seen are forgotten first.
type SuspiciousActivityDetector struct {
	mu      sync.Mutex
	windows *lru.Cache[string, *ipWindow]
	now     func() time.Time
}

func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	windows, err := lru.New[string, *ipWindow](DetectorTrackedIPs)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &SuspiciousActivityDetector{windows: windows, now: time.Now}
}

// window returns ip's counters, starting a fresh window when the old one
// has expired. Caller must hold the mutex.
func (s *SuspiciousActivityDetector) window(ip string) *ipWindow {
	now := s.now()
	w, ok := s.windows.Get(ip)
	if !ok || now.Sub(w.start) > DetectorWindow {
		w = &ipWindow{start: now}
		s.windows.Add(ip, w)
	}
	return w
}

// RecordFailedAuth records a failed authentication attempt
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.window(ip)
	w.failed++
	if w.failed >= FailedAuthAlertCount {
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", w.failed)
	}
}

// FailedAuths returns ip's failed attempts in the current window
func (s *SuspiciousActivityDetector) FailedAuths(ip string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window(ip).failed
}

// RecordRequest records a request and returns false once the IP exceeds
// MaxRequestsPerWindow
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.window(ip)
	w.requests++
	if w.requests <= MaxRequestsPerWindow {
		return true
	}
	if w.requests%HighRateLogEvery == 0 {
		slog.Warn(SecurityAlertHighRate, "ip", ip, "count_in_window", w.requests)
	}
	return false
}

// SecurityLoggingMiddleware enforces the per-IP request ceiling
func SecurityLoggingMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r, trustedProxies)

			if !detector.RecordRequest(ip) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractIP gets the client IP address from request.
// It only trusts X-Forwarded-For if the request comes from a trusted proxy.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	if slices.Contains(trustedProxies, remoteIP) {
		if forwarded := r.Header.Get(HeaderForwardedFor); forwarded != "" {
			// Rightmost entry is the hop that connected to our trusted proxy
			ips := strings.Split(forwarded, ",")
			return strings.TrimSpace(ips[len(ips)-1])
		}
	}

	return remoteIP
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)

			next.ServeHTTP(w, r)
		})
	}
}
