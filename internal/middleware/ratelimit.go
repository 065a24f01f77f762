package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// UserRateLimiter keeps one token bucket per user. Buckets of users that go
// quiet expire from the cache and start full on their next request.
type UserRateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// NewUserRateLimiter allows rps requests per second per user with the given burst
func NewUserRateLimiter(rps float64, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](DefaultLimiterCacheSize, nil, DefaultLimiterIdleTTL),
	}
}

func (l *UserRateLimiter) limiterFor(userID string) *rate.Limiter {
	if lim, ok := l.limiters.Get(userID); ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(userID, lim)
	return lim
}

// Allow reports whether userID may make a request now. When it may not, the
// returned duration is how long until a token is available.
func (l *UserRateLimiter) Allow(userID string) (bool, time.Duration) {
	res := l.limiterFor(userID).Reserve()
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

// Middleware throttles requests per user. It must run after RequireUser.
func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := GetUserID(r.Context())
		if userID == EmptyUserID {
			next.ServeHTTP(w, r)
			return
		}

		if ok, wait := l.Allow(userID); !ok {
			logger.FromContext(r.Context()).Info(LogMsgRateLimited, "user_id", userID, "retry_after", wait)
			w.Header().Set(HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			http.Error(w, ErrMsgRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
