package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

type userIDKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID returns the caller set by RequireUser, or EmptyUserID
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// RequireUser admits only requests whose X-User-ID is a UUID. The id is
// stored in canonical lower-case form so "ABC..." and "abc..." are the
// same player.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if raw == EmptyUserID {
			logger.FromContext(r.Context()).Debug(LogMsgMissingUserID, "path", r.URL.Path)
			http.Error(w, ErrMsgMissingUserID, http.StatusUnauthorized)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			logger.FromContext(r.Context()).Debug(LogMsgInvalidUserID, "path", r.URL.Path, "error", err)
			http.Error(w, ErrMsgInvalidUserID, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id.String())))
	})
}
