package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/database"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// ReadinessTimeout bounds the storage ping of a readiness probe
const ReadinessTimeout = 2 * time.Second

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HandleHealthz provides a basic liveness check
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: HealthStatusOK})
	}
}

// HandleReadyz reports ready while storage answers a ping and the process
// is not draining. draining may be nil.
func HandleReadyz(dbPool database.Pool, draining func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if draining != nil && draining() {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  HealthStatusUnavailable,
				Message: MsgDraining,
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), ReadinessTimeout)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			logger.FromContext(ctx).Error("Readiness check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  HealthStatusUnavailable,
				Message: MsgDatabaseUnavailable,
			})
			return
		}

		respondJSON(w, http.StatusOK, HealthResponse{Status: HealthStatusOK})
	}
}
