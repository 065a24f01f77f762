package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// EventHistory reads a character's persisted gameplay events
type EventHistory interface {
	RecentEvents(ctx context.Context, characterID string, limit int) ([]repository.GameLogEntry, error)
}

// EventHistoryResponse lists a character's newest events first
type EventHistoryResponse struct {
	CharacterID string                    `json:"character_id"`
	Events      []repository.GameLogEntry `json:"events"`
}

// HandleRecentEvents serves GET /characters/{id}/events?limit=N
func HandleRecentEvents(history EventHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := uuid.Parse(id); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidCharacterID)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
				return
			}
			limit = n
		}

		events, err := history.RecentEvents(r.Context(), id, limit)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to read event history", "character_id", id, "error", err)
			respondError(w, http.StatusServiceUnavailable, ErrMsgHistoryUnavailable)
			return
		}
		if events == nil {
			events = []repository.GameLogEntry{}
		}
		respondJSON(w, http.StatusOK, EventHistoryResponse{CharacterID: id, Events: events})
	}
}
