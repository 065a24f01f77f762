package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := getBuffer()
	defer putBuffer(buf)

	// Encode first so an encoding failure can still become a 500
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// StatusForOutcome maps a result's reason code to an HTTP status. Outcomes
// that consumed an attempt (a failed breakthrough, a failed brew, a spoiled
// plot) changed state and are reported as 200 with success=false.
func StatusForOutcome(o domain.Outcome) int {
	if o.Success {
		return http.StatusOK
	}
	switch o.Reason {
	case domain.ReasonBreakthroughFailed, domain.ReasonAlchemyFailed, domain.ReasonSpoiled:
		return http.StatusOK
	case domain.ReasonInvalidInput, domain.ReasonInvalidSlot, domain.ReasonUnknownRecipe:
		return http.StatusBadRequest
	case domain.ReasonCharacterNotFound:
		return http.StatusNotFound
	case domain.ReasonNotOnline, domain.ReasonNoSession,
		domain.ReasonCharacterExists, domain.ReasonSlotOccupied,
		domain.ReasonSlotAlreadyUnlocked, domain.ReasonAlreadySignedIn:
		return http.StatusConflict
	case domain.ReasonCooldown:
		return http.StatusTooManyRequests
	case domain.ReasonInfrastructure:
		return http.StatusServiceUnavailable
	case domain.ReasonInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// respondResult writes a game result with the status derived from its outcome
func respondResult(w http.ResponseWriter, outcome domain.Outcome, result interface{}) {
	respondJSON(w, StatusForOutcome(outcome), result)
}

// respondCooldown adds Retry-After before writing a throttled tick result
func respondCooldown(w http.ResponseWriter, outcome domain.Outcome, seconds int64, result interface{}) {
	if outcome.Failed(domain.ReasonCooldown) && seconds > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}
	respondResult(w, outcome, result)
}
