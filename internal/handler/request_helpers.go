package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/middleware"
)

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest decodes a JSON request body and validates it.
// If it returns an error the response has already been written.
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	return decodeAndValidate(r, w, req, actionName, false)
}

// DecodeOptionalRequest is DecodeAndValidateRequest for endpoints whose body
// may be omitted entirely.
func DecodeOptionalRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	return decodeAndValidate(r, w, req, actionName, true)
}

func decodeAndValidate(r *http.Request, w http.ResponseWriter, req interface{}, actionName string, allowEmpty bool) error {
	log := logger.FromContext(r.Context())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		log.Debug(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		log.Debug(fmt.Sprintf("%s request failed validation", actionName), "error", err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// requireUserID returns the caller identity stored by middleware.RequireUser
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == middleware.EmptyUserID {
		respondError(w, http.StatusUnauthorized, ErrMsgMissingUser)
		return "", false
	}
	return userID, true
}

// kindParam reads and validates the {kind} route parameter
func kindParam(w http.ResponseWriter, r *http.Request) (domain.ProductionKind, bool) {
	raw := chi.URLParam(r, "kind")
	kind := domain.ProductionKind(strings.ToLower(raw))
	if !kind.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidKind, raw))
		return "", false
	}
	return kind, true
}
