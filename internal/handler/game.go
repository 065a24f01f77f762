package handler

import (
	"net/http"
	"strings"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/game"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// CreateCharacterRequest represents the request to create a character
type CreateCharacterRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=24,excludesall=\x00\n\r\t"`
	SpiritualRoot string `json:"spiritual_root,omitempty" validate:"spiritual_root"`
}

// LoginRequest optionally names the character the caller expects to play
type LoginRequest struct {
	CharacterID string `json:"character_id,omitempty" validate:"omitempty,uuid"`
}

// FocusRequest selects the attribute trained by cultivation ticks
type FocusRequest struct {
	Focus string `json:"focus" validate:"required,focus"`
}

// SlotRequest addresses one production slot
type SlotRequest struct {
	SlotIndex *int `json:"slot_index" validate:"required,min=0"`
}

// StartProductionRequest plants a seed or starts a brew
type StartProductionRequest struct {
	SlotIndex *int   `json:"slot_index" validate:"required,min=0"`
	RecipeID  string `json:"recipe_id" validate:"required,max=64"`
}

// GameHandler exposes the game operations over HTTP
type GameHandler struct {
	svc game.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(svc game.Service) *GameHandler {
	return &GameHandler{svc: svc}
}

// HandleCreateCharacter creates the caller's character
func (h *GameHandler) HandleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateCharacterRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create character"); err != nil {
		return
	}

	res := h.svc.CreateCharacter(r.Context(), userID, req.Name, domain.SpiritualRoot(strings.ToUpper(req.SpiritualRoot)))
	if res.Success {
		logger.FromContext(r.Context()).Info("Character created via API", "user_id", userID)
		respondJSON(w, http.StatusCreated, res)
		return
	}
	respondResult(w, res.Outcome, res)
}

// HandleLogin opens a session and credits offline progress
func (h *GameHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req LoginRequest
	if err := DecodeOptionalRequest(r, w, &req, "Login"); err != nil {
		return
	}

	res := h.svc.Login(r.Context(), userID, req.CharacterID)
	respondResult(w, res.Outcome, res)
}

// HandleLogout closes the caller's session
func (h *GameHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res := h.svc.Logout(r.Context(), userID)
	respondResult(w, res.Outcome, res)
}

// HandleListSessions reports the online users
func (h *GameHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	res := h.svc.ListSessions(r.Context())
	respondResult(w, res.Outcome, res)
}

// HandleTick advances one online cultivation tick
func (h *GameHandler) HandleTick(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res := h.svc.AdvanceTick(r.Context(), userID)
	respondCooldown(w, res.Outcome, res.CooldownSecondsRemaining, res)
}

// HandleBreakthrough attempts to advance to the next realm
func (h *GameHandler) HandleBreakthrough(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res := h.svc.AttemptBreakthrough(r.Context(), userID)
	respondResult(w, res.Outcome, res)
}

// HandleStatus returns the cultivation snapshot
func (h *GameHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res := h.svc.GetCultivationStatus(r.Context(), userID)
	respondResult(w, res.Outcome, res)
}

// HandleSetFocus changes the trained attribute
func (h *GameHandler) HandleSetFocus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req FocusRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set focus"); err != nil {
		return
	}
	res := h.svc.SetCultivationFocus(r.Context(), userID, domain.CultivationFocus(strings.ToUpper(req.Focus)))
	respondResult(w, res.Outcome, res)
}

// HandleSignIn performs the daily luck sign-in
func (h *GameHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res := h.svc.DailySignIn(r.Context(), userID)
	respondResult(w, res.Outcome, res)
}

// HandleLuckPill consumes a luck pill
func (h *GameHandler) HandleLuckPill(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res := h.svc.UseLuckPill(r.Context(), userID)
	respondResult(w, res.Outcome, res)
}

// HandleStartProduction fills an empty slot
func (h *GameHandler) HandleStartProduction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var req StartProductionRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Start production"); err != nil {
		return
	}
	res := h.svc.StartProduction(r.Context(), userID, kind, *req.SlotIndex, req.RecipeID)
	respondResult(w, res.Outcome, res)
}

// HandleCollectProduction harvests or finishes a slot
func (h *GameHandler) HandleCollectProduction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var req SlotRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Collect production"); err != nil {
		return
	}
	res := h.svc.CollectProduction(r.Context(), userID, kind, *req.SlotIndex)
	respondResult(w, res.Outcome, res)
}

// HandleUnlockSlot buys a locked slot
func (h *GameHandler) HandleUnlockSlot(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var req SlotRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Unlock slot"); err != nil {
		return
	}
	res := h.svc.UnlockSlot(r.Context(), userID, kind, *req.SlotIndex)
	respondResult(w, res.Outcome, res)
}

// HandleListProduction shows every slot of a kind
func (h *GameHandler) HandleListProduction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	res := h.svc.ListProduction(r.Context(), userID, kind)
	respondResult(w, res.Outcome, res)
}
