package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// MetadataKeyCharacterID carries the character an event belongs to
const MetadataKeyCharacterID = "character_id"

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// CharacterID returns the owning character id, if any
func (e Event) CharacterID() *string {
	if id, ok := e.GetMetadataValue(MetadataKeyCharacterID).(string); ok && id != "" {
		return &id
	}
	return nil
}

// Gameplay event types
const (
	CharacterCreated    Type = domain.EventTypeCharacterCreated
	SessionLogin        Type = domain.EventTypeSessionLogin
	SessionLogout       Type = domain.EventTypeSessionLogout
	CultivationTick     Type = domain.EventTypeCultivationTick
	SpecialEvent        Type = domain.EventTypeSpecialEvent
	Breakthrough        Type = domain.EventTypeBreakthrough
	SignIn              Type = domain.EventTypeSignIn
	LuckPillUsed        Type = domain.EventTypeLuckPillUsed
	ProductionStarted   Type = domain.EventTypeProductionStarted
	ProductionCollected Type = domain.EventTypeProductionCollected
	ProductionSpoiled   Type = domain.EventTypeProductionSpoiled
)

// AllTypes lists every gameplay event type
var AllTypes = []Type{
	CharacterCreated,
	SessionLogin,
	SessionLogout,
	CultivationTick,
	SpecialEvent,
	Breakthrough,
	SignIn,
	LuckPillUsed,
	ProductionStarted,
	ProductionCollected,
	ProductionSpoiled,
}

// Typed event payloads for type safety

// CharacterCreatedPayloadV1 is the typed payload for character creation
type CharacterCreatedPayloadV1 struct {
	CharacterID   string `json:"character_id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	SpiritualRoot string `json:"spiritual_root"`
}

// SessionLoginPayloadV1 is the typed payload for login events
type SessionLoginPayloadV1 struct {
	UserID         string `json:"user_id"`
	CharacterID    string `json:"character_id"`
	OfflineSeconds int64  `json:"offline_seconds"`
	TicksCredited  int    `json:"ticks_credited"`
	ExpGained      int64  `json:"exp_gained"`
	SlotsReady     int    `json:"slots_ready"`
	ForcedLogout   bool   `json:"forced_logout"`
}

// SessionLogoutPayloadV1 is the typed payload for logout events
type SessionLogoutPayloadV1 struct {
	UserID          string `json:"user_id"`
	CharacterID     string `json:"character_id"`
	Reason          string `json:"reason"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// CultivationTickPayloadV1 is the typed payload for credited tick batches
type CultivationTickPayloadV1 struct {
	CharacterID     string `json:"character_id"`
	Ticks           int    `json:"ticks"`
	Offline         bool   `json:"offline"`
	ExpGained       int64  `json:"exp_gained"`
	AttributeGained int64  `json:"attribute_gained"`
	Focus           string `json:"focus"`
	Experience      int64  `json:"experience"`
}

// SpecialEventPayloadV1 is the typed payload for fired luck events
type SpecialEventPayloadV1 struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Positive    bool   `json:"positive"`
	Effect      string `json:"effect"`
	Amount      int64  `json:"amount"`
	Applied     int64  `json:"applied"`
}

// BreakthroughPayloadV1 is the typed payload for breakthrough attempts
type BreakthroughPayloadV1 struct {
	CharacterID    string  `json:"character_id"`
	Success        bool    `json:"success"`
	FromRealm      int     `json:"from_realm"`
	ToRealm        int     `json:"to_realm"`
	Chance         float64 `json:"chance"`
	ExperienceLost int64   `json:"experience_lost"`
}

// LuckChangedPayloadV1 is the typed payload for sign-in and luck pill events
type LuckChangedPayloadV1 struct {
	CharacterID string `json:"character_id"`
	OldScore    int    `json:"old_score"`
	NewScore    int    `json:"new_score"`
	Tier        string `json:"tier"`
}

// ProductionPayloadV1 is the typed payload for production slot events
type ProductionPayloadV1 struct {
	CharacterID string `json:"character_id"`
	Kind        string `json:"kind"`
	SlotIndex   int    `json:"slot_index"`
	RecipeID    string `json:"recipe_id"`
	ItemID      string `json:"item_id,omitempty"`
	Quantity    int64  `json:"quantity,omitempty"`
	Quality     string `json:"quality,omitempty"`
	Success     bool   `json:"success"`
}

func newCharacterEvent(t Type, characterID string, payload interface{}) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     t,
		Payload:  payload,
		Metadata: Metadata{MetadataKeyCharacterID: characterID},
	}
}

// NewCharacterCreatedEvent creates a character creation event
func NewCharacterCreatedEvent(p CharacterCreatedPayloadV1) Event {
	return newCharacterEvent(CharacterCreated, p.CharacterID, p)
}

// NewSessionLoginEvent creates a login event
func NewSessionLoginEvent(p SessionLoginPayloadV1) Event {
	return newCharacterEvent(SessionLogin, p.CharacterID, p)
}

// NewSessionLogoutEvent creates a logout event
func NewSessionLogoutEvent(p SessionLogoutPayloadV1) Event {
	return newCharacterEvent(SessionLogout, p.CharacterID, p)
}

// NewCultivationTickEvent creates a tick batch event
func NewCultivationTickEvent(p CultivationTickPayloadV1) Event {
	return newCharacterEvent(CultivationTick, p.CharacterID, p)
}

// NewSpecialEventEvent creates a fired luck event
func NewSpecialEventEvent(characterID string, ev domain.SpecialEvent) Event {
	return newCharacterEvent(SpecialEvent, characterID, SpecialEventPayloadV1{
		CharacterID: characterID,
		Name:        ev.Name,
		Positive:    ev.Positive,
		Effect:      string(ev.Effect),
		Amount:      ev.Amount,
		Applied:     ev.Applied,
	})
}

// NewBreakthroughEvent creates a breakthrough attempt event
func NewBreakthroughEvent(p BreakthroughPayloadV1) Event {
	return newCharacterEvent(Breakthrough, p.CharacterID, p)
}

// NewSignInEvent creates a daily sign-in event
func NewSignInEvent(p LuckChangedPayloadV1) Event {
	return newCharacterEvent(SignIn, p.CharacterID, p)
}

// NewLuckPillUsedEvent creates a luck pill event
func NewLuckPillUsedEvent(p LuckChangedPayloadV1) Event {
	return newCharacterEvent(LuckPillUsed, p.CharacterID, p)
}

// NewProductionEvent creates a production started/collected/spoiled event
func NewProductionEvent(t Type, p ProductionPayloadV1) Event {
	return newCharacterEvent(t, p.CharacterID, p)
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// Publisher is the fire-and-forget side used by game services
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
