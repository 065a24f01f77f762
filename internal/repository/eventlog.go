package repository

import (
	"context"
	"time"
)

// GameLog defines the interface for gameplay event storage
type GameLog interface {
	// LogEvent stores an event
	LogEvent(ctx context.Context, eventType string, characterID *string, payload, metadata map[string]interface{}) error

	// GetEventsByCharacter retrieves the newest events of a character
	GetEventsByCharacter(ctx context.Context, characterID string, limit int) ([]GameLogEntry, error)

	// CleanupOldEvents removes events older than the specified number of days
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

// GameLogEntry represents a logged gameplay event
type GameLogEntry struct {
	ID          int64                  `json:"id"`
	EventType   string                 `json:"event_type"`
	CharacterID *string                `json:"character_id,omitempty"`
	Payload     map[string]interface{} `json:"payload"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
