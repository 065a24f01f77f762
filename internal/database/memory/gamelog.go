package memory

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// GameLog keeps gameplay events in a slice
type GameLog struct {
	mu      sync.RWMutex
	entries []repository.GameLogEntry
	nextID  int64
	now     func() time.Time
}

// NewGameLog creates an empty in-memory game log
func NewGameLog() *GameLog {
	return &GameLog{now: time.Now}
}

// LogEvent stores an event
func (g *GameLog) LogEvent(ctx context.Context, eventType string, characterID *string, payload, metadata map[string]interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.entries = append(g.entries, repository.GameLogEntry{
		ID:          g.nextID,
		EventType:   eventType,
		CharacterID: characterID,
		Payload:     payload,
		Metadata:    metadata,
		CreatedAt:   g.now(),
	})
	return nil
}

// GetEventsByCharacter returns the newest events first
func (g *GameLog) GetEventsByCharacter(ctx context.Context, characterID string, limit int) ([]repository.GameLogEntry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []repository.GameLogEntry
	for i := len(g.entries) - 1; i >= 0; i-- {
		e := g.entries[i]
		if e.CharacterID == nil || *e.CharacterID != characterID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// CleanupOldEvents removes events older than retentionDays
func (g *GameLog) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := g.now().AddDate(0, 0, -retentionDays)
	kept := g.entries[:0]
	var removed int64
	for _, e := range g.entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.entries = kept
	return removed, nil
}

var _ repository.GameLog = (*GameLog)(nil)
