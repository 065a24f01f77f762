package eventlog

import (
	"context"

	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// Service persists gameplay events into the game log and serves them back
type Service interface {
	// Subscribe attaches the logger to every gameplay event type
	Subscribe(bus event.Bus) error

	// RecentEvents returns a character's newest events, newest first.
	// limit is clamped to [1, MaxHistoryLimit]; zero means DefaultHistoryLimit.
	RecentEvents(ctx context.Context, characterID string, limit int) ([]repository.GameLogEntry, error)

	// CleanupOldEvents deletes events older than retentionDays
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo repository.GameLog
}

func NewService(repo repository.GameLog) Service {
	return &service{repo: repo}
}

func (s *service) Subscribe(bus event.Bus) error {
	for _, t := range event.AllTypes {
		bus.Subscribe(t, s.record)
	}
	return nil
}

// record stores the payload as a flat JSON object. A payload that cannot
// be represented that way is dropped rather than failing the publisher.
func (s *service) record(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	fields, err := event.DecodePayload[map[string]interface{}](evt.Payload)
	if err != nil {
		log.Debug(LogMsgEventPayloadUndecodable, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	charID := evt.CharacterID()
	if err := s.repo.LogEvent(ctx, string(evt.Type), charID, fields, evt.Metadata); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldType, evt.Type, LogFieldError, err)
		return err
	}
	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldCharacterID, charID)
	return nil
}

func (s *service) RecentEvents(ctx context.Context, characterID string, limit int) ([]repository.GameLogEntry, error) {
	switch {
	case limit == 0:
		limit = DefaultHistoryLimit
	case limit < 1:
		limit = 1
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.repo.GetEventsByCharacter(ctx, characterID, limit)
}

func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}
