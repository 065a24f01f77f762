package cultivation

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// Service defines the cultivation feature interface
type Service interface {
	// ApplyTicks credits exactly ticks independent ticks in one transaction.
	// offline marks login catch-up batches.
	ApplyTicks(ctx context.Context, characterID string, ticks int, offline bool) (*TickBatch, error)
	// CreditOffline credits an offline catch-up batch and stamps last_active
	// with at in the same transaction, so a committed batch is never replayed.
	CreditOffline(ctx context.Context, characterID string, ticks int, at time.Time) (*TickBatch, error)
	AttemptBreakthrough(ctx context.Context, characterID string) (*BreakthroughResult, error)
	GetStatus(ctx context.Context, characterID string) (*Status, error)
	SetFocus(ctx context.Context, characterID string, focus domain.CultivationFocus) (*FocusResult, error)
}

// TickBatch aggregates a run of credited ticks
type TickBatch struct {
	Ticks           int                     `json:"ticks"`
	ExpGained       int64                   `json:"exp_gained"`
	AttributeGained int64                   `json:"attribute_gained"`
	Attribute       domain.CultivationFocus `json:"attribute"`
	Events          []domain.SpecialEvent   `json:"events,omitempty"`
	Last            *TickResult             `json:"last,omitempty"`
	Experience      int64                   `json:"experience"`
}

// FocusResult is the outcome of a focus change
type FocusResult struct {
	domain.Outcome
	Focus domain.CultivationFocus `json:"focus"`
}

type service struct {
	repo      repository.CharacterRepository
	engine    *Engine
	rng       utils.RNG
	publisher event.Publisher
}

// NewService creates a new cultivation service
func NewService(repo repository.CharacterRepository, engine *Engine, rng utils.RNG, publisher event.Publisher) Service {
	return &service{
		repo:      repo,
		engine:    engine,
		rng:       rng,
		publisher: publisher,
	}
}

func (s *service) ApplyTicks(ctx context.Context, characterID string, ticks int, offline bool) (*TickBatch, error) {
	return s.creditTicks(ctx, characterID, ticks, offline, nil)
}

func (s *service) CreditOffline(ctx context.Context, characterID string, ticks int, at time.Time) (*TickBatch, error) {
	return s.creditTicks(ctx, characterID, ticks, true, &at)
}

// creditTicks runs ticks engine steps under the character lock. A non-nil
// stamp is written to last_active before commit.
func (s *service) creditTicks(ctx context.Context, characterID string, ticks int, offline bool, stamp *time.Time) (*TickBatch, error) {
	log := logger.FromContext(ctx)
	if ticks < 0 {
		log.Error(LogMsgInvalidTickCount, "character_id", characterID, "ticks", ticks)
		return nil, fmt.Errorf("%w: negative tick count %d", domain.ErrInvariantViolation, ticks)
	}
	if ticks == 0 && stamp == nil {
		return &TickBatch{}, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, repository.WrapInfra("begin tick transaction", err)
	}
	defer repository.SafeRollback(ctx, tx)

	c, err := tx.GetCharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}

	batch := &TickBatch{Ticks: ticks}
	for i := 0; i < ticks; i++ {
		res := s.engine.AdvanceOneTick(c, s.rng)
		batch.ExpGained += res.ExpGained
		batch.AttributeGained += res.AttributeGained
		batch.Attribute = res.Attribute
		if res.Event != nil {
			batch.Events = append(batch.Events, *res.Event)
		}
		if i == ticks-1 {
			last := res
			batch.Last = &last
		}
	}
	if c.Experience < 0 {
		log.Error(LogMsgNegativeExp, "character_id", characterID, "experience", c.Experience)
		return nil, fmt.Errorf("%w: experience %d after %d ticks", domain.ErrInvariantViolation, c.Experience, ticks)
	}
	batch.Experience = c.Experience

	if err := tx.UpdateCharacter(ctx, c); err != nil {
		return nil, repository.WrapInfra("save character", err)
	}
	if stamp != nil {
		if err := tx.UpdateLastActive(ctx, characterID, *stamp); err != nil {
			return nil, repository.WrapInfra("stamp last active", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.WrapInfra("commit ticks", err)
	}
	if ticks == 0 {
		return batch, nil
	}

	log.Debug(LogMsgTicksApplied, "character_id", characterID, "ticks", ticks, "offline", offline, "exp_gained", batch.ExpGained)
	s.publishBatch(ctx, characterID, batch, offline)
	return batch, nil
}

func (s *service) publishBatch(ctx context.Context, characterID string, batch *TickBatch, offline bool) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishWithRetry(ctx, event.NewCultivationTickEvent(event.CultivationTickPayloadV1{
		CharacterID:     characterID,
		Ticks:           batch.Ticks,
		Offline:         offline,
		ExpGained:       batch.ExpGained,
		AttributeGained: batch.AttributeGained,
		Focus:           string(batch.Attribute),
		Experience:      batch.Experience,
	}))
	for _, ev := range batch.Events {
		logger.FromContext(ctx).Info(LogMsgSpecialEvent, "character_id", characterID, "event", ev.Name, "applied", ev.Applied)
		s.publisher.PublishWithRetry(ctx, event.NewSpecialEventEvent(characterID, ev))
	}
}

func (s *service) AttemptBreakthrough(ctx context.Context, characterID string) (*BreakthroughResult, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, repository.WrapInfra("begin breakthrough transaction", err)
	}
	defer repository.SafeRollback(ctx, tx)

	c, err := tx.GetCharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}

	result := s.engine.AttemptBreakthrough(c, s.rng)
	if !result.Attempted {
		return &result, nil
	}
	if c.Experience < 0 {
		return nil, fmt.Errorf("%w: experience %d after breakthrough", domain.ErrInvariantViolation, c.Experience)
	}

	if err := tx.UpdateCharacter(ctx, c); err != nil {
		return nil, repository.WrapInfra("save character", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.WrapInfra("commit breakthrough", err)
	}

	logger.FromContext(ctx).Info(LogMsgBreakthrough,
		"character_id", characterID,
		"success", result.Success,
		"from_realm", result.FromRealm,
		"chance", result.Chance)

	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.NewBreakthroughEvent(event.BreakthroughPayloadV1{
			CharacterID:    characterID,
			Success:        result.Success,
			FromRealm:      result.FromRealm,
			ToRealm:        result.ToRealm,
			Chance:         result.Chance,
			ExperienceLost: result.ExperienceLost,
		}))
	}
	return &result, nil
}

func (s *service) GetStatus(ctx context.Context, characterID string) (*Status, error) {
	c, err := s.repo.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}
	status := s.engine.StatusOf(c)
	return &status, nil
}

func (s *service) SetFocus(ctx context.Context, characterID string, focus domain.CultivationFocus) (*FocusResult, error) {
	if !focus.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFocus, focus)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, repository.WrapInfra("begin focus transaction", err)
	}
	defer repository.SafeRollback(ctx, tx)

	c, err := tx.GetCharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}
	if c.Focus == focus {
		return &FocusResult{Outcome: domain.Succeed(MsgFocusUnchanged, focus), Focus: focus}, nil
	}

	c.Focus = focus
	if err := tx.UpdateCharacter(ctx, c); err != nil {
		return nil, repository.WrapInfra("save character", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.WrapInfra("commit focus", err)
	}

	logger.FromContext(ctx).Info(LogMsgFocusChanged, "character_id", characterID, "focus", focus)
	return &FocusResult{Outcome: domain.Succeed(MsgFocusChanged, focus), Focus: focus}, nil
}
