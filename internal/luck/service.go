package luck

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// Service defines the luck feature interface
type Service interface {
	DailySignIn(ctx context.Context, characterID string) (*SignInResult, error)
	UseLuckPill(ctx context.Context, characterID string) (*SignInResult, error)
}

// SignInResult reports a luck change. On refusal Old and New are equal.
type SignInResult struct {
	domain.Outcome
	OldScore    int             `json:"old_score"`
	NewScore    int             `json:"new_score"`
	Tier        domain.LuckTier `json:"tier"`
	Multiplier  float64         `json:"multiplier"`
	Effect      string          `json:"effect"`
	NextResetAt *time.Time      `json:"next_reset_at,omitempty"`
}

type service struct {
	repo      repository.CharacterRepository
	engine    *Engine
	rng       utils.RNG
	publisher event.Publisher
	reset     cron.Schedule
	loc       *time.Location
	now       func() time.Time
}

// NewService creates a luck service. resetSpec is a standard five-field cron
// expression marking the start of each sign-in day in loc.
func NewService(
	repo repository.CharacterRepository,
	engine *Engine,
	rng utils.RNG,
	publisher event.Publisher,
	resetSpec string,
	loc *time.Location,
) (Service, error) {
	if resetSpec == "" {
		resetSpec = DefaultSignInResetSpec
	}
	schedule, err := cron.ParseStandard(resetSpec)
	if err != nil {
		return nil, fmt.Errorf("%w: sign-in reset %q: %w", domain.ErrConfigInvalid, resetSpec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:      repo,
		engine:    engine,
		rng:       rng,
		publisher: publisher,
		reset:     schedule,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// nextReset is the first day boundary strictly after t
func (s *service) nextReset(t time.Time) time.Time {
	return s.reset.Next(t.In(s.loc))
}

func (s *service) result(outcome domain.Outcome, old, score int) *SignInResult {
	mult := s.engine.MultiplierFor(score)
	return &SignInResult{
		Outcome:    outcome,
		OldScore:   old,
		NewScore:   score,
		Tier:       s.engine.TierOf(score),
		Multiplier: mult,
		Effect:     s.engine.EffectLabel(mult),
	}
}

func (s *service) DailySignIn(ctx context.Context, characterID string) (*SignInResult, error) {
	log := logger.FromContext(ctx)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, repository.WrapInfra("begin sign-in transaction", err)
	}
	defer repository.SafeRollback(ctx, tx)

	c, err := tx.GetCharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}

	now := s.now()
	if c.LastSignInAt != nil {
		next := s.nextReset(*c.LastSignInAt)
		if next.After(now) {
			log.Info(LogMsgSignInRepeat, "character_id", characterID, "next_reset", next)
			res := s.result(domain.Fail(domain.ReasonAlreadySignedIn, MsgAlreadySignedIn, c.Luck), c.Luck, c.Luck)
			res.NextResetAt = &next
			return res, nil
		}
	}

	old := c.Luck
	c.Luck = domain.ClampLuck(s.engine.RollScore(s.rng))
	c.LastSignInAt = &now
	if err := tx.UpdateCharacter(ctx, c); err != nil {
		return nil, repository.WrapInfra("save character", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.WrapInfra("commit sign-in", err)
	}

	tier := s.engine.TierOf(c.Luck)
	log.Info(LogMsgSignIn, "character_id", characterID, "old", old, "new", c.Luck, "tier", tier)
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.NewSignInEvent(event.LuckChangedPayloadV1{
			CharacterID: characterID,
			OldScore:    old,
			NewScore:    c.Luck,
			Tier:        string(tier),
		}))
	}

	res := s.result(domain.Succeed(MsgSignedIn, old, c.Luck, tier), old, c.Luck)
	next := s.nextReset(now)
	res.NextResetAt = &next
	return res, nil
}

func (s *service) UseLuckPill(ctx context.Context, characterID string) (*SignInResult, error) {
	cfg := s.engine.Config()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, repository.WrapInfra("begin pill transaction", err)
	}
	defer repository.SafeRollback(ctx, tx)

	c, err := tx.GetCharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}
	if c.Luck >= domain.MaxLuck {
		return s.result(domain.Fail(domain.ReasonInvalidInput, MsgLuckAtMax), c.Luck, c.Luck), nil
	}

	have, err := tx.GetItemQuantity(ctx, characterID, cfg.LuckPillItemID)
	if err != nil {
		return nil, repository.WrapInfra("read inventory", err)
	}
	if have < 1 {
		return s.result(domain.Fail(domain.ReasonInsufficientResources, MsgNoLuckPill), c.Luck, c.Luck), nil
	}
	if err := tx.RemoveItem(ctx, characterID, cfg.LuckPillItemID, 1); err != nil {
		return nil, repository.WrapInfra("consume luck pill", err)
	}

	old := c.Luck
	c.Luck = domain.ClampLuck(c.Luck + cfg.LuckPillBonus)
	if err := tx.UpdateCharacter(ctx, c); err != nil {
		return nil, repository.WrapInfra("save character", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.WrapInfra("commit luck pill", err)
	}

	tier := s.engine.TierOf(c.Luck)
	logger.FromContext(ctx).Info(LogMsgPillUsed, "character_id", characterID, "old", old, "new", c.Luck)
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.NewLuckPillUsedEvent(event.LuckChangedPayloadV1{
			CharacterID: characterID,
			OldScore:    old,
			NewScore:    c.Luck,
			Tier:        string(tier),
		}))
	}
	return s.result(domain.Succeed(MsgPillUsed, old, c.Luck), old, c.Luck), nil
}
