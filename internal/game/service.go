// Package game is the operation boundary of the progression engine. Every
// method resolves the caller's character, delegates to the owning system and
// converts any error into a tagged result, so nothing below this package
// reaches the transport as a raw error.
package game

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
	"github.com/osse101/IdleCultivation_Go/internal/session"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// Service defines every operation exposed to the transport layer
type Service interface {
	CreateCharacter(ctx context.Context, userID, name string, root domain.SpiritualRoot) *CreateResult

	Login(ctx context.Context, userID, characterID string) *session.LoginResult
	Logout(ctx context.Context, userID string) *session.LogoutResult
	ListSessions(ctx context.Context) *SessionsResult

	AdvanceTick(ctx context.Context, userID string) *session.TickResult
	AttemptBreakthrough(ctx context.Context, userID string) *cultivation.BreakthroughResult
	GetCultivationStatus(ctx context.Context, userID string) *StatusResult
	SetCultivationFocus(ctx context.Context, userID string, focus domain.CultivationFocus) *cultivation.FocusResult

	DailySignIn(ctx context.Context, userID string) *luck.SignInResult
	UseLuckPill(ctx context.Context, userID string) *luck.SignInResult

	StartProduction(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int, recipeID string) *production.StartResult
	CollectProduction(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int) *production.CollectResult
	UnlockSlot(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int) *production.UnlockResult
	ListProduction(ctx context.Context, userID string, kind domain.ProductionKind) *production.SlotList
}

// CreateResult is the outcome of character creation
type CreateResult struct {
	domain.Outcome
	Character *domain.Character `json:"character,omitempty"`
}

// StatusResult wraps the cultivation snapshot with display names
type StatusResult struct {
	domain.Outcome
	Status       *cultivation.Status `json:"status,omitempty"`
	FocusName    string              `json:"focus_name,omitempty"`
	LuckTierName string              `json:"luck_tier_name,omitempty"`
	RootName     string              `json:"root_name,omitempty"`
}

// SessionsResult lists the online users
type SessionsResult struct {
	domain.Outcome
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
}

type service struct {
	characters  repository.CharacterRepository
	sessions    *session.Manager
	cultivation cultivation.Service
	luck        luck.Service
	production  production.Service
	publisher   event.Publisher
	rng         utils.RNG
	cache       *characterCache
	now         func() time.Time
}

// NewService creates the game facade
func NewService(
	characters repository.CharacterRepository,
	sessions *session.Manager,
	cultivationSvc cultivation.Service,
	luckSvc luck.Service,
	productionSvc production.Service,
	publisher event.Publisher,
	rng utils.RNG,
) Service {
	return &service{
		characters:  characters,
		sessions:    sessions,
		cultivation: cultivationSvc,
		luck:        luckSvc,
		production:  productionSvc,
		publisher:   publisher,
		rng:         rng,
		cache:       newCharacterCache(DefaultCacheSize, DefaultCacheTTL),
		now:         time.Now,
	}
}

// failure converts an error into a result outcome. Expected conditions keep
// their reason; everything else is logged here and hidden from the caller.
func failure(ctx context.Context, op string, err error) domain.Outcome {
	log := logger.FromContext(ctx)
	switch {
	case errors.Is(err, domain.ErrCharacterNotFound):
		return domain.Fail(domain.ReasonCharacterNotFound, MsgCharacterNotFound)
	case errors.Is(err, domain.ErrCharacterExists):
		return domain.Fail(domain.ReasonCharacterExists, MsgCharacterExists)
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidFocus),
		errors.Is(err, domain.ErrInvalidKind):
		log.Debug(LogMsgOperationFailed, "op", op, "error", err)
		return domain.Fail(domain.ReasonInvalidInput, MsgInvalidInput)
	case errors.Is(err, domain.ErrInfrastructure):
		log.Error(LogMsgOperationFailed, "op", op, "error", err)
		return domain.Fail(domain.ReasonInfrastructure, MsgTemporarilyDown)
	default:
		log.Error(LogMsgInternalFailure, "op", op, "error", err)
		return domain.Fail(domain.ReasonInternal, MsgInternalError)
	}
}

// resolve maps a user to their character id and marks the session active
func (s *service) resolve(ctx context.Context, userID string) (string, error) {
	if s.sessions != nil {
		if sess, ok := s.sessions.Session(userID); ok {
			s.sessions.Touch(userID)
			return sess.CharacterID, nil
		}
	}
	if id, ok := s.cache.Get(userID); ok {
		return id, nil
	}
	c, err := s.characters.GetCharacterByUserID(ctx, userID)
	if err != nil {
		return "", repository.WrapInfra("resolve character", err)
	}
	s.cache.Set(userID, c.ID)
	return c.ID, nil
}

func (s *service) CreateCharacter(ctx context.Context, userID, name string, root domain.SpiritualRoot) *CreateResult {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinNameLength || n > MaxNameLength {
		return &CreateResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidName, MinNameLength, MaxNameLength)}
	}
	if userID == "" {
		return &CreateResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidInput)}
	}
	if root == "" {
		root = s.rollRoot()
	} else if !root.Valid() {
		return &CreateResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidRoot, root)}
	}

	now := s.now()
	c := &domain.Character{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          name,
		SpiritualRoot: root,
		Luck:          domain.DefaultLuck,
		Gold:          domain.DefaultStartingGold,
		Focus:         domain.FocusHP,
		CaveLevel:     1,
		AlchemyLevel:  1,
		LastActive:    now,
		CreatedAt:     now,
	}
	if err := s.characters.CreateCharacter(ctx, c, s.production.NewSlots(c.ID)); err != nil {
		return &CreateResult{Outcome: failure(ctx, "create character", repository.WrapInfra("create character", err))}
	}
	s.cache.Set(userID, c.ID)

	logger.FromContext(ctx).Info(LogMsgCharacterCreated, "user_id", userID, "character_id", c.ID, "root", root)
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.NewCharacterCreatedEvent(event.CharacterCreatedPayloadV1{
			CharacterID:   c.ID,
			UserID:        userID,
			Name:          name,
			SpiritualRoot: string(root),
		}))
	}
	return &CreateResult{
		Outcome:   domain.Succeed(MsgCharacterCreated, name, DisplayName(string(root))),
		Character: c,
	}
}

func (s *service) rollRoot() domain.SpiritualRoot {
	weights := make([]int, len(domain.SpiritualRoots))
	for i, info := range domain.SpiritualRoots {
		weights[i] = info.Weight
	}
	return domain.SpiritualRoots[utils.WeightedIndex(s.rng, weights)].Root
}

func (s *service) Login(ctx context.Context, userID, characterID string) *session.LoginResult {
	if characterID != "" {
		owned, err := s.resolve(ctx, userID)
		if err != nil {
			return &session.LoginResult{Outcome: failure(ctx, "login", err)}
		}
		if owned != characterID {
			return &session.LoginResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgCharacterMismatch)}
		}
	}
	res, err := s.sessions.Login(ctx, userID)
	if err != nil {
		return &session.LoginResult{Outcome: failure(ctx, "login", err)}
	}
	return res
}

func (s *service) Logout(ctx context.Context, userID string) *session.LogoutResult {
	res, err := s.sessions.Logout(ctx, userID)
	if err != nil {
		return &session.LogoutResult{Outcome: failure(ctx, "logout", err)}
	}
	return res
}

func (s *service) ListSessions(ctx context.Context) *SessionsResult {
	list := s.sessions.ListSessions()
	ids := make([]string, 0, len(list))
	for _, sess := range list {
		ids = append(ids, sess.UserID)
	}
	return &SessionsResult{
		Outcome: domain.Succeed(session.MsgSessionsListed, len(ids)),
		Count:   len(ids),
		UserIDs: ids,
	}
}

func (s *service) AdvanceTick(ctx context.Context, userID string) *session.TickResult {
	res, err := s.sessions.Tick(ctx, userID)
	if err != nil {
		return &session.TickResult{Outcome: failure(ctx, "tick", err)}
	}
	return res
}

func (s *service) AttemptBreakthrough(ctx context.Context, userID string) *cultivation.BreakthroughResult {
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &cultivation.BreakthroughResult{Outcome: failure(ctx, "breakthrough", err)}
	}
	res, err := s.cultivation.AttemptBreakthrough(ctx, id)
	if err != nil {
		return &cultivation.BreakthroughResult{Outcome: failure(ctx, "breakthrough", err)}
	}
	return res
}

func (s *service) GetCultivationStatus(ctx context.Context, userID string) *StatusResult {
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &StatusResult{Outcome: failure(ctx, "status", err)}
	}
	status, err := s.cultivation.GetStatus(ctx, id)
	if err != nil {
		return &StatusResult{Outcome: failure(ctx, "status", err)}
	}
	return &StatusResult{
		Outcome:      domain.Succeed(MsgStatus, status.RealmName, DisplayName(string(status.LuckTier))),
		Status:       status,
		FocusName:    DisplayName(string(status.Focus)),
		LuckTierName: DisplayName(string(status.LuckTier)),
		RootName:     DisplayName(string(status.SpiritualRoot)),
	}
}

func (s *service) SetCultivationFocus(ctx context.Context, userID string, focus domain.CultivationFocus) *cultivation.FocusResult {
	if !focus.Valid() {
		return &cultivation.FocusResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidFocus, focus)}
	}
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &cultivation.FocusResult{Outcome: failure(ctx, "set focus", err)}
	}
	res, err := s.cultivation.SetFocus(ctx, id, focus)
	if err != nil {
		return &cultivation.FocusResult{Outcome: failure(ctx, "set focus", err)}
	}
	return res
}

func (s *service) DailySignIn(ctx context.Context, userID string) *luck.SignInResult {
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &luck.SignInResult{Outcome: failure(ctx, "sign in", err)}
	}
	res, err := s.luck.DailySignIn(ctx, id)
	if err != nil {
		return &luck.SignInResult{Outcome: failure(ctx, "sign in", err)}
	}
	return res
}

func (s *service) UseLuckPill(ctx context.Context, userID string) *luck.SignInResult {
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &luck.SignInResult{Outcome: failure(ctx, "luck pill", err)}
	}
	res, err := s.luck.UseLuckPill(ctx, id)
	if err != nil {
		return &luck.SignInResult{Outcome: failure(ctx, "luck pill", err)}
	}
	return res
}

func (s *service) StartProduction(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int, recipeID string) *production.StartResult {
	if !kind.Valid() {
		return &production.StartResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidKind, kind)}
	}
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &production.StartResult{Outcome: failure(ctx, "start production", err)}
	}
	res, err := s.production.Start(ctx, id, kind, slotIndex, recipeID)
	if err != nil {
		return &production.StartResult{Outcome: failure(ctx, "start production", err)}
	}
	return res
}

func (s *service) CollectProduction(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int) *production.CollectResult {
	if !kind.Valid() {
		return &production.CollectResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidKind, kind)}
	}
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &production.CollectResult{Outcome: failure(ctx, "collect production", err)}
	}
	res, err := s.production.Collect(ctx, id, kind, slotIndex)
	if err != nil {
		return &production.CollectResult{Outcome: failure(ctx, "collect production", err)}
	}
	return res
}

func (s *service) UnlockSlot(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int) *production.UnlockResult {
	if !kind.Valid() {
		return &production.UnlockResult{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidKind, kind)}
	}
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &production.UnlockResult{Outcome: failure(ctx, "unlock slot", err)}
	}
	res, err := s.production.Unlock(ctx, id, kind, slotIndex)
	if err != nil {
		return &production.UnlockResult{Outcome: failure(ctx, "unlock slot", err)}
	}
	return res
}

func (s *service) ListProduction(ctx context.Context, userID string, kind domain.ProductionKind) *production.SlotList {
	if !kind.Valid() {
		return &production.SlotList{Outcome: domain.Fail(domain.ReasonInvalidInput, MsgInvalidKind, kind)}
	}
	id, err := s.resolve(ctx, userID)
	if err != nil {
		return &production.SlotList{Outcome: failure(ctx, "list production", err)}
	}
	res, err := s.production.List(ctx, id, kind)
	if err != nil {
		return &production.SlotList{Outcome: failure(ctx, "list production", err)}
	}
	return res
}
