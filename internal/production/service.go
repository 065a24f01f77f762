package production

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

// Service defines the timed production feature interface shared by farm and alchemy
type Service interface {
	Start(ctx context.Context, characterID string, kind domain.ProductionKind, slotIndex int, recipeID string) (*StartResult, error)
	Collect(ctx context.Context, characterID string, kind domain.ProductionKind, slotIndex int) (*CollectResult, error)
	Unlock(ctx context.Context, characterID string, kind domain.ProductionKind, slotIndex int) (*UnlockResult, error)
	List(ctx context.Context, characterID string, kind domain.ProductionKind) (*SlotList, error)
	// CatchUp re-derives every slot's stage at now. Nothing is replayed.
	CatchUp(ctx context.Context, characterID string, now time.Time) (*CatchUpResult, error)
	NewSlots(characterID string) []domain.ProductionSlot
}

// SlotView is a slot with its stage derived at read time
type SlotView struct {
	Kind             domain.ProductionKind `json:"kind"`
	Index            int                   `json:"index"`
	RecipeID         string                `json:"recipe_id,omitempty"`
	Stage            domain.SlotStage      `json:"stage"`
	Ready            bool                  `json:"ready"`
	Spoiled          bool                  `json:"spoiled"`
	Unlocked         bool                  `json:"unlocked"`
	PlotType         domain.PlotType       `json:"plot_type,omitempty"`
	Progress         float64               `json:"progress"`
	RemainingSeconds int64                 `json:"remaining_seconds"`
	StartedAt        *time.Time            `json:"started_at,omitempty"`
	CompletesAt      *time.Time            `json:"completes_at,omitempty"`
}

// StartResult is the outcome of planting or starting a brew
type StartResult struct {
	domain.Outcome
	Slot *SlotView `json:"slot,omitempty"`
}

// CollectResult is the outcome of collecting a slot
type CollectResult struct {
	domain.Outcome
	ItemID       string         `json:"item_id,omitempty"`
	Quantity     int64          `json:"quantity,omitempty"`
	Quality      domain.Quality `json:"quality,omitempty"`
	AlchemyExp   int64          `json:"alchemy_exp,omitempty"`
	AlchemyLevel int            `json:"alchemy_level,omitempty"`
	LeveledUp    bool           `json:"leveled_up,omitempty"`
	Remaining    int64          `json:"remaining_seconds,omitempty"`
}

// UnlockResult is the outcome of unlocking a slot
type UnlockResult struct {
	domain.Outcome
	Slot *SlotView `json:"slot,omitempty"`
	Gold int64     `json:"gold"`
}

// SlotList is the catch-up view of one facility
type SlotList struct {
	domain.Outcome
	Kind  domain.ProductionKind `json:"kind"`
	Slots []SlotView            `json:"slots"`
}

// CatchUpResult summarizes slots after an offline gap
type CatchUpResult struct {
	Ready   int        `json:"ready"`
	Spoiled int        `json:"spoiled"`
	Slots   []SlotView `json:"slots"`
}

type service struct {
	repo      repository.CharacterRepository
	slots     repository.ProductionRepository
	engine    *Engine
	rng       utils.RNG
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new production service
func NewService(
	repo repository.CharacterRepository,
	slots repository.ProductionRepository,
	engine *Engine,
	rng utils.RNG,
	publisher event.Publisher,
) Service {
	return &service{
		repo:      repo,
		slots:     slots,
		engine:    engine,
		rng:       rng,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *service) NewSlots(characterID string) []domain.ProductionSlot {
	return s.engine.NewSlots(characterID)
}

func (s *service) view(slot *domain.ProductionSlot, now time.Time) SlotView {
	info := s.engine.StageOf(slot, now)
	v := SlotView{
		Kind:             slot.Kind,
		Index:            slot.Index,
		Stage:            info.Stage,
		Ready:            info.Ready,
		Spoiled:          info.Spoiled,
		Unlocked:         slot.Unlocked,
		PlotType:         slot.PlotType,
		Progress:         info.Progress,
		RemainingSeconds: int64(info.Remaining.Seconds()),
		StartedAt:        slot.StartedAt,
		CompletesAt:      slot.CompletesAt,
	}
	if slot.RecipeID != nil {
		v.RecipeID = *slot.RecipeID
	}
	return v
}

// cache copies a derived stage into the slot's cached fields
func cache(slot *domain.ProductionSlot, info StageInfo) {
	slot.Stage = info.Stage
	slot.Ready = info.Ready
	slot.Spoiled = info.Spoiled
}

func findSlot(slots []domain.ProductionSlot, index int) *domain.ProductionSlot {
	for i := range slots {
		if slots[i].Index == index {
			return &slots[i]
		}
	}
	return nil
}

// lockSlots opens a transaction holding the character row lock and the facility's slots
func (s *service) lockSlots(ctx context.Context, characterID string, kind domain.ProductionKind) (repository.CharacterTx, *domain.Character, []domain.ProductionSlot, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, nil, repository.WrapInfra("begin production transaction", err)
	}
	c, err := tx.GetCharacterForUpdate(ctx, characterID)
	if err != nil {
		repository.SafeRollback(ctx, tx)
		return nil, nil, nil, repository.WrapInfra("load character", err)
	}
	slots, err := tx.GetSlotsForUpdate(ctx, characterID, kind)
	if err != nil {
		repository.SafeRollback(ctx, tx)
		return nil, nil, nil, repository.WrapInfra("load slots", err)
	}
	return tx, c, slots, nil
}

func (s *service) Start(ctx context.Context, characterID string, kind domain.ProductionKind, slotIndex int, recipeID string) (*StartResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}

	tx, c, slots, err := s.lockSlots(ctx, characterID, kind)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	slot := findSlot(slots, slotIndex)
	switch {
	case slot == nil:
		return &StartResult{Outcome: domain.Fail(domain.ReasonInvalidSlot, MsgInvalidSlot, slotIndex)}, nil
	case !slot.Unlocked:
		return &StartResult{Outcome: domain.Fail(domain.ReasonSlotLocked, MsgSlotLocked, slotIndex)}, nil
	case slot.Occupied():
		return &StartResult{Outcome: domain.Fail(domain.ReasonSlotOccupied, MsgSlotOccupied, slotIndex)}, nil
	}

	now := s.now()
	var (
		duration time.Duration
		outcome  domain.Outcome
	)

	switch kind {
	case domain.KindFarm:
		seed, ok := s.engine.Catalog().Seed(recipeID)
		if !ok {
			return &StartResult{Outcome: domain.Fail(domain.ReasonUnknownRecipe, MsgUnknownRecipe, recipeID)}, nil
		}
		if fail, err := s.consume(ctx, tx, characterID, []Material{{ItemID: seed.ID, Quantity: 1}}); err != nil || fail != nil {
			return fail, err
		}
		duration = s.engine.FarmDuration(seed, slot.PlotType, c.SpiritArrayLevel)
		outcome = domain.Succeed(MsgPlanted, seed.Name, slotIndex, duration)

	case domain.KindAlchemy:
		recipe, ok := s.engine.Catalog().Recipe(recipeID)
		if !ok {
			return &StartResult{Outcome: domain.Fail(domain.ReasonUnknownRecipe, MsgUnknownRecipe, recipeID)}, nil
		}
		if c.Realm < recipe.RequiredRealm {
			return &StartResult{Outcome: domain.Fail(domain.ReasonRealmTooLow, MsgRealmTooLow, recipe.RequiredRealm)}, nil
		}
		if c.AlchemyLevel < recipe.RequiredAlchemyLevel {
			return &StartResult{Outcome: domain.Fail(domain.ReasonLevelTooLow, MsgLevelTooLow, recipe.RequiredAlchemyLevel)}, nil
		}
		if fail, err := s.consume(ctx, tx, characterID, recipe.Materials); err != nil || fail != nil {
			return fail, err
		}
		duration = s.engine.AlchemyDuration(recipe, c.CaveLevel, c.AlchemyLevel)
		slot.SuccessRate = s.engine.AlchemySuccessRate(c)
		outcome = domain.Succeed(MsgBrewStarted, recipe.Name, slotIndex, duration, slot.SuccessRate*100)
	}

	completes := now.Add(duration)
	id := recipeID
	slot.RecipeID = &id
	slot.StartedAt = &now
	slot.CompletesAt = &completes
	slot.SpoilSeed = s.rng.Int64()
	cache(slot, s.engine.StageOf(slot, now))

	if err := tx.UpdateSlot(ctx, slot); err != nil {
		return nil, repository.WrapInfra("save slot", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.WrapInfra("commit start", err)
	}

	logger.FromContext(ctx).Info(LogMsgProductionStarted, "character_id", characterID, "kind", kind, "slot", slotIndex, "recipe", recipeID, "duration", duration)
	s.publish(ctx, event.ProductionStarted, event.ProductionPayloadV1{
		CharacterID: characterID,
		Kind:        string(kind),
		SlotIndex:   slotIndex,
		RecipeID:    recipeID,
		Success:     true,
	})

	v := s.view(slot, now)
	return &StartResult{Outcome: outcome, Slot: &v}, nil
}

// consume checks every material before removing any of them
func (s *service) consume(ctx context.Context, tx repository.CharacterTx, characterID string, materials []Material) (*StartResult, error) {
	for _, m := range materials {
		have, err := tx.GetItemQuantity(ctx, characterID, m.ItemID)
		if err != nil {
			return nil, repository.WrapInfra("read inventory", err)
		}
		if have < m.Quantity {
			return &StartResult{Outcome: domain.Fail(domain.ReasonInsufficientResources, MsgMissingMaterial, m.ItemID, m.Quantity, have)}, nil
		}
	}
	for _, m := range materials {
		if err := tx.RemoveItem(ctx, characterID, m.ItemID, m.Quantity); err != nil {
			return nil, repository.WrapInfra("debit inventory", err)
		}
	}
	return nil, nil
}

func (s *service) Collect(ctx context.Context, characterID string, kind domain.ProductionKind, slotIndex int) (*CollectResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}

	tx, c, slots, err := s.lockSlots(ctx, characterID, kind)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	slot := findSlot(slots, slotIndex)
	if slot == nil {
		return &CollectResult{Outcome: domain.Fail(domain.ReasonInvalidSlot, MsgInvalidSlot, slotIndex)}, nil
	}
	if !slot.Occupied() {
		return &CollectResult{Outcome: domain.Fail(domain.ReasonSlotEmpty, MsgSlotEmpty, slotIndex)}, nil
	}

	now := s.now()
	info := s.engine.StageOf(slot, now)
	recipeID := *slot.RecipeID
	payload := event.ProductionPayloadV1{CharacterID: characterID, Kind: string(kind), SlotIndex: slotIndex, RecipeID: recipeID}

	if info.Spoiled {
		slot.Clear()
		if err := s.commitSlot(ctx, tx, slot, nil); err != nil {
			return nil, err
		}
		logger.FromContext(ctx).Info(LogMsgProductionSpoiled, "character_id", characterID, "slot", slotIndex, "recipe", recipeID)
		s.publish(ctx, event.ProductionSpoiled, payload)
		return &CollectResult{Outcome: domain.Fail(domain.ReasonSpoiled, MsgSpoiled, slotIndex)}, nil
	}
	if !info.Ready {
		remaining := int64(info.Remaining.Seconds())
		if info.Remaining%time.Second != 0 {
			remaining++
		}
		return &CollectResult{Outcome: domain.Fail(domain.ReasonNotReady, MsgNotReady, remaining), Remaining: remaining}, nil
	}

	var result *CollectResult
	switch kind {
	case domain.KindFarm:
		result, err = s.collectCrop(ctx, tx, slot, recipeID)
	case domain.KindAlchemy:
		result, err = s.collectBrew(ctx, tx, c, recipeID, slot.SuccessRate)
	}
	if err != nil || !result.Success && result.Reason == domain.ReasonUnknownRecipe {
		return result, err
	}

	slot.Clear()
	var updated *domain.Character
	if kind == domain.KindAlchemy {
		updated = c
	}
	if err := s.commitSlot(ctx, tx, slot, updated); err != nil {
		return nil, err
	}

	payload.ItemID = result.ItemID
	payload.Quantity = result.Quantity
	payload.Quality = string(result.Quality)
	payload.Success = result.Success
	logger.FromContext(ctx).Info(LogMsgProductionCollected, "character_id", characterID, "kind", kind, "slot", slotIndex, "success", result.Success)
	s.publish(ctx, event.ProductionCollected, payload)
	return result, nil
}

func (s *service) collectCrop(ctx context.Context, tx repository.CharacterTx, slot *domain.ProductionSlot, seedID string) (*CollectResult, error) {
	seed, ok := s.engine.Catalog().Seed(seedID)
	if !ok {
		return &CollectResult{Outcome: domain.Fail(domain.ReasonUnknownRecipe, MsgUnknownRecipe, seedID)}, nil
	}
	qty := s.engine.FarmYield(seed, slot.PlotType, s.rng)
	if err := tx.AddItem(ctx, slot.CharacterID, seed.ProductID, qty); err != nil {
		return nil, repository.WrapInfra("credit inventory", err)
	}
	return &CollectResult{
		Outcome:  domain.Succeed(MsgHarvested, qty, seed.ProductID),
		ItemID:   seed.ProductID,
		Quantity: qty,
	}, nil
}

func (s *service) collectBrew(ctx context.Context, tx repository.CharacterTx, c *domain.Character, recipeID string, successRate float64) (*CollectResult, error) {
	recipe, ok := s.engine.Catalog().Recipe(recipeID)
	if !ok {
		return &CollectResult{Outcome: domain.Fail(domain.ReasonUnknownRecipe, MsgUnknownRecipe, recipeID)}, nil
	}

	success := s.rng.Float64() < successRate
	result := &CollectResult{}
	quality := recipe.Quality

	if success {
		quality = utils.RollQualityUpgrade(s.rng, recipe.Quality)
		itemID := domain.QualityItemID(recipe.ProductID, recipe.Quality, quality)
		if err := tx.AddItem(ctx, c.ID, itemID, 1); err != nil {
			return nil, repository.WrapInfra("credit inventory", err)
		}
		result.Outcome = domain.Succeed(MsgBrewSucceeded, recipe.Name, quality)
		result.ItemID = itemID
		result.Quantity = 1
		result.Quality = quality
	} else {
		result.Outcome = domain.Fail(domain.ReasonAlchemyFailed, MsgBrewFailed, recipe.Name)
	}

	exp := s.engine.AlchemyExp(quality, success)
	result.LeveledUp = s.engine.ApplyAlchemyExp(c, exp)
	result.AlchemyExp = exp
	result.AlchemyLevel = c.AlchemyLevel
	return result, nil
}

func (s *service) commitSlot(ctx context.Context, tx repository.CharacterTx, slot *domain.ProductionSlot, c *domain.Character) error {
	if err := tx.UpdateSlot(ctx, slot); err != nil {
		return repository.WrapInfra("save slot", err)
	}
	if c != nil {
		if err := tx.UpdateCharacter(ctx, c); err != nil {
			return repository.WrapInfra("save character", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return repository.WrapInfra("commit collect", err)
	}
	return nil
}

func (s *service) Unlock(ctx context.Context, characterID string, kind domain.ProductionKind, slotIndex int) (*UnlockResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}

	tx, c, slots, err := s.lockSlots(ctx, characterID, kind)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	slot := findSlot(slots, slotIndex)
	if slot == nil {
		return &UnlockResult{Outcome: domain.Fail(domain.ReasonInvalidSlot, MsgInvalidSlot, slotIndex), Gold: c.Gold}, nil
	}
	if slot.Unlocked {
		return &UnlockResult{Outcome: domain.Fail(domain.ReasonSlotAlreadyUnlocked, MsgAlreadyUnlocked, slotIndex), Gold: c.Gold}, nil
	}
	req, ok := s.engine.UnlockRequirement(slotIndex)
	if kind != domain.KindFarm || !ok {
		return &UnlockResult{Outcome: domain.Fail(domain.ReasonInvalidSlot, MsgNotUnlockable, slotIndex), Gold: c.Gold}, nil
	}
	if c.CaveLevel < req.CaveLevel {
		return &UnlockResult{Outcome: domain.Fail(domain.ReasonCaveLevelTooLow, MsgCaveLevelTooLow, req.CaveLevel), Gold: c.Gold}, nil
	}
	if c.Gold < req.Gold {
		return &UnlockResult{Outcome: domain.Fail(domain.ReasonInsufficientResources, MsgInsufficientGold, req.Gold, c.Gold), Gold: c.Gold}, nil
	}

	c.Gold -= req.Gold
	slot.Unlocked = true
	if err := s.commitSlot(ctx, tx, slot, c); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgSlotUnlocked, "character_id", characterID, "slot", slotIndex, "cost", req.Gold)
	v := s.view(slot, s.now())
	return &UnlockResult{Outcome: domain.Succeed(MsgUnlocked, slotIndex), Slot: &v, Gold: c.Gold}, nil
}

func (s *service) List(ctx context.Context, characterID string, kind domain.ProductionKind) (*SlotList, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	slots, err := s.slots.ListSlots(ctx, characterID, kind)
	if err != nil {
		return nil, repository.WrapInfra("list slots", err)
	}
	now := s.now()
	views := make([]SlotView, 0, len(slots))
	for i := range slots {
		views = append(views, s.view(&slots[i], now))
	}
	return &SlotList{Outcome: domain.Succeed(MsgSlotsListed, len(views)), Kind: kind, Slots: views}, nil
}

func (s *service) CatchUp(ctx context.Context, characterID string, now time.Time) (*CatchUpResult, error) {
	result := &CatchUpResult{}
	var updates []domain.SlotStageUpdate

	for _, kind := range []domain.ProductionKind{domain.KindFarm, domain.KindAlchemy} {
		slots, err := s.slots.ListSlots(ctx, characterID, kind)
		if err != nil {
			return nil, repository.WrapInfra("list slots", err)
		}
		for i := range slots {
			slot := &slots[i]
			if !slot.Occupied() {
				continue
			}
			v := s.view(slot, now)
			result.Slots = append(result.Slots, v)
			if v.Ready {
				result.Ready++
			}
			if v.Spoiled {
				result.Spoiled++
			}
			if v.Stage != slot.Stage || v.Ready != slot.Ready || v.Spoiled != slot.Spoiled {
				updates = append(updates, domain.SlotStageUpdate{
					CharacterID: characterID, Kind: kind, Index: slot.Index, StartedAt: *slot.StartedAt,
					Stage: v.Stage, Ready: v.Ready, Spoiled: v.Spoiled,
				})
			}
		}
	}

	if len(updates) > 0 {
		if err := s.slots.UpdateSlotStages(ctx, updates); err != nil {
			// the cache is advisory; the derived stage above is authoritative
			logger.FromContext(ctx).Warn(LogMsgSweepFailed, "character_id", characterID, "error", err)
		}
	}
	return result, nil
}

func (s *service) publish(ctx context.Context, t event.Type, p event.ProductionPayloadV1) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishWithRetry(ctx, event.NewProductionEvent(t, p))
}
