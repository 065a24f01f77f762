// Package memory is a process-local storage driver. It implements the same
// repository contracts as the postgres driver, with per-character row locks
// held from GetCharacterForUpdate until Commit or Rollback.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

type slotKey struct {
	characterID string
	kind        domain.ProductionKind
	index       int
}

func keyOf(s *domain.ProductionSlot) slotKey {
	return slotKey{characterID: s.CharacterID, kind: s.Kind, index: s.Index}
}

func (k slotKey) less(o slotKey) bool {
	if k.characterID != o.characterID {
		return k.characterID < o.characterID
	}
	if k.kind != o.kind {
		return k.kind < o.kind
	}
	return k.index < o.index
}

// Store holds every table in maps guarded by one mutex
type Store struct {
	mu          sync.RWMutex
	characters  map[string]*domain.Character
	byUser      map[string]string
	inventories map[string]map[string]int64
	slots       map[slotKey]domain.ProductionSlot

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		characters:  make(map[string]*domain.Character),
		byUser:      make(map[string]string),
		inventories: make(map[string]map[string]int64),
		slots:       make(map[slotKey]domain.ProductionSlot),
		locks:       make(map[string]chan struct{}),
		now:         time.Now,
	}
}

// rowLock returns the lock channel of a character, creating it on demand
func (s *Store) rowLock(characterID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[characterID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[characterID] = l
	}
	return l
}

func (s *Store) lockRow(ctx context.Context, characterID string) error {
	select {
	case s.rowLock(characterID) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for character lock: %w", domain.ErrInfrastructure, ctx.Err())
	}
}

func (s *Store) unlockRow(characterID string) {
	<-s.rowLock(characterID)
}

func cloneCharacter(c *domain.Character) *domain.Character {
	out := *c
	if c.LastSignInAt != nil {
		t := *c.LastSignInAt
		out.LastSignInAt = &t
	}
	return &out
}

func cloneSlot(s domain.ProductionSlot) domain.ProductionSlot {
	if s.RecipeID != nil {
		v := *s.RecipeID
		s.RecipeID = &v
	}
	if s.StartedAt != nil {
		v := *s.StartedAt
		s.StartedAt = &v
	}
	if s.CompletesAt != nil {
		v := *s.CompletesAt
		s.CompletesAt = &v
	}
	return s
}

// GetCharacter loads a character by id
func (s *Store) GetCharacter(ctx context.Context, characterID string) (*domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[characterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	return cloneCharacter(c), nil
}

// GetCharacterByUserID loads the character owned by a user
func (s *Store) GetCharacterByUserID(ctx context.Context, userID string) (*domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrCharacterNotFound, userID)
	}
	return cloneCharacter(s.characters[id]), nil
}

// CreateCharacter inserts a character and its slots
func (s *Store) CreateCharacter(ctx context.Context, c *domain.Character, slots []domain.ProductionSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[c.UserID]; ok {
		return fmt.Errorf("%w: user %s", domain.ErrCharacterExists, c.UserID)
	}
	if _, ok := s.characters[c.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCharacterExists, c.ID)
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.characters[c.ID] = cloneCharacter(c)
	s.byUser[c.UserID] = c.ID
	s.inventories[c.ID] = make(map[string]int64)
	for _, slot := range slots {
		s.slots[keyOf(&slot)] = cloneSlot(slot)
	}
	return nil
}

// UpdateLastActive stamps the last-active time
func (s *Store) UpdateLastActive(ctx context.Context, characterID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[characterID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	c.LastActive = at
	return nil
}

// Inventory lists non-empty stacks ordered by item id
func (s *Store) Inventory(ctx context.Context, characterID string) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.characters[characterID]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	items := make([]domain.InventoryItem, 0, len(s.inventories[characterID]))
	for id, qty := range s.inventories[characterID] {
		if qty > 0 {
			items = append(items, domain.InventoryItem{ItemID: id, Quantity: qty})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

// GrantItem credits an item outside any transaction. Used by seeding and tests.
func (s *Store) GrantItem(characterID, itemID string, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.inventories[characterID]
	if !ok {
		inv = make(map[string]int64)
		s.inventories[characterID] = inv
	}
	inv[itemID] += quantity
}

// ListSlots returns the slots of one kind ordered by index
func (s *Store) ListSlots(ctx context.Context, characterID string, kind domain.ProductionKind) ([]domain.ProductionSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotsOf(characterID, kind), nil
}

func (s *Store) slotsOf(characterID string, kind domain.ProductionKind) []domain.ProductionSlot {
	var out []domain.ProductionSlot
	for k, slot := range s.slots {
		if k.characterID == characterID && k.kind == kind {
			out = append(out, cloneSlot(slot))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ListOccupiedSlots pages through slots whose cached stage can still change
func (s *Store) ListOccupiedSlots(ctx context.Context, after *domain.ProductionSlot, limit int) ([]domain.ProductionSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]slotKey, 0, len(s.slots))
	for k, slot := range s.slots {
		if !slot.Occupied() || slot.Spoiled || (slot.Ready && slot.Kind == domain.KindAlchemy) {
			continue
		}
		if after != nil && !keyOf(after).less(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]domain.ProductionSlot, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneSlot(s.slots[k]))
	}
	return out, nil
}

// UpdateSlotStages writes cached stage fields only, skipping slots that were
// emptied or replanted since they were read
func (s *Store) UpdateSlotStages(ctx context.Context, updates []domain.SlotStageUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		k := slotKey{characterID: u.CharacterID, kind: u.Kind, index: u.Index}
		slot, ok := s.slots[k]
		if !ok || !slot.Occupied() || !slot.StartedAt.Equal(u.StartedAt) {
			continue
		}
		slot.Stage = u.Stage
		slot.Ready = u.Ready
		slot.Spoiled = u.Spoiled
		s.slots[k] = slot
	}
	return nil
}

// BeginTx starts a unit of work
func (s *Store) BeginTx(ctx context.Context) (repository.CharacterTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: begin: %w", domain.ErrInfrastructure, err)
	}
	return &tx{
		store:       s,
		locked:      make(map[string]bool),
		characters:  make(map[string]*domain.Character),
		lastActive:  make(map[string]time.Time),
		inventories: make(map[string]map[string]int64),
		slots:       make(map[slotKey]domain.ProductionSlot),
	}, nil
}

// Ping always succeeds; the store lives in process memory
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op so the store can stand in for a connection pool
func (s *Store) Close() {}

var (
	_ repository.CharacterRepository  = (*Store)(nil)
	_ repository.ProductionRepository = (*Store)(nil)
)
