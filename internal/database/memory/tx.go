package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// tx stages writes and applies them atomically on Commit
type tx struct {
	store  *Store
	closed bool

	locked      map[string]bool
	characters  map[string]*domain.Character
	lastActive  map[string]time.Time
	inventories map[string]map[string]int64
	slots       map[slotKey]domain.ProductionSlot
}

func (t *tx) ensureOpen() error {
	if t.closed {
		return domain.ErrTxClosed
	}
	return nil
}

// lock takes the row lock of a character once per transaction
func (t *tx) lock(ctx context.Context, characterID string) error {
	if t.locked[characterID] {
		return nil
	}
	if err := t.store.lockRow(ctx, characterID); err != nil {
		return err
	}
	t.locked[characterID] = true
	return nil
}

func (t *tx) release() {
	for id := range t.locked {
		t.store.unlockRow(id)
	}
	t.locked = nil
	t.closed = true
}

func (t *tx) GetCharacterForUpdate(ctx context.Context, characterID string) (*domain.Character, error) {
	if err := t.ensureOpen(); err != nil {
		return nil, err
	}
	if c, ok := t.characters[characterID]; ok {
		return cloneCharacter(c), nil
	}
	// existence is checked before locking so unknown ids never allocate a lock
	if _, err := t.store.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, characterID); err != nil {
		return nil, err
	}
	return t.store.GetCharacter(ctx, characterID)
}

func (t *tx) UpdateCharacter(ctx context.Context, c *domain.Character) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if !t.locked[c.ID] {
		return fmt.Errorf("%w: character %s updated without lock", domain.ErrInvariantViolation, c.ID)
	}
	t.characters[c.ID] = cloneCharacter(c)
	return nil
}

func (t *tx) UpdateLastActive(ctx context.Context, characterID string, at time.Time) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if !t.locked[characterID] {
		return fmt.Errorf("%w: character %s stamped without lock", domain.ErrInvariantViolation, characterID)
	}
	t.lastActive[characterID] = at
	return nil
}

func (t *tx) GetSlotsForUpdate(ctx context.Context, characterID string, kind domain.ProductionKind) ([]domain.ProductionSlot, error) {
	if err := t.ensureOpen(); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, characterID); err != nil {
		return nil, err
	}
	t.store.mu.RLock()
	slots := t.store.slotsOf(characterID, kind)
	t.store.mu.RUnlock()
	for i := range slots {
		if staged, ok := t.slots[keyOf(&slots[i])]; ok {
			slots[i] = cloneSlot(staged)
		}
	}
	return slots, nil
}

func (t *tx) UpdateSlot(ctx context.Context, slot *domain.ProductionSlot) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if !t.locked[slot.CharacterID] {
		return fmt.Errorf("%w: slot %d updated without lock", domain.ErrInvariantViolation, slot.Index)
	}
	k := keyOf(slot)
	t.store.mu.RLock()
	_, ok := t.store.slots[k]
	t.store.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s %d", domain.ErrSlotNotFound, slot.Kind, slot.Index)
	}
	t.slots[k] = cloneSlot(*slot)
	return nil
}

// inventory returns the staged inventory of a character, copying it on first use
func (t *tx) inventory(ctx context.Context, characterID string) (map[string]int64, error) {
	if err := t.ensureOpen(); err != nil {
		return nil, err
	}
	if inv, ok := t.inventories[characterID]; ok {
		return inv, nil
	}
	if err := t.lock(ctx, characterID); err != nil {
		return nil, err
	}
	t.store.mu.RLock()
	inv := make(map[string]int64, len(t.store.inventories[characterID]))
	for k, v := range t.store.inventories[characterID] {
		inv[k] = v
	}
	t.store.mu.RUnlock()
	t.inventories[characterID] = inv
	return inv, nil
}

func (t *tx) GetItemQuantity(ctx context.Context, characterID, itemID string) (int64, error) {
	inv, err := t.inventory(ctx, characterID)
	if err != nil {
		return 0, err
	}
	return inv[itemID], nil
}

func (t *tx) AddItem(ctx context.Context, characterID, itemID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidInput, quantity)
	}
	inv, err := t.inventory(ctx, characterID)
	if err != nil {
		return err
	}
	inv[itemID] += quantity
	return nil
}

func (t *tx) RemoveItem(ctx context.Context, characterID, itemID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidInput, quantity)
	}
	inv, err := t.inventory(ctx, characterID)
	if err != nil {
		return err
	}
	if inv[itemID] < quantity {
		return fmt.Errorf("%w: %s has %d, need %d", domain.ErrInsufficientQuantity, itemID, inv[itemID], quantity)
	}
	inv[itemID] -= quantity
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	s := t.store
	s.mu.Lock()
	now := s.now()
	for id, c := range t.characters {
		// last_active is owned by UpdateLastActive
		if cur, ok := s.characters[id]; ok {
			c.LastActive = cur.LastActive
		}
		c.UpdatedAt = now
		s.characters[id] = c
	}
	for id, at := range t.lastActive {
		if c, ok := s.characters[id]; ok {
			c.LastActive = at
		}
	}
	for id, inv := range t.inventories {
		clean := make(map[string]int64, len(inv))
		for item, qty := range inv {
			if qty > 0 {
				clean[item] = qty
			}
		}
		s.inventories[id] = clean
	}
	for k, slot := range t.slots {
		s.slots[k] = slot
	}
	s.mu.Unlock()
	t.release()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	t.release()
	return nil
}
