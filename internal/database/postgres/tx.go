package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// characterTx serializes writers of a character with a transaction-scoped
// advisory lock plus a row lock, both released on commit or rollback.
type characterTx struct {
	tx     pgx.Tx
	locked map[string]bool
}

// lock takes the advisory lock of a character once per transaction
func (t *characterTx) lock(ctx context.Context, characterID string) error {
	if t.locked[characterID] {
		return nil
	}
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, characterID); err != nil {
		return repository.WrapInfra(opLockCharacter, err)
	}
	t.locked[characterID] = true
	return nil
}

func (t *characterTx) GetCharacterForUpdate(ctx context.Context, characterID string) (*domain.Character, error) {
	id, err := parseCharacterUUID(characterID)
	if err != nil {
		return nil, err
	}
	if err := t.lock(ctx, characterID); err != nil {
		return nil, err
	}
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1 FOR UPDATE`
	c, err := scanCharacter(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(opGetCharacter, characterID, err)
	}
	return c, nil
}

// UpdateCharacter writes every gameplay field. last_active belongs to
// UpdateLastActive and is left alone.
func (t *characterTx) UpdateCharacter(ctx context.Context, c *domain.Character) error {
	if !t.locked[c.ID] {
		return fmt.Errorf("%w: character %s updated without lock", domain.ErrInvariantViolation, c.ID)
	}
	query := `
		UPDATE characters SET
			name = $2, experience = $3, realm = $4, spiritual_root = $5, luck = $6,
			gold = $7, spirit_stone = $8, focus = $9,
			training_hp = $10, training_physical_attack = $11, training_magic_attack = $12,
			training_physical_defense = $13, training_magic_defense = $14,
			cave_level = $15, spirit_array_level = $16, alchemy_level = $17, alchemy_exp = $18,
			last_sign_in_at = $19, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := t.tx.QueryRow(ctx, query,
		c.ID, c.Name, c.Experience, c.Realm, string(c.SpiritualRoot), c.Luck,
		c.Gold, c.SpiritStone, string(c.Focus),
		c.Training.HP, c.Training.PhysicalAttack, c.Training.MagicAttack,
		c.Training.PhysicalDefense, c.Training.MagicDefense,
		c.CaveLevel, c.SpiritArrayLevel, c.AlchemyLevel, c.AlchemyExp,
		c.LastSignInAt,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgCodeCheckViolation) {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvariantViolation, opUpdateCharacter, err)
		}
		return notFoundOr(opUpdateCharacter, c.ID, err)
	}
	return nil
}

func (t *characterTx) UpdateLastActive(ctx context.Context, characterID string, at time.Time) error {
	if !t.locked[characterID] {
		return fmt.Errorf("%w: character %s stamped without lock", domain.ErrInvariantViolation, characterID)
	}
	tag, err := t.tx.Exec(ctx, `UPDATE characters SET last_active = $2 WHERE id = $1`, characterID, at)
	if err != nil {
		return repository.WrapInfra(opUpdateLastActive, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	return nil
}

func (t *characterTx) GetSlotsForUpdate(ctx context.Context, characterID string, kind domain.ProductionKind) ([]domain.ProductionSlot, error) {
	if _, err := parseCharacterUUID(characterID); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, characterID); err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(ctx, `SELECT `+slotColumns+` FROM production_slots
		WHERE character_id = $1 AND kind = $2
		ORDER BY slot_index
		FOR UPDATE`, characterID, string(kind))
	if err != nil {
		return nil, repository.WrapInfra(opListSlots, err)
	}
	slots, err := collectSlots(rows)
	if err != nil {
		return nil, repository.WrapInfra(opListSlots, err)
	}
	return slots, nil
}

func (t *characterTx) UpdateSlot(ctx context.Context, s *domain.ProductionSlot) error {
	if !t.locked[s.CharacterID] {
		return fmt.Errorf("%w: slot %d updated without lock", domain.ErrInvariantViolation, s.Index)
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE production_slots SET
			recipe_id = $4, started_at = $5, completes_at = $6, stage = $7, ready = $8,
			spoiled = $9, unlocked = $10, plot_type = $11, success_rate = $12, spoil_seed = $13
		WHERE character_id = $1 AND kind = $2 AND slot_index = $3`,
		s.CharacterID, string(s.Kind), s.Index, s.RecipeID, s.StartedAt, s.CompletesAt,
		string(s.Stage), s.Ready, s.Spoiled, s.Unlocked, string(s.PlotType), s.SuccessRate, s.SpoilSeed,
	)
	if err != nil {
		return repository.WrapInfra(opUpdateSlot, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %d", domain.ErrSlotNotFound, s.Kind, s.Index)
	}
	return nil
}

func (t *characterTx) GetItemQuantity(ctx context.Context, characterID, itemID string) (int64, error) {
	if err := t.lock(ctx, characterID); err != nil {
		return 0, err
	}
	var qty int64
	err := t.tx.QueryRow(ctx, `
		SELECT quantity FROM inventories WHERE character_id = $1 AND item_id = $2`,
		characterID, itemID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, repository.WrapInfra(opInventory, err)
	}
	return qty, nil
}

func (t *characterTx) AddItem(ctx context.Context, characterID, itemID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidInput, quantity)
	}
	if err := t.lock(ctx, characterID); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO inventories (character_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (character_id, item_id)
		DO UPDATE SET quantity = inventories.quantity + EXCLUDED.quantity`,
		characterID, itemID, quantity)
	if err != nil {
		return repository.WrapInfra(opAddItem, err)
	}
	return nil
}

func (t *characterTx) RemoveItem(ctx context.Context, characterID, itemID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidInput, quantity)
	}
	if err := t.lock(ctx, characterID); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE inventories SET quantity = quantity - $3
		WHERE character_id = $1 AND item_id = $2 AND quantity >= $3`,
		characterID, itemID, quantity)
	if err != nil {
		return repository.WrapInfra(opRemoveItem, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s, need %d", domain.ErrInsufficientQuantity, itemID, quantity)
	}
	return nil
}

func (t *characterTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return domain.ErrTxClosed
		}
		return repository.WrapInfra(opCommit, err)
	}
	return nil
}

func (t *characterTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

var _ repository.CharacterTx = (*characterTx)(nil)
