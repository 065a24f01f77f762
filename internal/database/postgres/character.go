package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

const characterColumns = `
	id, user_id, name, experience, realm, spiritual_root, luck, gold, spirit_stone, focus,
	training_hp, training_physical_attack, training_magic_attack,
	training_physical_defense, training_magic_defense,
	cave_level, spirit_array_level, alchemy_level, alchemy_exp,
	last_active, last_sign_in_at, created_at, updated_at`

// CharacterRepository implements repository.CharacterRepository for PostgreSQL
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a new CharacterRepository
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var c domain.Character
	var root, focus string
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Experience, &c.Realm, &root, &c.Luck, &c.Gold, &c.SpiritStone, &focus,
		&c.Training.HP, &c.Training.PhysicalAttack, &c.Training.MagicAttack,
		&c.Training.PhysicalDefense, &c.Training.MagicDefense,
		&c.CaveLevel, &c.SpiritArrayLevel, &c.AlchemyLevel, &c.AlchemyExp,
		&c.LastActive, &c.LastSignInAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.SpiritualRoot = domain.SpiritualRoot(root)
	c.Focus = domain.CultivationFocus(focus)
	return &c, nil
}

// GetCharacter loads a character by id
func (r *CharacterRepository) GetCharacter(ctx context.Context, characterID string) (*domain.Character, error) {
	id, err := parseCharacterUUID(characterID)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`
	c, err := scanCharacter(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(opGetCharacter, characterID, err)
	}
	return c, nil
}

// GetCharacterByUserID loads the character owned by a user
func (r *CharacterRepository) GetCharacterByUserID(ctx context.Context, userID string) (*domain.Character, error) {
	uid, err := parseCharacterUUID(userID)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + characterColumns + ` FROM characters WHERE user_id = $1`
	c, err := scanCharacter(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		return nil, notFoundOr(opGetCharacter, "user "+userID, err)
	}
	return c, nil
}

// CreateCharacter inserts a character together with its production slots
func (r *CharacterRepository) CreateCharacter(ctx context.Context, c *domain.Character, slots []domain.ProductionSlot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return repository.WrapInfra(opBegin, err)
	}
	defer SafeRollback(ctx, tx)

	query := `
		INSERT INTO characters (
			id, user_id, name, experience, realm, spiritual_root, luck, gold, spirit_stone, focus,
			training_hp, training_physical_attack, training_magic_attack,
			training_physical_defense, training_magic_defense,
			cave_level, spirit_array_level, alchemy_level, alchemy_exp,
			last_active, last_sign_in_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING created_at, updated_at
	`
	lastActive := c.LastActive
	if lastActive.IsZero() {
		lastActive = time.Now()
	}
	err = tx.QueryRow(ctx, query,
		c.ID, c.UserID, c.Name, c.Experience, c.Realm, string(c.SpiritualRoot), c.Luck, c.Gold, c.SpiritStone, string(c.Focus),
		c.Training.HP, c.Training.PhysicalAttack, c.Training.MagicAttack,
		c.Training.PhysicalDefense, c.Training.MagicDefense,
		c.CaveLevel, c.SpiritArrayLevel, c.AlchemyLevel, c.AlchemyExp,
		lastActive, c.LastSignInAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgCodeUniqueViolation) {
			return fmt.Errorf("%w: user %s", domain.ErrCharacterExists, c.UserID)
		}
		return repository.WrapInfra(opCreateCharacter, err)
	}
	c.LastActive = lastActive

	if len(slots) > 0 {
		batch := &pgx.Batch{}
		for i := range slots {
			s := &slots[i]
			batch.Queue(`
				INSERT INTO production_slots (
					character_id, kind, slot_index, recipe_id, started_at, completes_at,
					stage, ready, spoiled, unlocked, plot_type, success_rate, spoil_seed
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				c.ID, string(s.Kind), s.Index, s.RecipeID, s.StartedAt, s.CompletesAt,
				string(s.Stage), s.Ready, s.Spoiled, s.Unlocked, string(s.PlotType), s.SuccessRate, s.SpoilSeed,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return repository.WrapInfra(opInsertSlots, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.WrapInfra(opCommit, err)
	}
	return nil
}

// UpdateLastActive stamps the last-active time without touching gameplay fields
func (r *CharacterRepository) UpdateLastActive(ctx context.Context, characterID string, at time.Time) error {
	id, err := parseCharacterUUID(characterID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE characters SET last_active = $2 WHERE id = $1`, id, at)
	if err != nil {
		return repository.WrapInfra(opUpdateLastActive, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, characterID)
	}
	return nil
}

// Inventory lists the character's non-empty item stacks ordered by item id
func (r *CharacterRepository) Inventory(ctx context.Context, characterID string) ([]domain.InventoryItem, error) {
	if _, err := r.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT item_id, quantity FROM inventories
		WHERE character_id = $1 AND quantity > 0
		ORDER BY item_id`, characterID)
	if err != nil {
		return nil, repository.WrapInfra(opInventory, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InventoryItem, error) {
		var it domain.InventoryItem
		err := row.Scan(&it.ItemID, &it.Quantity)
		return it, err
	})
	if err != nil {
		return nil, repository.WrapInfra(opInventory, err)
	}
	return items, nil
}

// BeginTx starts a character unit of work
func (r *CharacterRepository) BeginTx(ctx context.Context) (repository.CharacterTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, repository.WrapInfra(opBegin, err)
	}
	return &characterTx{tx: tx, locked: make(map[string]bool)}, nil
}

var _ repository.CharacterRepository = (*CharacterRepository)(nil)
