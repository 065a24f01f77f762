package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

const slotColumns = `
	character_id, kind, slot_index, recipe_id, started_at, completes_at,
	stage, ready, spoiled, unlocked, plot_type, success_rate, spoil_seed`

// ProductionRepository implements repository.ProductionRepository for PostgreSQL
type ProductionRepository struct {
	db *pgxpool.Pool
}

// NewProductionRepository creates a new ProductionRepository
func NewProductionRepository(db *pgxpool.Pool) *ProductionRepository {
	return &ProductionRepository{db: db}
}

func collectSlots(rows pgx.Rows) ([]domain.ProductionSlot, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProductionSlot, error) {
		var s domain.ProductionSlot
		var kind, stage, plot string
		err := row.Scan(
			&s.CharacterID, &kind, &s.Index, &s.RecipeID, &s.StartedAt, &s.CompletesAt,
			&stage, &s.Ready, &s.Spoiled, &s.Unlocked, &plot, &s.SuccessRate, &s.SpoilSeed,
		)
		s.Kind = domain.ProductionKind(kind)
		s.Stage = domain.SlotStage(stage)
		s.PlotType = domain.PlotType(plot)
		return s, err
	})
}

// ListSlots returns the slots of one kind ordered by index
func (r *ProductionRepository) ListSlots(ctx context.Context, characterID string, kind domain.ProductionKind) ([]domain.ProductionSlot, error) {
	if _, err := parseCharacterUUID(characterID); err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+` FROM production_slots
		WHERE character_id = $1 AND kind = $2
		ORDER BY slot_index`, characterID, string(kind))
	if err != nil {
		return nil, repository.WrapInfra(opListSlots, err)
	}
	slots, err := collectSlots(rows)
	if err != nil {
		return nil, repository.WrapInfra(opListSlots, err)
	}
	return slots, nil
}

// ListOccupiedSlots pages through slots whose cached stage can still change
func (r *ProductionRepository) ListOccupiedSlots(ctx context.Context, after *domain.ProductionSlot, limit int) ([]domain.ProductionSlot, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + slotColumns + ` FROM production_slots
		WHERE recipe_id IS NOT NULL AND started_at IS NOT NULL AND completes_at IS NOT NULL
		  AND NOT spoiled
		  AND NOT (ready AND kind = 'alchemy')`)

	args := []interface{}{}
	if after != nil {
		sb.WriteString(` AND (character_id, kind, slot_index) > ($1::uuid, $2, $3)`)
		args = append(args, after.CharacterID, string(after.Kind), after.Index)
	}
	sb.WriteString(` ORDER BY character_id, kind, slot_index`)
	if limit > 0 {
		args = append(args, limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, repository.WrapInfra(opListSlots, err)
	}
	slots, err := collectSlots(rows)
	if err != nil {
		return nil, repository.WrapInfra(opListSlots, err)
	}
	return slots, nil
}

// UpdateSlotStages writes cached stage fields only, skipping slots that were
// emptied or replanted since they were read
func (r *ProductionRepository) UpdateSlotStages(ctx context.Context, updates []domain.SlotStageUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE production_slots SET stage = $4, ready = $5, spoiled = $6
			WHERE character_id = $1 AND kind = $2 AND slot_index = $3
				AND recipe_id IS NOT NULL AND started_at = $7`,
			u.CharacterID, string(u.Kind), u.Index, string(u.Stage), u.Ready, u.Spoiled, u.StartedAt)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return repository.WrapInfra(opUpdateSlotStages, err)
	}
	return nil
}

var _ repository.ProductionRepository = (*ProductionRepository)(nil)
