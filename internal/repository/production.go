package repository

import (
	"context"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// ProductionRepository handles read-side production slot access
type ProductionRepository interface {
	// ListSlots returns the slots of one kind ordered by index
	ListSlots(ctx context.Context, characterID string, kind domain.ProductionKind) ([]domain.ProductionSlot, error)

	// ListOccupiedSlots pages through occupied slots whose cached stage is not
	// terminal, ordered by (character_id, kind, slot_index) after the cursor.
	ListOccupiedSlots(ctx context.Context, after *domain.ProductionSlot, limit int) ([]domain.ProductionSlot, error)

	// UpdateSlotStages writes cached stage fields only
	UpdateSlotStages(ctx context.Context, updates []domain.SlotStageUpdate) error
}
