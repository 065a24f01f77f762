package repository

import (
	"context"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// CharacterRepository handles character persistence
type CharacterRepository interface {
	// GetCharacter loads a character by id
	GetCharacter(ctx context.Context, characterID string) (*domain.Character, error)

	// GetCharacterByUserID loads the character owned by a user
	GetCharacterByUserID(ctx context.Context, userID string) (*domain.Character, error)

	// CreateCharacter inserts a character together with its production slots
	CreateCharacter(ctx context.Context, character *domain.Character, slots []domain.ProductionSlot) error

	// UpdateLastActive stamps the last-active time without touching gameplay fields
	UpdateLastActive(ctx context.Context, characterID string, at time.Time) error

	// Inventory lists the character's non-empty item stacks
	Inventory(ctx context.Context, characterID string) ([]domain.InventoryItem, error)

	// Transaction support
	BeginTx(ctx context.Context) (CharacterTx, error)
}

// CharacterTx is a unit of work over one character. GetCharacterForUpdate
// must be called first; it serializes writers of the same character across
// processes.
type CharacterTx interface {
	Tx
	InventoryTx

	// GetCharacterForUpdate retrieves the character with a row lock
	GetCharacterForUpdate(ctx context.Context, characterID string) (*domain.Character, error)

	// UpdateCharacter persists every mutable character field
	UpdateCharacter(ctx context.Context, character *domain.Character) error

	// UpdateLastActive stamps last_active as part of the transaction
	UpdateLastActive(ctx context.Context, characterID string, at time.Time) error

	// GetSlotsForUpdate locks and returns the slots of one kind ordered by index
	GetSlotsForUpdate(ctx context.Context, characterID string, kind domain.ProductionKind) ([]domain.ProductionSlot, error)

	// UpdateSlot persists one slot
	UpdateSlot(ctx context.Context, slot *domain.ProductionSlot) error
}
