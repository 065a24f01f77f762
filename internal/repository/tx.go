package repository

import (
	"context"
)

// Tx defines the interface for transactional operations
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// InventoryTx is the inventory/currency collaborator inside a transaction
type InventoryTx interface {
	// GetItemQuantity returns 0 for items the character does not hold
	GetItemQuantity(ctx context.Context, characterID, itemID string) (int64, error)

	// AddItem credits quantity of an item
	AddItem(ctx context.Context, characterID, itemID string, quantity int64) error

	// RemoveItem debits quantity, failing with domain.ErrInsufficientQuantity
	RemoveItem(ctx context.Context, characterID, itemID string, quantity int64) error
}
