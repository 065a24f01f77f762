package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		// Check for common "closed" errors to avoid noise
		if err.Error() != domain.ErrMsgTxClosed {
			logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
		}
	}
}

// passthroughErrors are domain conditions storage reports that are not faults
var passthroughErrors = []error{
	domain.ErrCharacterNotFound,
	domain.ErrCharacterExists,
	domain.ErrSlotNotFound,
	domain.ErrInsufficientQuantity,
	domain.ErrInsufficientFunds,
}

// WrapInfra tags a storage error as an infrastructure failure unless it is
// one of the domain conditions storage is allowed to report.
func WrapInfra(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthroughErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, domain.ErrInfrastructure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrInfrastructure, op, err)
}
