package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// parseCharacterUUID parses an id; ids that are not UUIDs cannot exist
func parseCharacterUUID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, id)
	}
	return u, nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// notFoundOr maps pgx.ErrNoRows to ErrCharacterNotFound and everything else
// to an infrastructure failure
func notFoundOr(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrCharacterNotFound, id)
	}
	return repository.WrapInfra(op, err)
}
