package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

func TestWrapInfra(t *testing.T) {
	assert.NoError(t, WrapInfra("load", nil))

	notFound := fmt.Errorf("%w: id=1", domain.ErrCharacterNotFound)
	assert.Same(t, notFound, WrapInfra("load", notFound), "domain conditions pass through untouched")

	raw := errors.New("connection refused")
	wrapped := WrapInfra("load character", raw)
	assert.ErrorIs(t, wrapped, domain.ErrInfrastructure)
	assert.ErrorIs(t, wrapped, raw)
	assert.Contains(t, wrapped.Error(), "load character")

	assert.Same(t, wrapped, WrapInfra("again", wrapped), "already tagged errors are not double wrapped")
}
