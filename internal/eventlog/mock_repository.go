package eventlog

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// MockRepository fakes repository.GameLog
type MockRepository struct {
	mock.Mock
}

var _ repository.GameLog = (*MockRepository)(nil)

func (m *MockRepository) LogEvent(ctx context.Context, eventType string, characterID *string, payload, metadata map[string]interface{}) error {
	return m.Called(ctx, eventType, characterID, payload, metadata).Error(0)
}

func (m *MockRepository) GetEventsByCharacter(ctx context.Context, characterID string, limit int) ([]repository.GameLogEntry, error) {
	args := m.Called(ctx, characterID, limit)
	entries, _ := args.Get(0).([]repository.GameLogEntry)
	return entries, args.Error(1)
}

func (m *MockRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
