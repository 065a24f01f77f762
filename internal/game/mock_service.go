package game

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/session"
)

// MockService is a mock implementation of Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCharacter(ctx context.Context, userID, name string, root domain.SpiritualRoot) *CreateResult {
	return m.Called(ctx, userID, name, root).Get(0).(*CreateResult)
}

func (m *MockService) Login(ctx context.Context, userID, characterID string) *session.LoginResult {
	return m.Called(ctx, userID, characterID).Get(0).(*session.LoginResult)
}

func (m *MockService) Logout(ctx context.Context, userID string) *session.LogoutResult {
	return m.Called(ctx, userID).Get(0).(*session.LogoutResult)
}

func (m *MockService) ListSessions(ctx context.Context) *SessionsResult {
	return m.Called(ctx).Get(0).(*SessionsResult)
}

func (m *MockService) AdvanceTick(ctx context.Context, userID string) *session.TickResult {
	return m.Called(ctx, userID).Get(0).(*session.TickResult)
}

func (m *MockService) AttemptBreakthrough(ctx context.Context, userID string) *cultivation.BreakthroughResult {
	return m.Called(ctx, userID).Get(0).(*cultivation.BreakthroughResult)
}

func (m *MockService) GetCultivationStatus(ctx context.Context, userID string) *StatusResult {
	return m.Called(ctx, userID).Get(0).(*StatusResult)
}

func (m *MockService) SetCultivationFocus(ctx context.Context, userID string, focus domain.CultivationFocus) *cultivation.FocusResult {
	return m.Called(ctx, userID, focus).Get(0).(*cultivation.FocusResult)
}

func (m *MockService) DailySignIn(ctx context.Context, userID string) *luck.SignInResult {
	return m.Called(ctx, userID).Get(0).(*luck.SignInResult)
}

func (m *MockService) UseLuckPill(ctx context.Context, userID string) *luck.SignInResult {
	return m.Called(ctx, userID).Get(0).(*luck.SignInResult)
}

func (m *MockService) StartProduction(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int, recipeID string) *production.StartResult {
	return m.Called(ctx, userID, kind, slotIndex, recipeID).Get(0).(*production.StartResult)
}

func (m *MockService) CollectProduction(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int) *production.CollectResult {
	return m.Called(ctx, userID, kind, slotIndex).Get(0).(*production.CollectResult)
}

func (m *MockService) UnlockSlot(ctx context.Context, userID string, kind domain.ProductionKind, slotIndex int) *production.UnlockResult {
	return m.Called(ctx, userID, kind, slotIndex).Get(0).(*production.UnlockResult)
}

func (m *MockService) ListProduction(ctx context.Context, userID string, kind domain.ProductionKind) *production.SlotList {
	return m.Called(ctx, userID, kind).Get(0).(*production.SlotList)
}
