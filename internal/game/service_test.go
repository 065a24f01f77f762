package game

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/database/memory"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
	"github.com/osse101/IdleCultivation_Go/internal/session"
	"github.com/osse101/IdleCultivation_Go/internal/testing/randtest"
)

type fixture struct {
	store *memory.Store
	pub   *event.MockPublisher
	rng   *randtest.Scripted
	svc   *service
}

func newFixture(t *testing.T, repo repository.CharacterRepository) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		pub:   event.NewAcceptingPublisher(),
		rng:   randtest.NoEvents(),
	}
	if repo == nil {
		repo = f.store
	}

	luckEngine := luck.NewEngine(luck.DefaultConfig())
	cult := cultivation.NewService(repo, cultivation.NewEngine(cultivation.DefaultConfig(), luckEngine), f.rng, f.pub)
	luckSvc, err := luck.NewService(repo, luckEngine, f.rng, f.pub, "", time.UTC)
	require.NoError(t, err)
	prod := production.NewService(repo, f.store, production.NewEngine(production.DefaultConfig()), f.rng, f.pub)
	sessions := session.NewManager(session.DefaultConfig(), session.NewMemoryStore(), repo, cult, prod, f.pub)

	f.svc = NewService(repo, sessions, cult, luckSvc, prod, f.pub, f.rng).(*service)
	return f
}

func (f *fixture) create(t *testing.T, userID string) *domain.Character {
	t.Helper()
	res := f.svc.CreateCharacter(context.Background(), userID, "Lin Feng", domain.RootDual)
	require.True(t, res.Success, res.Message)
	return res.Character
}

func TestCreateCharacter(t *testing.T) {
	t.Run("creates character and slots", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.create(t, "user-1")

		assert.Equal(t, domain.RootDual, c.SpiritualRoot)
		assert.Equal(t, domain.DefaultLuck, c.Luck)
		assert.Equal(t, int64(domain.DefaultStartingGold), c.Gold)
		assert.Equal(t, domain.FocusHP, c.Focus)
		assert.Equal(t, 0, c.Realm)

		farm, err := f.store.ListSlots(context.Background(), c.ID, domain.KindFarm)
		require.NoError(t, err)
		assert.Len(t, farm, 12)
		alchemy, err := f.store.ListSlots(context.Background(), c.ID, domain.KindAlchemy)
		require.NoError(t, err)
		assert.Len(t, alchemy, 3)
		assert.Contains(t, f.pub.PublishedTypes(), event.CharacterCreated)
	})

	t.Run("rolls a root when none is given", func(t *testing.T) {
		f := newFixture(t, nil)
		// waste carries weight 20, so a roll of 20 lands on single
		f.rng.Ints = []int{20}
		res := f.svc.CreateCharacter(context.Background(), "user-1", "Lin", "")
		require.True(t, res.Success)
		assert.Equal(t, domain.RootSingle, res.Character.SpiritualRoot)
	})

	tests := []struct {
		name   string
		user   string
		charNm string
		root   domain.SpiritualRoot
		reason domain.ReasonCode
	}{
		{"name too short", "user-1", "L", domain.RootDual, domain.ReasonInvalidInput},
		{"name too long", "user-1", "Lin Feng the Everlasting Sword", domain.RootDual, domain.ReasonInvalidInput},
		{"blank name", "user-1", "   ", domain.RootDual, domain.ReasonInvalidInput},
		{"unknown root", "user-1", "Lin", domain.SpiritualRoot("GOLDEN"), domain.ReasonInvalidInput},
		{"missing user", "", "Lin", domain.RootDual, domain.ReasonInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			res := f.svc.CreateCharacter(context.Background(), tt.user, tt.charNm, tt.root)
			assert.True(t, res.Failed(tt.reason))
			assert.Nil(t, res.Character)
		})
	}

	t.Run("second character for a user", func(t *testing.T) {
		f := newFixture(t, nil)
		f.create(t, "user-1")
		res := f.svc.CreateCharacter(context.Background(), "user-1", "Other", domain.RootDual)
		assert.True(t, res.Failed(domain.ReasonCharacterExists))
	})
}

func TestOperations_WithoutCharacter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.True(t, f.svc.AttemptBreakthrough(ctx, "ghost").Failed(domain.ReasonCharacterNotFound))
	assert.True(t, f.svc.GetCultivationStatus(ctx, "ghost").Failed(domain.ReasonCharacterNotFound))
	assert.True(t, f.svc.DailySignIn(ctx, "ghost").Failed(domain.ReasonCharacterNotFound))
	assert.True(t, f.svc.StartProduction(ctx, "ghost", domain.KindFarm, 0, "spirit_herb_seed").Failed(domain.ReasonCharacterNotFound))
	assert.True(t, f.svc.CollectProduction(ctx, "ghost", domain.KindFarm, 0).Failed(domain.ReasonCharacterNotFound))
	assert.True(t, f.svc.Login(ctx, "ghost", "").Failed(domain.ReasonCharacterNotFound))
	assert.True(t, f.svc.Logout(ctx, "ghost").Failed(domain.ReasonNoSession))
	assert.True(t, f.svc.AdvanceTick(ctx, "ghost").Failed(domain.ReasonNotOnline))
}

func TestInputValidation(t *testing.T) {
	f := newFixture(t, nil)
	f.create(t, "user-1")
	ctx := context.Background()

	assert.True(t, f.svc.SetCultivationFocus(ctx, "user-1", "SPEED").Failed(domain.ReasonInvalidInput))
	assert.True(t, f.svc.StartProduction(ctx, "user-1", "forge", 0, "x").Failed(domain.ReasonInvalidInput))
	assert.True(t, f.svc.CollectProduction(ctx, "user-1", "forge", 0).Failed(domain.ReasonInvalidInput))
	assert.True(t, f.svc.UnlockSlot(ctx, "user-1", "forge", 0).Failed(domain.ReasonInvalidInput))
	assert.True(t, f.svc.ListProduction(ctx, "user-1", "forge").Failed(domain.ReasonInvalidInput))
}

func TestLogin_CharacterMustBelongToUser(t *testing.T) {
	f := newFixture(t, nil)
	c := f.create(t, "user-1")
	f.create(t, "user-2")
	ctx := context.Background()

	other := f.svc.Login(ctx, "user-2", c.ID)
	assert.True(t, other.Failed(domain.ReasonInvalidInput))

	own := f.svc.Login(ctx, "user-1", c.ID)
	require.True(t, own.Success, own.Message)
	assert.Equal(t, c.ID, own.Session.CharacterID)
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t, nil)
	c := f.create(t, "user-1")
	ctx := context.Background()

	login := f.svc.Login(ctx, "user-1", "")
	require.True(t, login.Success, login.Message)
	assert.Equal(t, 0, login.TicksCredited)

	sessions := f.svc.ListSessions(ctx)
	assert.Equal(t, 1, sessions.Count)
	assert.Equal(t, []string{"user-1"}, sessions.UserIDs)

	tick := f.svc.AdvanceTick(ctx, "user-1")
	assert.True(t, tick.Failed(domain.ReasonCooldown))
	assert.Positive(t, tick.CooldownSecondsRemaining)

	status := f.svc.GetCultivationStatus(ctx, "user-1")
	require.True(t, status.Success)
	assert.Equal(t, "Hp", status.FocusName)
	assert.Equal(t, "Dual", status.RootName)
	assert.Equal(t, c.Luck, status.Status.Luck)

	logout := f.svc.Logout(ctx, "user-1")
	assert.True(t, logout.Success)
	assert.Equal(t, 0, f.svc.ListSessions(ctx).Count)
}

func TestGameplayOperations(t *testing.T) {
	f := newFixture(t, nil)
	c := f.create(t, "user-1")
	ctx := context.Background()

	focus := f.svc.SetCultivationFocus(ctx, "user-1", domain.FocusMagicAttack)
	require.True(t, focus.Success)
	assert.Equal(t, domain.FocusMagicAttack, focus.Focus)

	bt := f.svc.AttemptBreakthrough(ctx, "user-1")
	assert.True(t, bt.Failed(domain.ReasonInsufficientExperience))

	first := f.svc.DailySignIn(ctx, "user-1")
	require.True(t, first.Success)
	assert.True(t, f.svc.DailySignIn(ctx, "user-1").Failed(domain.ReasonAlreadySignedIn))

	assert.True(t, f.svc.UseLuckPill(ctx, "user-1").Failed(domain.ReasonInsufficientResources))

	f.store.GrantItem(c.ID, "spirit_herb_seed", 1)
	start := f.svc.StartProduction(ctx, "user-1", domain.KindFarm, 0, "spirit_herb_seed")
	require.True(t, start.Success, start.Message)

	collect := f.svc.CollectProduction(ctx, "user-1", domain.KindFarm, 0)
	assert.True(t, collect.Failed(domain.ReasonNotReady))

	list := f.svc.ListProduction(ctx, "user-1", domain.KindFarm)
	require.True(t, list.Success)
	assert.Equal(t, domain.StageSprout, list.Slots[0].Stage)

	unlock := f.svc.UnlockSlot(ctx, "user-1", domain.KindFarm, 4)
	assert.True(t, unlock.Failed(domain.ReasonCaveLevelTooLow))
}

// brokenRepo fails every lookup with a storage error
type brokenRepo struct {
	repository.CharacterRepository
	mock.Mock
}

func (r *brokenRepo) GetCharacterByUserID(ctx context.Context, userID string) (*domain.Character, error) {
	args := r.Called(ctx, userID)
	return nil, args.Error(1)
}

func TestInfrastructureFailuresAreHidden(t *testing.T) {
	repo := &brokenRepo{}
	repo.On("GetCharacterByUserID", mock.Anything, "user-1").Return(nil, fmt.Errorf("dial tcp: connection refused"))
	f := newFixture(t, repo)

	res := f.svc.GetCultivationStatus(context.Background(), "user-1")
	assert.True(t, res.Failed(domain.ReasonInfrastructure))
	assert.Equal(t, MsgTemporarilyDown, res.Message)
	assert.NotContains(t, res.Message, "dial tcp")
	repo.AssertExpectations(t)
}

func TestFailure(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		err    error
		reason domain.ReasonCode
	}{
		{"not found", fmt.Errorf("%w: x", domain.ErrCharacterNotFound), domain.ReasonCharacterNotFound},
		{"exists", domain.ErrCharacterExists, domain.ReasonCharacterExists},
		{"invalid focus", domain.ErrInvalidFocus, domain.ReasonInvalidInput},
		{"infrastructure", repository.WrapInfra("op", fmt.Errorf("boom")), domain.ReasonInfrastructure},
		{"invariant", fmt.Errorf("%w: negative exp", domain.ErrInvariantViolation), domain.ReasonInternal},
		{"unknown", fmt.Errorf("boom"), domain.ReasonInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := failure(ctx, "op", tt.err)
			assert.True(t, out.Failed(tt.reason))
		})
	}
}
