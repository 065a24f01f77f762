package luck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/database/memory"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/testing/randtest"
)

const testCharacterID = "char-1"

func newTestService(t *testing.T, loc *time.Location, luck int) (*service, *memory.Store, *randtest.Scripted, *event.MockPublisher) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.CreateCharacter(context.Background(), &domain.Character{
		ID:     testCharacterID,
		UserID: "user-1",
		Name:   "Mei",
		Luck:   luck,
	}, nil))

	rng := &randtest.Scripted{}
	pub := event.NewAcceptingPublisher()
	svc, err := NewService(store, NewEngine(DefaultConfig()), rng, pub, DefaultSignInResetSpec, loc)
	require.NoError(t, err)
	return svc.(*service), store, rng, pub
}

func TestDailySignIn_OncePerDay(t *testing.T) {
	svc, store, rng, pub := newTestService(t, time.UTC, domain.DefaultLuck)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rng.Ints = []int{77}
	first, err := svc.DailySignIn(context.Background(), testCharacterID)
	require.NoError(t, err)
	require.True(t, first.Success, first.Message)
	assert.Equal(t, 50, first.OldScore)
	assert.Equal(t, 77, first.NewScore)
	assert.Equal(t, domain.TierFortune, first.Tier)
	require.NotNil(t, first.NextResetAt)
	assert.True(t, first.NextResetAt.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))

	// later the same day: refused, no re-roll
	now = now.Add(14 * time.Hour)
	rng.Ints = []int{3}
	second, err := svc.DailySignIn(context.Background(), testCharacterID)
	require.NoError(t, err)
	assert.True(t, second.Failed(domain.ReasonAlreadySignedIn))
	assert.Equal(t, 77, second.NewScore)
	assert.Equal(t, 77, second.OldScore)

	c, err := store.GetCharacter(context.Background(), testCharacterID)
	require.NoError(t, err)
	assert.Equal(t, 77, c.Luck)

	// after midnight a new roll is allowed
	now = time.Date(2025, 3, 2, 0, 0, 1, 0, time.UTC)
	third, err := svc.DailySignIn(context.Background(), testCharacterID)
	require.NoError(t, err)
	assert.True(t, third.Success)
	assert.Equal(t, 3, third.NewScore)

	assert.Equal(t, []event.Type{event.SignIn, event.SignIn}, pub.PublishedTypes())
}

func TestDailySignIn_DayBoundaryFollowsLocation(t *testing.T) {
	plus7 := time.FixedZone("UTC+7", 7*3600)
	signedAt := time.Date(2025, 3, 1, 16, 30, 0, 0, time.UTC) // 23:30 local
	check := time.Date(2025, 3, 1, 17, 5, 0, 0, time.UTC)     // 00:05 local next day

	tests := []struct {
		name    string
		loc     *time.Location
		allowed bool
	}{
		{"local midnight passed", plus7, true},
		{"same UTC day", time.UTC, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, rng, _ := newTestService(t, tt.loc, domain.DefaultLuck)
			rng.Ints = []int{60, 61}

			svc.now = func() time.Time { return signedAt }
			_, err := svc.DailySignIn(context.Background(), testCharacterID)
			require.NoError(t, err)

			svc.now = func() time.Time { return check }
			res, err := svc.DailySignIn(context.Background(), testCharacterID)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, res.Success)
		})
	}
}

func TestDailySignIn_UnknownCharacter(t *testing.T) {
	svc, _, _, _ := newTestService(t, time.UTC, domain.DefaultLuck)
	_, err := svc.DailySignIn(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
}

func TestNewService_RejectsBadResetSpec(t *testing.T) {
	_, err := NewService(memory.NewStore(), NewEngine(DefaultConfig()), &randtest.Scripted{}, nil, "not a cron", time.UTC)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestUseLuckPill(t *testing.T) {
	tests := []struct {
		name    string
		luck    int
		pills   int64
		reason  domain.ReasonCode
		newLuck int
		left    int64
	}{
		{"raises luck", 50, 2, domain.ReasonOK, 70, 1},
		{"clamps at max", 90, 1, domain.ReasonOK, 100, 0},
		{"no pill", 50, 0, domain.ReasonInsufficientResources, 50, 0},
		{"already at max keeps the pill", 100, 1, domain.ReasonInvalidInput, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _, _ := newTestService(t, time.UTC, tt.luck)
			if tt.pills > 0 {
				store.GrantItem(testCharacterID, "luck_pill", tt.pills)
			}

			res, err := svc.UseLuckPill(context.Background(), testCharacterID)
			require.NoError(t, err)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.newLuck, res.NewScore)

			items, err := store.Inventory(context.Background(), testCharacterID)
			require.NoError(t, err)
			var left int64
			for _, it := range items {
				if it.ItemID == "luck_pill" {
					left = it.Quantity
				}
			}
			assert.Equal(t, tt.left, left)
		})
	}
}
