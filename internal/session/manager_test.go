package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/database/memory"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
	"github.com/osse101/IdleCultivation_Go/internal/testing/leaktest"
	"github.com/osse101/IdleCultivation_Go/internal/testing/randtest"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	pub     *event.MockPublisher
	manager *Manager
	now     time.Time
	mu      sync.Mutex
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T, cfg Config, lastActive time.Time) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		pub:   event.NewAcceptingPublisher(),
		now:   t0,
	}
	require.NoError(t, f.store.CreateCharacter(context.Background(), &domain.Character{
		ID:            "char-1",
		UserID:        "user-1",
		Name:          "Lin",
		Luck:          domain.DefaultLuck,
		SpiritualRoot: domain.RootSingle,
		Focus:         domain.FocusHP,
		CaveLevel:     1,
		AlchemyLevel:  1,
		LastActive:    lastActive,
	}, nil))

	f.wire(cfg, f.store, nil)
	return f
}

// wire builds the manager over repo, which usually wraps f.store
func (f *fixture) wire(cfg Config, repo repository.CharacterRepository, catchUp ProductionCatchUp) {
	cultCfg := cultivation.DefaultConfig()
	cultCfg.Variance = 0
	luckCfg := luck.DefaultConfig()
	luckCfg.MultiplierMin, luckCfg.MultiplierMax = 0, 2
	cult := cultivation.NewService(repo, cultivation.NewEngine(cultCfg, luck.NewEngine(luckCfg)), randtest.NoEvents(), f.pub)

	f.manager = NewManager(cfg, NewMemoryStore(), repo, cult, catchUp, f.pub)
	f.manager.now = f.clock
}

// flakyRepo fails the next failStamps last-active writes, inside or outside
// a transaction
type flakyRepo struct {
	*memory.Store
	failStamps int
}

func (r *flakyRepo) stampFails() bool {
	if r.failStamps > 0 {
		r.failStamps--
		return true
	}
	return false
}

func (r *flakyRepo) UpdateLastActive(ctx context.Context, characterID string, at time.Time) error {
	if r.stampFails() {
		return errConnReset
	}
	return r.Store.UpdateLastActive(ctx, characterID, at)
}

func (r *flakyRepo) BeginTx(ctx context.Context) (repository.CharacterTx, error) {
	tx, err := r.Store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &flakyTx{CharacterTx: tx, repo: r}, nil
}

type flakyTx struct {
	repository.CharacterTx
	repo *flakyRepo
}

func (t *flakyTx) UpdateLastActive(ctx context.Context, characterID string, at time.Time) error {
	if t.repo.stampFails() {
		return errConnReset
	}
	return t.CharacterTx.UpdateLastActive(ctx, characterID, at)
}

// failingCatchUp fails its first fails calls
type failingCatchUp struct {
	fails int
	calls int
}

func (c *failingCatchUp) CatchUp(ctx context.Context, characterID string, now time.Time) (*production.CatchUpResult, error) {
	c.calls++
	if c.calls <= c.fails {
		return nil, errConnReset
	}
	return &production.CatchUpResult{}, nil
}

var errConnReset = fmt.Errorf("%w: connection reset", domain.ErrInfrastructure)

func (f *fixture) character(t *testing.T) *domain.Character {
	t.Helper()
	c, err := f.store.GetCharacter(context.Background(), "char-1")
	require.NoError(t, err)
	return c
}

func TestOfflineCycles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickIntervalSeconds = 300
	cfg.MaxOfflineCycles = 288
	m := NewManager(cfg, NewMemoryStore(), nil, nil, nil, nil)

	tests := []struct {
		name    string
		offline time.Duration
		want    int
	}{
		{"nothing", 0, 0},
		{"just under one interval", 299 * time.Second, 0},
		{"exactly one interval", 300 * time.Second, 1},
		{"partial cycles are dropped", 1001 * time.Second, 3},
		{"capped", 30 * 24 * time.Hour, 288},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.OfflineCycles(tt.offline))
		})
	}

	cfg.OfflineCultivationEnabled = false
	disabled := NewManager(cfg, NewMemoryStore(), nil, nil, nil, nil)
	assert.Equal(t, 0, disabled.OfflineCycles(24*time.Hour))
}

func TestLogin_CreditsBoundedOfflineCultivation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickIntervalSeconds = 300
	cfg.MaxOfflineCycles = 288
	f := newFixture(t, cfg, t0.Add(-30*24*time.Hour))

	res, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 288, res.TicksCredited)
	assert.Equal(t, int64(30*24*3600), res.OfflineSeconds)
	assert.False(t, res.ForcedLogout)
	require.NotNil(t, res.Offline)
	assert.Equal(t, int64(2880), res.Offline.ExpGained)

	c := f.character(t)
	assert.Equal(t, int64(2880), c.Experience)
	assert.True(t, c.LastActive.Equal(t0))

	s, ok := f.manager.Session("user-1")
	require.True(t, ok)
	assert.True(t, s.Online)
	assert.True(t, s.LastCultivationTick.Equal(t0))
	assert.Contains(t, f.pub.PublishedTypes(), event.SessionLogin)
}

func TestLogin_ShortAbsenceCreditsNothing(t *testing.T) {
	f := newFixture(t, DefaultConfig(), t0.Add(-59*time.Second))

	res, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.TicksCredited)
	assert.Nil(t, res.Offline)
	assert.Equal(t, int64(0), f.character(t).Experience)
}

func TestLogin_ReplacesStaleSessionWithoutDoubleCredit(t *testing.T) {
	tests := []struct {
		name   string
		online time.Duration
	}{
		{"within one interval", 30 * time.Second},
		{"many intervals online", 10 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, DefaultConfig(), t0.Add(-10*time.Minute))

			first, err := f.manager.Login(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, 10, first.TicksCredited)

			// the reaper never runs here, so the first session is still live
			f.advance(tt.online)
			second, err := f.manager.Login(context.Background(), "user-1")
			require.NoError(t, err)
			assert.True(t, second.ForcedLogout)
			assert.Equal(t, 0, second.TicksCredited)
			assert.Equal(t, int64(0), second.OfflineSeconds)
			assert.Equal(t, 1, f.manager.OnlineCount())

			c := f.character(t)
			assert.Equal(t, int64(100), c.Experience)
			assert.True(t, c.LastActive.Equal(t0.Add(tt.online)))
			assert.Contains(t, f.pub.PublishedTypes(), event.SessionLogout)
		})
	}
}

func TestLogin_FailedForcedLogoutKeepsSession(t *testing.T) {
	f := newFixture(t, DefaultConfig(), t0)
	_, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)

	repo := &flakyRepo{Store: f.store, failStamps: 1}
	sessions := f.manager.store
	f.wire(DefaultConfig(), repo, nil)
	f.manager.store = sessions

	f.advance(time.Hour)
	_, err = f.manager.Login(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, 1, f.manager.OnlineCount(), "stale session stays until it is logged out")

	res, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, res.ForcedLogout)
	assert.Equal(t, 0, res.TicksCredited)
}

func TestLogin_FailedLoginCreditsNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickIntervalSeconds = 300
	cfg.MaxOfflineCycles = 288

	tests := []struct {
		name string
		wire func(f *fixture)
	}{
		{
			name: "last active write fails",
			wire: func(f *fixture) { f.wire(cfg, &flakyRepo{Store: f.store, failStamps: 1}, nil) },
		},
		{
			name: "production catch-up fails",
			wire: func(f *fixture) { f.wire(cfg, f.store, &failingCatchUp{fails: 1}) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, cfg, t0.Add(-30*24*time.Hour))
			tt.wire(f)

			_, err := f.manager.Login(context.Background(), "user-1")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInfrastructure)
			assert.Equal(t, 0, f.manager.OnlineCount())

			c := f.character(t)
			assert.Equal(t, int64(0), c.Experience, "failed login must not keep offline ticks")
			assert.True(t, c.LastActive.Equal(t0.Add(-30*24*time.Hour)))

			res, err := f.manager.Login(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, 288, res.TicksCredited)
			assert.Equal(t, int64(2880), f.character(t).Experience)

			// a further login right away owes nothing
			again, err := f.manager.Login(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, 0, again.TicksCredited)
			assert.Equal(t, int64(2880), f.character(t).Experience)
		})
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t, DefaultConfig(), t0)

	_, err := f.manager.Login(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
	assert.Equal(t, 0, f.manager.OnlineCount())
}

func TestTick(t *testing.T) {
	t.Run("not online", func(t *testing.T) {
		f := newFixture(t, DefaultConfig(), t0)
		res, err := f.manager.Tick(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, res.Failed(domain.ReasonNotOnline))
	})

	t.Run("cooldown reports remaining seconds rounded up", func(t *testing.T) {
		f := newFixture(t, DefaultConfig(), t0)
		_, err := f.manager.Login(context.Background(), "user-1")
		require.NoError(t, err)

		f.advance(20*time.Second + 500*time.Millisecond)
		res, err := f.manager.Tick(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, res.Failed(domain.ReasonCooldown))
		assert.Equal(t, int64(40), res.CooldownSecondsRemaining)
		assert.Equal(t, int64(0), f.character(t).Experience)
	})

	t.Run("credits one tick after a full interval", func(t *testing.T) {
		f := newFixture(t, DefaultConfig(), t0)
		_, err := f.manager.Login(context.Background(), "user-1")
		require.NoError(t, err)

		// a long gap still credits a single tick
		f.advance(10 * time.Minute)
		res, err := f.manager.Tick(context.Background(), "user-1")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Batch.Ticks)
		assert.Equal(t, int64(10), f.character(t).Experience)

		s, _ := f.manager.Session("user-1")
		assert.True(t, s.LastCultivationTick.Equal(t0.Add(10*time.Minute)))
		assert.True(t, f.character(t).LastActive.Equal(t0.Add(10*time.Minute)))

		again, err := f.manager.Tick(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, again.Failed(domain.ReasonCooldown))
	})

	t.Run("clock moving backwards is a cooldown", func(t *testing.T) {
		f := newFixture(t, DefaultConfig(), t0)
		_, err := f.manager.Login(context.Background(), "user-1")
		require.NoError(t, err)

		f.advance(-5 * time.Second)
		res, err := f.manager.Tick(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, res.Failed(domain.ReasonCooldown))
		assert.Equal(t, int64(65), res.CooldownSecondsRemaining)
	})
}

func TestTick_ConcurrentRequestsCreditOnce(t *testing.T) {
	f := newFixture(t, DefaultConfig(), t0)
	_, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)
	f.advance(time.Minute)

	const callers = 8
	results := make([]*TickResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.manager.Tick(context.Background(), "user-1")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	succeeded, cooled := 0, 0
	for _, r := range results {
		require.NotNil(t, r)
		switch {
		case r.Success:
			succeeded++
		case r.Failed(domain.ReasonCooldown):
			cooled++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, cooled)
	assert.Equal(t, int64(10), f.character(t).Experience)
}

func TestLogout(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		f := newFixture(t, DefaultConfig(), t0)
		res, err := f.manager.Logout(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, res.Failed(domain.ReasonNoSession))
	})

	t.Run("stamps last active and ends the session", func(t *testing.T) {
		f := newFixture(t, DefaultConfig(), t0)
		_, err := f.manager.Login(context.Background(), "user-1")
		require.NoError(t, err)

		f.advance(90 * time.Second)
		res, err := f.manager.Logout(context.Background(), "user-1")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, int64(90), res.DurationSeconds)
		assert.True(t, f.character(t).LastActive.Equal(t0.Add(90*time.Second)))
		assert.Equal(t, 0, f.manager.OnlineCount())
		assert.Contains(t, f.pub.PublishedTypes(), event.SessionLogout)

		// the 90s after logout is not re-credited by the next login
		f.advance(30 * time.Second)
		again, err := f.manager.Login(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 0, again.TicksCredited)
	})
}

func TestReapIdle(t *testing.T) {
	f := newFixture(t, DefaultConfig(), t0)
	_, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)

	f.advance(29 * time.Minute)
	n, err := f.manager.ReapIdle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.manager.Touch("user-1")
	f.advance(29 * time.Minute)
	n, err = f.manager.ReapIdle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "touch resets the idle clock")

	f.advance(2 * time.Minute)
	job := &ReapJob{Manager: f.manager}
	require.NoError(t, job.Process(context.Background()))
	assert.Equal(t, 0, f.manager.OnlineCount())
	assert.True(t, f.character(t).LastActive.Equal(f.clock()))
}

func TestDrain(t *testing.T) {
	f := newFixture(t, DefaultConfig(), t0)
	_, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)

	f.advance(time.Minute)
	require.NoError(t, f.manager.Drain(context.Background()))
	assert.Empty(t, f.manager.ListSessions())
	assert.True(t, f.character(t).LastActive.Equal(t0.Add(time.Minute)))
}

func TestTick_NoGoroutineLeak(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)
	f := newFixture(t, DefaultConfig(), t0)
	_, err := f.manager.Login(context.Background(), "user-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.manager.Tick(context.Background(), "user-1")
		}()
	}
	wg.Wait()
	checker.Check(0)
}
