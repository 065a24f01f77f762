package session

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/concurrency"
	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// Cultivator credits cultivation ticks
type Cultivator interface {
	ApplyTicks(ctx context.Context, characterID string, ticks int, offline bool) (*cultivation.TickBatch, error)
	CreditOffline(ctx context.Context, characterID string, ticks int, at time.Time) (*cultivation.TickBatch, error)
}

// ProductionCatchUp re-derives production slots after an offline gap
type ProductionCatchUp interface {
	CatchUp(ctx context.Context, characterID string, now time.Time) (*production.CatchUpResult, error)
}

// LoginResult carries the offline rewards of a login
type LoginResult struct {
	domain.Outcome
	Session        *domain.Session           `json:"session,omitempty"`
	OfflineSeconds int64                     `json:"offline_seconds"`
	TicksCredited  int                       `json:"ticks_credited"`
	Offline        *cultivation.TickBatch    `json:"offline,omitempty"`
	Production     *production.CatchUpResult `json:"production,omitempty"`
	ForcedLogout   bool                      `json:"forced_logout"`
}

// LogoutResult reports a finished session
type LogoutResult struct {
	domain.Outcome
	DurationSeconds int64 `json:"duration_seconds"`
}

// TickResult is the outcome of one online tick request
type TickResult struct {
	domain.Outcome
	Batch                    *cultivation.TickBatch `json:"batch,omitempty"`
	CooldownSecondsRemaining int64                  `json:"cooldown_seconds_remaining,omitempty"`
	NextTickAt               *time.Time             `json:"next_tick_at,omitempty"`
}

// Manager owns the online session table and decides how much time-based
// reward each user is owed. Every mutation for a user runs under that
// user's lock.
type Manager struct {
	cfg         Config
	store       Store
	characters  repository.CharacterRepository
	cultivation Cultivator
	production  ProductionCatchUp
	publisher   event.Publisher
	locks       *concurrency.LockManager
	now         func() time.Time
}

// NewManager creates a session manager
func NewManager(
	cfg Config,
	store Store,
	characters repository.CharacterRepository,
	cultivator Cultivator,
	catchUp ProductionCatchUp,
	publisher event.Publisher,
) *Manager {
	return &Manager{
		cfg:         cfg,
		store:       store,
		characters:  characters,
		cultivation: cultivator,
		production:  catchUp,
		publisher:   publisher,
		locks:       concurrency.NewLockManager(),
		now:         time.Now,
	}
}

// OfflineCycles is the number of ticks owed for an offline gap
func (m *Manager) OfflineCycles(offline time.Duration) int {
	interval := m.cfg.TickInterval()
	if !m.cfg.OfflineCultivationEnabled || interval <= 0 || offline < interval {
		return 0
	}
	cycles := int64(offline / interval)
	if cycles > int64(m.cfg.MaxOfflineCycles) {
		return m.cfg.MaxOfflineCycles
	}
	return int(cycles)
}

// Login opens a session for the user's character, replacing any stale
// session, and credits offline catch-up. The offline batch and the new
// last_active commit together, so a failed login leaves nothing to replay.
func (m *Manager) Login(ctx context.Context, userID string) (*LoginResult, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	log := logger.FromContext(ctx)
	result := &LoginResult{}

	// A live session is logged out first: its online time since the last
	// tick is stamped into last_active and never counts as offline.
	if _, ok := m.store.Get(userID); ok {
		if _, err := m.logoutLocked(ctx, userID, LogoutReasonReplaced); err != nil {
			return nil, err
		}
		result.ForcedLogout = true
		log.Warn(LogMsgForcedLogout, "user_id", userID)
	}

	c, err := m.characters.GetCharacterByUserID(ctx, userID)
	if err != nil {
		return nil, repository.WrapInfra("load character", err)
	}

	now := m.now()
	offline := now.Sub(c.LastActive)
	if c.LastActive.IsZero() || offline < 0 {
		offline = 0
	}
	result.OfflineSeconds = int64(offline / time.Second)

	// slot state is derived from timestamps, so a retry after a later
	// failure re-derives the same result
	if m.production != nil {
		catchUp, err := m.production.CatchUp(ctx, c.ID, now)
		if err != nil {
			return nil, err
		}
		result.Production = catchUp
	}

	batch, err := m.cultivation.CreditOffline(ctx, c.ID, m.OfflineCycles(offline), now)
	if err != nil {
		return nil, err
	}
	if batch.Ticks > 0 {
		result.Offline = batch
		result.TicksCredited = batch.Ticks
	}

	s := domain.Session{
		UserID:              userID,
		CharacterID:         c.ID,
		LoginTime:           now,
		LastCultivationTick: now,
		LastActivity:        now,
		Online:              true,
	}
	if err := m.store.Create(s); err != nil {
		// the user lock makes this unreachable
		return nil, fmt.Errorf("%w: %w", domain.ErrInvariantViolation, err)
	}
	result.Session = &s

	if result.TicksCredited > 0 {
		result.Outcome = domain.Succeed(MsgLoggedIn, result.TicksCredited)
	} else {
		result.Outcome = domain.Succeed(MsgLoggedInFresh)
	}

	log.Info(LogMsgLogin, "user_id", userID, "character_id", c.ID, "offline_seconds", result.OfflineSeconds, "ticks", result.TicksCredited)
	if m.publisher != nil {
		payload := event.SessionLoginPayloadV1{
			UserID:         userID,
			CharacterID:    c.ID,
			OfflineSeconds: result.OfflineSeconds,
			TicksCredited:  result.TicksCredited,
			ForcedLogout:   result.ForcedLogout,
		}
		if result.Offline != nil {
			payload.ExpGained = result.Offline.ExpGained
		}
		if result.Production != nil {
			payload.SlotsReady = result.Production.Ready
		}
		m.publisher.PublishWithRetry(ctx, event.NewSessionLoginEvent(payload))
	}
	return result, nil
}

// Logout persists last_active and ends the session. A missing session is a
// NO_SESSION outcome, not an error.
func (m *Manager) Logout(ctx context.Context, userID string) (*LogoutResult, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()
	return m.logoutLocked(ctx, userID, LogoutReasonUser)
}

func (m *Manager) logoutLocked(ctx context.Context, userID, reason string) (*LogoutResult, error) {
	s, ok := m.store.Get(userID)
	if !ok {
		return &LogoutResult{Outcome: domain.Fail(domain.ReasonNoSession, MsgNoSession)}, nil
	}

	now := m.now()
	if err := m.characters.UpdateLastActive(ctx, s.CharacterID, now); err != nil {
		return nil, repository.WrapInfra("stamp last active", err)
	}
	m.store.Delete(userID)

	duration := now.Sub(s.LoginTime).Truncate(time.Second)
	logger.FromContext(ctx).Info(LogMsgLogout, "user_id", userID, "reason", reason, "duration", duration)
	m.publishLogout(ctx, s, reason, now)
	return &LogoutResult{
		Outcome:         domain.Succeed(MsgLoggedOut, duration),
		DurationSeconds: int64(duration / time.Second),
	}, nil
}

func (m *Manager) publishLogout(ctx context.Context, s domain.Session, reason string, at time.Time) {
	if m.publisher == nil {
		return
	}
	m.publisher.PublishWithRetry(ctx, event.NewSessionLogoutEvent(event.SessionLogoutPayloadV1{
		UserID:          s.UserID,
		CharacterID:     s.CharacterID,
		Reason:          reason,
		DurationSeconds: int64(at.Sub(s.LoginTime) / time.Second),
	}))
}

// Tick credits at most one tick per call, and only once a full interval has
// passed since the last credited tick.
func (m *Manager) Tick(ctx context.Context, userID string) (*TickResult, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	log := logger.FromContext(ctx)
	s, ok := m.store.Get(userID)
	if !ok {
		return &TickResult{Outcome: domain.Fail(domain.ReasonNotOnline, MsgNotOnline)}, nil
	}

	now := m.now()
	s.LastActivity = now
	interval := m.cfg.TickInterval()
	elapsed := now.Sub(s.LastCultivationTick)
	if elapsed < 0 {
		log.Warn(LogMsgClockSkew, "user_id", userID, "last_tick", s.LastCultivationTick)
	}
	if elapsed < interval {
		m.store.Update(s)
		next := s.LastCultivationTick.Add(interval)
		remaining := next.Sub(now)
		secs := int64(remaining / time.Second)
		if remaining%time.Second != 0 {
			secs++
		}
		return &TickResult{
			Outcome:                  domain.Fail(domain.ReasonCooldown, MsgCooldown, secs),
			CooldownSecondsRemaining: secs,
			NextTickAt:               &next,
		}, nil
	}

	batch, err := m.cultivation.ApplyTicks(ctx, s.CharacterID, 1, false)
	if err != nil {
		return nil, err
	}
	if batch.Ticks != 1 {
		return nil, fmt.Errorf("%w: online tick credited %d ticks", domain.ErrInvariantViolation, batch.Ticks)
	}

	s.LastCultivationTick = now
	m.store.Update(s)
	if err := m.characters.UpdateLastActive(ctx, s.CharacterID, now); err != nil {
		log.Warn(LogMsgLastActiveFailed, "user_id", userID, "error", err)
	}

	log.Debug(LogMsgTick, "user_id", userID, "exp_gained", batch.ExpGained)
	next := now.Add(interval)
	return &TickResult{
		Outcome:    domain.Succeed(MsgTickApplied, batch.ExpGained, batch.AttributeGained, batch.Attribute),
		Batch:      batch,
		NextTickAt: &next,
	}, nil
}

// Session returns the user's session when online
func (m *Manager) Session(userID string) (domain.Session, bool) {
	return m.store.Get(userID)
}

// Touch records activity so the idle reaper leaves the session alone
func (m *Manager) Touch(userID string) {
	unlock := m.locks.Lock(userID)
	defer unlock()
	if s, ok := m.store.Get(userID); ok {
		s.LastActivity = m.now()
		m.store.Update(s)
	}
}

// ListSessions returns every online session
func (m *Manager) ListSessions() []domain.Session {
	return m.store.List()
}

// OnlineCount returns the number of online sessions
func (m *Manager) OnlineCount() int {
	return m.store.Count()
}

// ReapIdle logs out sessions with no activity within the idle timeout
func (m *Manager) ReapIdle(ctx context.Context) (int, error) {
	timeout := m.cfg.IdleTimeout()
	if timeout <= 0 {
		return 0, nil
	}
	cutoff := m.now().Add(-timeout)

	reaped := 0
	var firstErr error
	for _, s := range m.store.List() {
		if !s.LastActivity.Before(cutoff) {
			continue
		}
		if err := m.reapOne(ctx, s.UserID, cutoff); err != nil {
			logger.FromContext(ctx).Error(LogMsgReapFailed, "user_id", s.UserID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		reaped++
	}
	if reaped > 0 {
		logger.FromContext(ctx).Info(LogMsgReaped, "count", reaped)
	}
	return reaped, firstErr
}

func (m *Manager) reapOne(ctx context.Context, userID string, cutoff time.Time) error {
	unlock := m.locks.Lock(userID)
	defer unlock()
	// re-check under the lock; the user may have acted since List
	s, ok := m.store.Get(userID)
	if !ok || !s.LastActivity.Before(cutoff) {
		return nil
	}
	_, err := m.logoutLocked(ctx, userID, LogoutReasonIdle)
	return err
}

// Drain logs out every session, persisting last_active for each
func (m *Manager) Drain(ctx context.Context) error {
	var firstErr error
	for _, s := range m.store.List() {
		if err := ctx.Err(); err != nil {
			return err
		}
		unlock := m.locks.Lock(s.UserID)
		_, err := m.logoutLocked(ctx, s.UserID, LogoutReasonShutdown)
		unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	logger.FromContext(ctx).Info(LogMsgDrained, "remaining", m.store.Count())
	return firstErr
}

// ReapJob adapts ReapIdle to the worker pool
type ReapJob struct {
	Manager *Manager
}

// Process implements worker.Job
func (j *ReapJob) Process(ctx context.Context) error {
	_, err := j.Manager.ReapIdle(ctx)
	return err
}
