package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

func seed(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	recipe := "spirit_herb_seed"
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	slots := []domain.ProductionSlot{
		{CharacterID: "c1", Kind: domain.KindFarm, Index: 0, Unlocked: true},
		{CharacterID: "c1", Kind: domain.KindFarm, Index: 1, Unlocked: true, RecipeID: &recipe, StartedAt: &start, CompletesAt: &end},
		{CharacterID: "c1", Kind: domain.KindAlchemy, Index: 0, Unlocked: true},
	}
	require.NoError(t, s.CreateCharacter(context.Background(), &domain.Character{ID: "c1", UserID: "u1", Luck: 50}, slots))
	return s
}

func TestCreateCharacter_Duplicates(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	err := s.CreateCharacter(ctx, &domain.Character{ID: "c2", UserID: "u1"}, nil)
	assert.ErrorIs(t, err, domain.ErrCharacterExists)

	err = s.CreateCharacter(ctx, &domain.Character{ID: "c1", UserID: "u2"}, nil)
	assert.ErrorIs(t, err, domain.ErrCharacterExists)

	c, err := s.GetCharacterByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	_, err = s.GetCharacter(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
}

func TestGetCharacter_ReturnsCopies(t *testing.T) {
	s := seed(t)
	c, err := s.GetCharacter(context.Background(), "c1")
	require.NoError(t, err)
	c.Luck = 99

	again, err := s.GetCharacter(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 50, again.Luck)
}

func TestTx_CommitAppliesStagedWrites(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	s.GrantItem("c1", "spirit_herb_seed", 2)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	c, err := tx.GetCharacterForUpdate(ctx, "c1")
	require.NoError(t, err)
	c.Experience = 40
	require.NoError(t, tx.UpdateCharacter(ctx, c))
	require.NoError(t, tx.RemoveItem(ctx, "c1", "spirit_herb_seed", 2))
	require.NoError(t, tx.AddItem(ctx, "c1", "spirit_herb", 3))

	// nothing visible before commit
	before, _ := s.GetCharacter(ctx, "c1")
	assert.Equal(t, int64(0), before.Experience)

	require.NoError(t, tx.Commit(ctx))

	after, _ := s.GetCharacter(ctx, "c1")
	assert.Equal(t, int64(40), after.Experience)
	items, err := s.Inventory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []domain.InventoryItem{{ItemID: "spirit_herb", Quantity: 3}}, items)

	// closed tx: rollback is the silent no-op SafeRollback expects
	assert.ErrorIs(t, tx.Rollback(ctx), domain.ErrTxClosed)
	repository.SafeRollback(ctx, tx)
}

func TestTx_RollbackDiscards(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	c, err := tx.GetCharacterForUpdate(ctx, "c1")
	require.NoError(t, err)
	c.Gold = 1
	require.NoError(t, tx.UpdateCharacter(ctx, c))
	require.NoError(t, tx.Rollback(ctx))

	after, _ := s.GetCharacter(ctx, "c1")
	assert.Equal(t, int64(0), after.Gold)
}

func TestTx_CommitKeepsLastActive(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	stamp := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	c, err := tx.GetCharacterForUpdate(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, s.UpdateLastActive(ctx, "c1", stamp))
	require.NoError(t, tx.UpdateCharacter(ctx, c))
	require.NoError(t, tx.Commit(ctx))

	after, _ := s.GetCharacter(ctx, "c1")
	assert.True(t, after.LastActive.Equal(stamp))
}

func TestTx_Guards(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	t.Run("update without lock", func(t *testing.T) {
		tx, _ := s.BeginTx(ctx)
		defer repository.SafeRollback(ctx, tx)
		err := tx.UpdateCharacter(ctx, &domain.Character{ID: "c1"})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	})

	t.Run("remove more than owned", func(t *testing.T) {
		tx, _ := s.BeginTx(ctx)
		defer repository.SafeRollback(ctx, tx)
		err := tx.RemoveItem(ctx, "c1", "lingzhi", 1)
		assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	})

	t.Run("non positive quantity", func(t *testing.T) {
		tx, _ := s.BeginTx(ctx)
		defer repository.SafeRollback(ctx, tx)
		assert.ErrorIs(t, tx.AddItem(ctx, "c1", "lingzhi", 0), domain.ErrInvalidInput)
	})

	t.Run("unknown slot", func(t *testing.T) {
		tx, _ := s.BeginTx(ctx)
		defer repository.SafeRollback(ctx, tx)
		_, err := tx.GetSlotsForUpdate(ctx, "c1", domain.KindFarm)
		require.NoError(t, err)
		err = tx.UpdateSlot(ctx, &domain.ProductionSlot{CharacterID: "c1", Kind: domain.KindFarm, Index: 42})
		assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	})

	t.Run("cancelled begin", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.BeginTx(cctx)
		assert.ErrorIs(t, err, domain.ErrInfrastructure)
	})
}

func TestTx_RowLockSerializesWriters(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.BeginTx(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer repository.SafeRollback(ctx, tx)
			c, err := tx.GetCharacterForUpdate(ctx, "c1")
			if !assert.NoError(t, err) {
				return
			}
			c.Experience++
			assert.NoError(t, tx.UpdateCharacter(ctx, c))
			assert.NoError(t, tx.Commit(ctx))
		}()
	}
	wg.Wait()

	c, _ := s.GetCharacter(ctx, "c1")
	assert.Equal(t, int64(20), c.Experience)
}

func TestTx_LockWaitHonoursContext(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	holder, _ := s.BeginTx(ctx)
	_, err := holder.GetCharacterForUpdate(ctx, "c1")
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, holder)

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	waiter, _ := s.BeginTx(ctx)
	_, err = waiter.GetCharacterForUpdate(cctx, "c1")
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}

func TestTx_UpdateLastActive(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	stamp := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, tx.UpdateLastActive(ctx, "c1", stamp), domain.ErrInvariantViolation)
	c, err := tx.GetCharacterForUpdate(ctx, "c1")
	require.NoError(t, err)
	c.Experience = 40
	require.NoError(t, tx.UpdateCharacter(ctx, c))
	require.NoError(t, tx.UpdateLastActive(ctx, "c1", stamp))
	require.NoError(t, tx.Rollback(ctx))

	got, err := s.GetCharacter(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, got.LastActive.IsZero(), "rolled back stamp is discarded")
	assert.Zero(t, got.Experience)

	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	c, err = tx.GetCharacterForUpdate(ctx, "c1")
	require.NoError(t, err)
	c.Experience = 40
	require.NoError(t, tx.UpdateCharacter(ctx, c))
	require.NoError(t, tx.UpdateLastActive(ctx, "c1", stamp))
	require.NoError(t, tx.Commit(ctx))

	got, err = s.GetCharacter(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, got.LastActive.Equal(stamp))
	assert.Equal(t, int64(40), got.Experience)
}

func TestListOccupiedSlots(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	page, err := s.ListOccupiedSlots(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, page[0].Index)

	next, err := s.ListOccupiedSlots(ctx, &page[0], 10)
	require.NoError(t, err)
	assert.Empty(t, next)

	require.NoError(t, s.UpdateSlotStages(ctx, []domain.SlotStageUpdate{
		{CharacterID: "c1", Kind: domain.KindFarm, Index: 1, StartedAt: *page[0].StartedAt, Stage: domain.StageSpoiled, Spoiled: true},
		{CharacterID: "c1", Kind: domain.KindFarm, Index: 0, Stage: domain.StageReady, Ready: true},
	}))
	page, err = s.ListOccupiedSlots(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page, "spoiled slots are terminal")

	farm, err := s.ListSlots(ctx, "c1", domain.KindFarm)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotStage(""), farm[0].Stage, "empty slots ignore stage updates")
}

func TestUpdateSlotStages_SkipsReplantedSlot(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	page, err := s.ListOccupiedSlots(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	readStart := *page[0].StartedAt

	// the slot is collected and replanted after the sweep read it
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	slots, err := tx.GetSlotsForUpdate(ctx, "c1", domain.KindFarm)
	require.NoError(t, err)
	replanted := readStart.Add(2 * time.Hour)
	done := replanted.Add(time.Hour)
	slots[1].StartedAt = &replanted
	slots[1].CompletesAt = &done
	slots[1].Stage = domain.StageSprout
	require.NoError(t, tx.UpdateSlot(ctx, &slots[1]))
	require.NoError(t, tx.Commit(ctx))

	require.NoError(t, s.UpdateSlotStages(ctx, []domain.SlotStageUpdate{
		{CharacterID: "c1", Kind: domain.KindFarm, Index: 1, StartedAt: readStart, Stage: domain.StageReady, Ready: true},
	}))

	farm, err := s.ListSlots(ctx, "c1", domain.KindFarm)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSprout, farm[1].Stage)
	assert.False(t, farm[1].Ready)

	require.NoError(t, s.UpdateSlotStages(ctx, []domain.SlotStageUpdate{
		{CharacterID: "c1", Kind: domain.KindFarm, Index: 1, StartedAt: replanted, Stage: domain.StageReady, Ready: true},
	}))
	farm, err = s.ListSlots(ctx, "c1", domain.KindFarm)
	require.NoError(t, err)
	assert.Equal(t, domain.StageReady, farm[1].Stage)
}

func TestGameLog(t *testing.T) {
	g := NewGameLog()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	clock := now.AddDate(0, 0, -3)
	g.now = func() time.Time { return clock }

	charID := "c1"
	for i := 0; i < 3; i++ {
		require.NoError(t, g.LogEvent(ctx, "cultivation.tick", &charID, map[string]interface{}{"n": i}, nil))
		clock = clock.Add(24 * time.Hour)
	}
	require.NoError(t, g.LogEvent(ctx, "session.login", nil, nil, nil))

	events, err := g.GetEventsByCharacter(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].Payload["n"])
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))

	clock = now
	removed, err := g.CleanupOldEvents(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	left, err := g.GetEventsByCharacter(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestStore_PoolContract(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)

	s.Close()
}
