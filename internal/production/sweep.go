package production

import (
	"context"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// StageRefreshJob refreshes the cached stage of every occupied slot.
// Reads never depend on the cache, so a missed run only leaves it stale.
type StageRefreshJob struct {
	Repo     repository.ProductionRepository
	Engine   *Engine
	PageSize int
	Now      func() time.Time
}

// Process implements worker.Job
func (j *StageRefreshJob) Process(ctx context.Context) error {
	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}
	pageSize := j.PageSize
	if pageSize <= 0 {
		pageSize = SweepPageSize
	}

	var (
		after   *domain.ProductionSlot
		scanned int
		changed int
	)
	for {
		page, err := j.Repo.ListOccupiedSlots(ctx, after, pageSize)
		if err != nil {
			logger.FromContext(ctx).Error(LogMsgSweepFailed, "error", err)
			return repository.WrapInfra("list occupied slots", err)
		}
		if len(page) == 0 {
			break
		}

		var updates []domain.SlotStageUpdate
		for i := range page {
			slot := &page[i]
			if !slot.Occupied() {
				continue
			}
			info := j.Engine.StageOf(slot, now)
			if info.Stage == slot.Stage && info.Ready == slot.Ready && info.Spoiled == slot.Spoiled {
				continue
			}
			updates = append(updates, domain.SlotStageUpdate{
				CharacterID: slot.CharacterID,
				Kind:        slot.Kind,
				Index:       slot.Index,
				StartedAt:   *slot.StartedAt,
				Stage:       info.Stage,
				Ready:       info.Ready,
				Spoiled:     info.Spoiled,
			})
		}
		if len(updates) > 0 {
			if err := j.Repo.UpdateSlotStages(ctx, updates); err != nil {
				logger.FromContext(ctx).Error(LogMsgSweepFailed, "error", err)
				return repository.WrapInfra("update slot stages", err)
			}
		}

		scanned += len(page)
		changed += len(updates)
		last := page[len(page)-1]
		after = &last
		if len(page) < pageSize {
			break
		}
	}

	logger.FromContext(ctx).Debug(LogMsgSweepCompleted, "scanned", scanned, "changed", changed)
	return nil
}
