package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/eventlog"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/scheduler"
	"github.com/osse101/IdleCultivation_Go/internal/session"
	"github.com/osse101/IdleCultivation_Go/internal/worker"
)

// WorkerQueueSize bounds the number of background jobs waiting for a worker
const WorkerQueueSize = 64

// StartBackgroundJobs starts the worker pool and schedules the idle-session
// reaper, the production stage sweep and the game-log retention cleanup.
// On error everything started so far is stopped.
func StartBackgroundJobs(cfg *config.Config, gameCfg config.GameConfig, storage *Storage, services *Services) (*worker.Pool, *scheduler.Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	pool := worker.NewPool(cfg.WorkerCount, WorkerQueueSize)
	pool.Start()
	sched := scheduler.New(pool).WithLocation(loc)

	fail := func(name string, err error) (*worker.Pool, *scheduler.Scheduler, error) {
		sched.Stop()
		pool.Stop()
		return nil, nil, fmt.Errorf("%s %s: %w", ErrMsgFailedScheduleJob, name, err)
	}

	if err := sched.ScheduleCron(gameCfg.Session.ReapSchedule, &session.ReapJob{Manager: services.Sessions}); err != nil {
		return fail("session reaper", err)
	}

	if cfg.SweepInterval > 0 {
		sched.Schedule(cfg.SweepInterval, &production.StageRefreshJob{
			Repo:   storage.Production,
			Engine: services.ProductionEngine,
		})
	}

	cleanup := eventlog.NewCleanupJob(services.EventLog, cfg.EventLogRetentionDays)
	if err := sched.ScheduleCron(cfg.EventLogCleanupCron, cleanup); err != nil {
		return fail(cleanup.Name(), err)
	}

	slog.Info(LogMsgBackgroundJobsActive,
		"workers", cfg.WorkerCount,
		"reap_schedule", gameCfg.Session.ReapSchedule,
		"sweep_interval", cfg.SweepInterval,
		"cleanup_schedule", cfg.EventLogCleanupCron)

	return pool, sched, nil
}
