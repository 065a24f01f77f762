package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/worker"
)

const (
	LogMsgJobSkipped   = "Scheduled job skipped, worker queue full"
	LogMsgCronSchedule = "Cron job scheduled"
)

// Scheduler manages scheduled jobs
type Scheduler struct {
	workerPool *worker.Pool
	loc        *time.Location
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a new scheduler. Cron expressions are evaluated in UTC
// unless WithLocation is used.
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		loc:        time.UTC,
		quit:       make(chan struct{}),
	}
}

// WithLocation sets the time zone used for cron expressions
func (s *Scheduler) WithLocation(loc *time.Location) *Scheduler {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Schedule registers a job to run at a fixed interval
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.dispatch(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// ScheduleCron registers a job on a standard cron expression, including
// descriptors such as "@daily" and "@every 1m".
func (s *Scheduler) ScheduleCron(spec string, job worker.Job) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	logger.FromContext(context.Background()).Info(LogMsgCronSchedule,
		"spec", spec, "next", schedule.Next(time.Now().In(s.loc)))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			next := schedule.Next(time.Now().In(s.loc))
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				s.dispatch(job)
			case <-s.quit:
				timer.Stop()
				return
			}
		}
	}()
	return nil
}

// dispatch never blocks: a run that finds the queue full is skipped and
// the next tick tries again.
func (s *Scheduler) dispatch(job worker.Job) {
	if !s.workerPool.TryEnqueue(job) {
		logger.FromContext(context.Background()).Warn(LogMsgJobSkipped, "job", fmt.Sprintf("%T", job))
	}
}

// Stop stops all scheduled jobs. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
}
