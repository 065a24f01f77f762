package eventlog

import (
	"context"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// CleanupJob enforces the game log retention window. It is scheduled on
// EVENT_LOG_CLEANUP_CRON and runs on the worker pool.
type CleanupJob struct {
	service       Service
	retentionDays int
}

func NewCleanupJob(service Service, retentionDays int) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &CleanupJob{service: service, retentionDays: retentionDays}
}

func (j *CleanupJob) Name() string { return CleanupJobName }

func (j *CleanupJob) Process(ctx context.Context) error {
	began := time.Now()
	deleted, err := j.service.CleanupOldEvents(ctx, j.retentionDays)

	log := logger.FromContext(ctx).With(
		LogFieldRetentionDays, j.retentionDays,
		LogFieldDuration, time.Since(began))
	if err != nil {
		log.Error(LogMsgCleanupFailed, LogFieldError, err)
		return err
	}
	log.Info(LogMsgCleanupFinished, LogFieldDeleted, deleted)
	return nil
}
