package bootstrap

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/osse101/IdleCultivation_Go/internal/database"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/scheduler"
	"github.com/osse101/IdleCultivation_Go/internal/server"
	"github.com/osse101/IdleCultivation_Go/internal/session"
	"github.com/osse101/IdleCultivation_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
// Nil fields are skipped.
type ShutdownComponents struct {
	Draining           *atomic.Bool
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	Sessions           *session.Manager
	ResilientPublisher *event.ResilientPublisher
	Storage            database.Pool
}

// GracefulShutdown stops the process in order:
// 1. readiness starts failing and the HTTP server stops accepting requests
// 2. background jobs stop
// 3. every online session is logged out so last-active is flushed
// 4. the event publisher flushes pending events
// 5. storage is closed
//
// Errors are logged but do not stop the sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if c.Draining != nil {
		c.Draining.Store(true)
	}

	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	slog.Info(LogMsgStoppingBackgroundJobs)
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.WorkerPool != nil {
		c.WorkerPool.Stop()
	}

	if c.Sessions != nil {
		slog.Info(LogMsgDrainingSessions)
		if err := c.Sessions.Drain(ctx); err != nil {
			slog.Error(LogMsgSessionDrainFailed, "error", err)
		}
	}

	if c.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := c.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if c.Storage != nil {
		c.Storage.Close()
	}

	slog.Info(LogMsgServerStopped)
}
