package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osse101/IdleCultivation_Go/internal/bootstrap"
	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/handler"
	"github.com/osse101/IdleCultivation_Go/internal/server"
)

// shutdownTimeout bounds the whole graceful shutdown sequence
const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}

	code := 0
	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		code = 1
	}
	logFile.Close()
	os.Exit(code)
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameCfg, err := bootstrap.LoadGameConfig(cfg)
	if err != nil {
		return err
	}

	storage, err := bootstrap.InitializeStorage(ctx, cfg)
	if err != nil {
		return err
	}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		storage.Pool.Close()
		return err
	}

	services, err := bootstrap.BuildServices(cfg, gameCfg, storage, publisher, prometheus.DefaultRegisterer)
	if err != nil {
		storage.Pool.Close()
		return err
	}
	if err := bootstrap.RegisterEventHandlers(bus, services.EventLog); err != nil {
		storage.Pool.Close()
		return err
	}

	workerPool, sched, err := bootstrap.StartBackgroundJobs(cfg, gameCfg, storage, services)
	if err != nil {
		storage.Pool.Close()
		return err
	}

	handler.InitValidator()
	var draining atomic.Bool
	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		Version:        cfg.Version,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Draining:       draining.Load,
		EventHistory:   services.EventLog,
	}, storage.Pool, services.Game)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Draining:           &draining,
		Server:             srv,
		Scheduler:          sched,
		WorkerPool:         workerPool,
		Sessions:           services.Sessions,
		ResilientPublisher: publisher,
		Storage:            storage.Pool,
	})

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
