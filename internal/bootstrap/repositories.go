package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/database"
	"github.com/osse101/IdleCultivation_Go/internal/database/memory"
	"github.com/osse101/IdleCultivation_Go/internal/database/postgres"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

// Storage holds the repository implementations selected by STORAGE_DRIVER
// together with the pool that readiness probes ping.
type Storage struct {
	Characters repository.CharacterRepository
	Production repository.ProductionRepository
	GameLog    repository.GameLog
	Pool       database.Pool
}

// InitializeStorage connects to PostgreSQL and applies migrations, or builds
// the in-process store when the memory driver is selected.
func InitializeStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		slog.Info(LogMsgStorageInitialized, "driver", cfg.StorageDriver)
		return &Storage{
			Characters: store,
			Production: store,
			GameLog:    memory.NewGameLog(),
			Pool:       store,
		}, nil
	}

	dbPool, err := database.NewPool(ctx, cfg.GetDBConnString(), database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		ApplicationName: cfg.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDatabase, err)
	}

	if err := database.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedRunMigrations, err)
	}

	slog.Info(LogMsgStorageInitialized, "driver", cfg.StorageDriver)
	return &Storage{
		Characters: postgres.NewCharacterRepository(dbPool),
		Production: postgres.NewProductionRepository(dbPool),
		GameLog:    postgres.NewGameLogRepository(dbPool),
		Pool:       dbPool,
	}, nil
}
