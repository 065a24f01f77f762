package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/osse101/IdleCultivation_Go/migrations"
)

// Migrate applies every pending embedded migration
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLoadMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToApplyMigrations, err)
	}
	for _, r := range results {
		slog.Default().Info(LogMsgMigrationApplied, "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
