package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/osse101/IdleCultivation_Go/internal/database"
	"github.com/osse101/IdleCultivation_Go/migrations"
)

const (
	migrateUp     = "up"
	migrateDown   = "down"
	migrateStatus = "status"
)

type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

func (c *MigrateCommand) Description() string {
	return "Run database migrations (up|down|status)"
}

func (c *MigrateCommand) Run(args []string) error {
	action := migrateUp
	if len(args) > 0 {
		action = args[0]
	}
	switch action {
	case migrateUp, migrateDown, migrateStatus:
	default:
		return fmt.Errorf("unknown migrate action %q: expected up, down or status", action)
	}

	PrintHeader("Migrations: " + action)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if action == migrateUp {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		PrintSuccess("Database is up to date")
		return nil
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	if action == migrateDown {
		res, err := provider.Down(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			PrintWarning("Nothing to roll back")
			return nil
		}
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		PrintSuccess("Rolled back version %d", res.Source.Version)
		return nil
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	for _, s := range statuses {
		if s.State == goose.StateApplied {
			PrintSuccess("%05d %s (applied %s)", s.Source.Version, s.Source.Path, s.AppliedAt.Format("2006-01-02 15:04:05"))
		} else {
			PrintWarning("%05d %s (pending)", s.Source.Version, s.Source.Path)
		}
	}
	return nil
}
