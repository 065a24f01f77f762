package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitForDBCommand struct{}

func (c *WaitForDBCommand) Name() string {
	return "wait-for-db"
}

func (c *WaitForDBCommand) Description() string {
	return "Wait for database to be ready (with retries)"
}

// Run accepts an optional retry count as its only argument.
func (c *WaitForDBCommand) Run(args []string) error {
	PrintHeader("Waiting for database...")

	maxRetries := defaultDBRetries
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid retry count %q", args[0])
		}
		maxRetries = n
	}

	PrintInfo("Up to %d attempts, %s apart", maxRetries, defaultRetryInterval)
	return waitForDB(context.Background(), dbURL(), maxRetries, defaultRetryInterval)
}

func waitForDB(ctx context.Context, url string, maxRetries int, interval time.Duration) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = pingDB(ctx, url); err == nil {
			PrintSuccess("Database is ready")
			return nil
		}

		fmt.Printf("Database not ready (%d/%d): %v\n", i+1, maxRetries, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("database failed to become ready after %d attempts: %w", maxRetries, err)
}

func pingDB(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()
	return pool.Ping(ctx)
}
