package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/IdleCultivation_Go/internal/database"
)

var (
	testPool *pgxpool.Pool
)

func TestMain(m *testing.M) {
	var terminate func()
	if !testing.Short() {
		testPool, terminate = setupDatabase(context.Background())
	}

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	if terminate != nil {
		terminate()
	}
	os.Exit(code)
}

// setupDatabase starts a postgres container and migrates it. Any failure
// leaves testPool nil so integration tests skip.
func setupDatabase(ctx context.Context) (*pgxpool.Pool, func()) {
	// testcontainers panics when Docker is missing
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupDatabase: %v\n", r)
		}
	}()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: Failed to start postgres container: %v\n", err)
		return nil, nil
	}
	terminate := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		return nil, terminate
	}

	pool, err := database.NewPool(ctx, connStr, database.PoolOptions{MaxConns: 10})
	if err != nil {
		fmt.Printf("WARNING: Failed to connect: %v\n", err)
		return nil, terminate
	}
	if err := database.Migrate(ctx, pool); err != nil {
		fmt.Printf("WARNING: Failed to migrate: %v\n", err)
		pool.Close()
		return nil, terminate
	}
	return pool, terminate
}

// requireDB skips integration tests when no database is available and
// empties every table otherwise
func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testPool == nil {
		t.Skip("Skipping integration test: database not available")
	}
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE game_events, production_slots, inventories, characters`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return testPool
}
