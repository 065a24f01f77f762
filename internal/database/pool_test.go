package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/IdleCultivation_Go/internal/testing/leaktest"
)

var testDBConnString string

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()
	if !testing.Short() {
		testDBConnString, terminate = setupContainer(context.Background())
	}

	code := m.Run()

	if terminate != nil {
		terminate()
	}
	os.Exit(code)
}

func setupContainer(ctx context.Context) (connStr string, terminate func()) {
	terminate = func() {}
	// testcontainers panics when Docker is missing
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
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
		return "", terminate
	}
	terminate = func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}

	connStr, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		return "", terminate
	}
	return connStr, terminate
}

func requireDB(t *testing.T, opts PoolOptions) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}
	pool, err := NewPool(context.Background(), testDBConnString, opts)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestNewPool_RejectsBadConnString(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://%zz", PoolOptions{})
	assert.ErrorContains(t, err, ErrMsgFailedToParseConnString)
}

func TestNewPool_FailsFastWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewPool(ctx, "postgres://x:y@127.0.0.1:1/z?sslmode=disable&connect_timeout=1", PoolOptions{})
	assert.ErrorContains(t, err, ErrMsgFailedToPingDatabase)
}

func TestNewPool_SessionSettings(t *testing.T) {
	pool := requireDB(t, PoolOptions{MaxConns: 2, ApplicationName: "idle-cultivation-test"})
	ctx := context.Background()

	var tz, app string
	require.NoError(t, pool.QueryRow(ctx, "SHOW timezone").Scan(&tz))
	require.NoError(t, pool.QueryRow(ctx, "SHOW application_name").Scan(&app))

	assert.Equal(t, "UTC", tz)
	assert.Equal(t, "idle-cultivation-test", app)
	assert.Equal(t, int32(2), pool.Config().MaxConns)
	assert.Equal(t, int32(2), pool.Config().MinConns)
}

func TestNewPool_Defaults(t *testing.T) {
	pool := requireDB(t, PoolOptions{})
	assert.Equal(t, int32(DefaultMaxConnections), pool.Config().MaxConns)
}

func TestPool_MaxConnsEnforced(t *testing.T) {
	const maxConns = 3
	pool := requireDB(t, PoolOptions{MaxConns: maxConns})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conns := make([]*pgxpool.Conn, 0, maxConns)
	for i := 0; i < maxConns; i++ {
		conn, err := pool.Acquire(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	assert.Equal(t, int32(maxConns), pool.Stat().AcquiredConns())

	shortCtx, shortCancel := context.WithTimeout(ctx, 100*time.Millisecond)
	_, err := pool.Acquire(shortCtx)
	shortCancel()
	assert.Error(t, err, "pool is exhausted")

	conns[0].Release()
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	conn.Release()

	for _, c := range conns[1:] {
		c.Release()
	}
	assert.Equal(t, int32(0), pool.Stat().AcquiredConns())
}

func TestPool_ConcurrentAccess(t *testing.T) {
	pool := requireDB(t, PoolOptions{MaxConns: 10})
	checker := leaktest.NewGoroutineChecker(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var got int
			if err := pool.QueryRow(context.Background(), "SELECT $1::int", id).Scan(&got); err != nil {
				t.Errorf("worker %d: %v", id, err)
				return
			}
			if got != id {
				t.Errorf("worker %d read %d", id, got)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(0), pool.Stat().AcquiredConns())
	checker.Check(2)
}

// TestMigrate applies the embedded migrations twice; the second run is a no-op
func TestMigrate(t *testing.T) {
	pool := requireDB(t, PoolOptions{MaxConns: 5})
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool))

	for _, table := range []string{"characters", "inventories", "production_slots", "game_events"} {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}
