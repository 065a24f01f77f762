package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is what readiness probes and shutdown need from a storage backend
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// PoolOptions tunes the pgx pool
type PoolOptions struct {
	MaxConns        int
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
	// ApplicationName shows up in pg_stat_activity
	ApplicationName string
}

// NewPool connects and pings. Every connection runs in UTC so that
// sign-in and spoil timestamps compare the same on every server.
func NewPool(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = DefaultMaxConnections
	}
	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	config.MaxConns = int32(maxConns)
	config.MinConns = min(DefaultMinConnections, config.MaxConns)
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	config.ConnConfig.RuntimeParams[RuntimeParamTimeZone] = "UTC"
	if opts.ApplicationName != "" {
		config.ConnConfig.RuntimeParams[RuntimeParamAppName] = opts.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	slog.Default().Info(LogMsgSuccessfullyConnectedToDatabase,
		"host", config.ConnConfig.Host, "database", config.ConnConfig.Database, "max_conns", config.MaxConns)
	return pool, nil
}
