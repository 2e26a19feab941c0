package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/survey/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect parses the configured DSN, applies pool limits, opens the pool and
// verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// MustConnect is Connect for process startup: an unreachable database is an
// unrecoverable infrastructure failure, so it logs and exits.
func MustConnect(ctx context.Context, cfg config.DatabaseConfig) *pgxpool.Pool {
	pool, err := Connect(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database",
			"host", cfg.Host,
			"name", cfg.DatabaseName(),
			"error", err,
		)
		os.Exit(1)
	}

	slog.Info("connected to database", "name", cfg.DatabaseName())
	return pool
}
