package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

// OpenStore wires the configured SessionStore backend and returns it
// with a close function.
func OpenStore(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (SessionStore, func(), error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), func() {}, nil

	case "sqlite":
		store, err := NewSQLiteStore(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case "postgres":
		pool, err := OpenPool(ctx, PoolConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
			DialTimeout:     cfg.DialTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := HealthCheck(ctx, pool, cfg.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database health check: %w", err)
		}
		store, err := NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisStore(client, logger), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}
