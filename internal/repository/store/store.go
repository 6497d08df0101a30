// Package store opens the configured state backend.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/landmark-guide/internal/config"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/repository/memory"
	"github.com/landmark-guide/internal/repository/postgres"
	redisRepo "github.com/landmark-guide/internal/repository/redis"
	"github.com/landmark-guide/internal/repository/sqlite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open returns the store for cfg.Store.Backend and a func releasing it.
// redisClient is only used by the redis backend and may be nil otherwise.
func Open(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (repository.KVStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case "memory":
		logger.Warn("Using in-memory store, state is lost on restart")
		return memory.NewStoreRepository(), noop, nil

	case "sqlite":
		db, err := sqlite.New(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStoreRepository(db), db.Close, nil

	case "redis":
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis store backend requires a redis connection")
		}
		return redisRepo.NewStoreRepository(redisClient, cfg.Store.KeyPrefix, logger), noop, nil

	case "postgres":
		db, err := postgres.New(&cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
		return postgres.NewStoreRepository(db), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
