package redis

import (
	"context"
	"fmt"

	"github.com/landmark-guide/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type storeRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewStoreRepository stores engine state as plain Redis strings under
// "<prefix>:<key>", without expiry.
func NewStoreRepository(client *redis.Client, prefix string, logger *zap.Logger) repository.KVStore {
	return &storeRepository{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *storeRepository) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *storeRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get state", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return val, nil
}

func (r *storeRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Failed to set state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set error: %w", err)
	}
	r.logger.Debug("State stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (r *storeRepository) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Failed to delete state", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}
