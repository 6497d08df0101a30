package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/landmark-guide/internal/domain/repository"
	"go.uber.org/zap"
)

type storeRepository struct {
	db *DB
}

func NewStoreRepository(db *DB) repository.KVStore {
	return &storeRepository{db: db}
}

func (r *storeRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (r *storeRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		r.db.logger.Error("Failed to write key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *storeRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
