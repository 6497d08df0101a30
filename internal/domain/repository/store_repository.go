package repository

import (
	"context"
)

// KVStore is the persisted storage the engine needs: most recent write wins,
// no transactions.
type KVStore interface {
	// Get returns nil, nil when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	// Remove is a no-op for absent keys
	Remove(ctx context.Context, key string) error
}
