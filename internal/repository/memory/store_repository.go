package memory

import (
	"context"

	"github.com/landmark-guide/internal/domain/repository"
	"github.com/patrickmn/go-cache"
)

type storeRepository struct {
	cache *cache.Cache
}

// NewStoreRepository returns a process-local store. Nothing survives a restart.
func NewStoreRepository() repository.KVStore {
	return &storeRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *storeRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := r.cache.Get(key)
	if !ok {
		return nil, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *storeRepository) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	r.cache.Set(key, stored, cache.NoExpiration)
	return nil
}

func (r *storeRepository) Remove(ctx context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}
