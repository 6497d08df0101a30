package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStoreRepository()

	val, err := store.Get(ctx, "statistics")
	require.NoError(t, err)
	assert.Nil(t, val)

	payload := []byte(`{"total_visited_count":2}`)
	require.NoError(t, store.Set(ctx, "statistics", payload))

	// caller mutation must not leak into the store
	payload[0] = 'x'
	val, err = store.Get(ctx, "statistics")
	require.NoError(t, err)
	assert.Equal(t, `{"total_visited_count":2}`, string(val))

	val[0] = 'y'
	again, _ := store.Get(ctx, "statistics")
	assert.Equal(t, byte('{'), again[0])

	require.NoError(t, store.Set(ctx, "statistics", []byte(`{}`)))
	val, _ = store.Get(ctx, "statistics")
	assert.Equal(t, `{}`, string(val), "most recent write wins")

	require.NoError(t, store.Remove(ctx, "statistics"))
	require.NoError(t, store.Remove(ctx, "statistics"))
	val, err = store.Get(ctx, "statistics")
	require.NoError(t, err)
	assert.Nil(t, val)
}
