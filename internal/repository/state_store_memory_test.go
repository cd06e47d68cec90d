package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "k"))
	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStateStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 15*time.Millisecond))

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	time.Sleep(30 * time.Millisecond)

	exists, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStateStore_Incr(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	n, err := store.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// The stored value reads back as the counter.
	got, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestMemoryStateStore_IncrRestartsAfterExpiry(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	_, err := store.Incr(ctx, "counter", 15*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	n, err := store.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
