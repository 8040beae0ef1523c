package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, map[string]time.Duration{
		"properties": 30 * time.Minute,
		"images":     60 * time.Minute,
	}, "property-feed", zap.NewNop())

	return store, mr
}

func TestRedis_SetGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "properties", "all", []byte("snapshot"), 0))

	data, err := store.Get(ctx, "properties", "all")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), data)
}

func TestRedis_Get_Miss(t *testing.T) {
	store, _ := setupTestRedis(t)

	data, err := store.Get(context.Background(), "properties", "absent")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedis_DefaultTTLApplied(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "properties", "all", []byte("v"), 0))

	ttl, err := store.TTL(ctx, "properties", "all")
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)
}

func TestRedis_Expiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "properties", "k", []byte("v"), time.Second))

	data, err := store.Get(ctx, "properties", "k")
	require.NoError(t, err)
	assert.NotNil(t, data)

	mr.FastForward(2 * time.Second)

	data, err = store.Get(ctx, "properties", "k")
	require.NoError(t, err)
	assert.Nil(t, data, "expired value must read as not found")
}

func TestRedis_TTL_Missing(t *testing.T) {
	store, _ := setupTestRedis(t)

	ttl, err := store.TTL(context.Background(), "properties", "absent")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}

func TestRedis_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "images", "k", []byte("v"), 0))

	removed, err := store.Delete(ctx, "images", "k")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, "images", "k")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRedis_FlushIsNamespaceScoped(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "properties", "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "properties", "b", []byte("2"), 0))
	require.NoError(t, store.Set(ctx, "images", "c", []byte("3"), 0))

	require.NoError(t, store.Flush(ctx, "properties"))

	ok, err := store.Exists(ctx, "properties", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Exists(ctx, "images", "c")
	require.NoError(t, err)
	assert.True(t, ok, "flush must not touch other namespaces")
}

func TestRedis_StoreUnavailable(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "properties", "k")
	assert.Error(t, err, "store failures surface as CacheError for callers to degrade on")
}
