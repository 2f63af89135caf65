package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisCache(client, logger), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "quiz:definition:1", cachedValue{Name: "go", Count: 3}, time.Minute))
	assert.True(t, mr.Exists("quiz:definition:1"))

	var got cachedValue
	require.NoError(t, c.Get(ctx, "quiz:definition:1", &got))
	assert.Equal(t, cachedValue{Name: "go", Count: 3}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "quiz:definition:1", &got), ErrCacheMiss)
}

func TestRedisCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("quiz:definition:2", "{not json"))

	var got cachedValue
	assert.ErrorIs(t, c.Get(ctx, "quiz:definition:2", &got), ErrCacheMiss)
	assert.False(t, mr.Exists("quiz:definition:2"))
}

func TestRedisCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	for _, key := range []string{"quiz:definition:1", "quiz:definition:2", "activity:user-1"} {
		require.NoError(t, c.Set(ctx, key, cachedValue{Name: key}, time.Minute))
	}

	require.NoError(t, c.DeletePattern(ctx, "quiz:definition:*"))
	assert.False(t, mr.Exists("quiz:definition:1"))
	assert.False(t, mr.Exists("quiz:definition:2"))
	assert.True(t, mr.Exists("activity:user-1"))

	require.NoError(t, c.Delete(ctx, "activity:user-1"))
	assert.False(t, mr.Exists("activity:user-1"))
}
