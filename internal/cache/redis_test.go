package cache_test

import (
	"errors"
	"testing"
	"time"

	"taskify/backend/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedisCache(&cache.CacheConfig{
		Addr:        mr.Addr(),
		DialTimeout: time.Second,
	})
	t.Cleanup(func() { c.Close() })
	return c, mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRedisCacheSetGet(t *testing.T) {
	c, _ := newTestRedisCache(t)

	require.NoError(t, c.Set("key", payload{Name: "report", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get("key", &got))
	assert.Equal(t, "report", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := newTestRedisCache(t)

	var got payload
	err := c.Get("absent", &got)
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set("key", payload{Name: "ephemeral"}, time.Second))
	mr.FastForward(2 * time.Second)

	var got payload
	err := c.Get("key", &got)
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := newTestRedisCache(t)

	require.NoError(t, c.Set("key", payload{Name: "doomed"}, time.Minute))
	require.NoError(t, c.Delete("key"))

	exists, err := c.Exists("key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisCacheDeletePattern(t *testing.T) {
	c, _ := newTestRedisCache(t)

	require.NoError(t, c.Set("task:1", payload{}, time.Minute))
	require.NoError(t, c.Set("task:2", payload{}, time.Minute))
	require.NoError(t, c.Set("task_stats:a", payload{}, time.Minute))

	require.NoError(t, c.DeletePattern("task:*"))

	exists, err := c.Exists("task:1")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = c.Exists("task_stats:a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisCacheHealth(t *testing.T) {
	c, mr := newTestRedisCache(t)

	assert.NoError(t, c.Health())

	mr.Close()
	assert.True(t, errors.Is(c.Health(), cache.ErrCacheDown))
}
