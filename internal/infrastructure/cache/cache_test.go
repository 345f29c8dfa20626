package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/infrastructure/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestManager(t *testing.T, maxSize int) (*CacheManager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)}
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: time.Hour})
	m.now = clock.now
	t.Cleanup(func() { m.Close() })
	return m, clock
}

func TestManagerGetSet(t *testing.T) {
	m, _ := newTestManager(t, 10)
	ctx := context.Background()

	_, ok := m.Get(ctx, "scrape", "https://example.com/a")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "scrape", "https://example.com/a", "payload"))
	v, ok := m.Get(ctx, "scrape", "https://example.com/a")
	assert.True(t, ok)
	assert.Equal(t, "payload", v)

	// 命名空間互相隔離
	_, ok = m.Get(ctx, "other", "https://example.com/a")
	assert.False(t, ok)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestManagerExpiry(t *testing.T) {
	m, clock := newTestManager(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "ns", "k", "v"))
	clock.t = clock.t.Add(2 * time.Hour)

	_, ok := m.Get(ctx, "ns", "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.GetStats().Size)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m, clock := newTestManager(t, 2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "ns", "a", "1"))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, m.Set(ctx, "ns", "b", "2"))

	// a 被訪問過，b 沒有，因此淘汰 b
	_, ok := m.Get(ctx, "ns", "a")
	require.True(t, ok)

	require.NoError(t, m.Set(ctx, "ns", "c", "3"))

	_, ok = m.Get(ctx, "ns", "b")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "ns", "a")
	assert.True(t, ok)
	_, ok = m.Get(ctx, "ns", "c")
	assert.True(t, ok)
	assert.Equal(t, int64(1), m.GetStats().Evictions)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m, _ := newTestManager(t, 1)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "ns", "a", "1"))
	require.NoError(t, m.Set(ctx, "ns", "a", "2"))

	v, ok := m.Get(ctx, "ns", "a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, int64(0), m.GetStats().Evictions)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(ctx, config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 1, TTL: time.Minute})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.IsType(t, &CacheManager{}, c)
	require.NoError(t, c.Close())

	_, err = New(ctx, config.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.Error(t, err)
}

func TestRedisKey(t *testing.T) {
	key := redisKey("scrape", "https://example.com/a")
	assert.True(t, strings.HasPrefix(key, "meal-planner:scrape:"))
	assert.Len(t, strings.TrimPrefix(key, "meal-planner:scrape:"), 64)
	assert.NotEqual(t, key, redisKey("scrape", "https://example.com/b"))
}
