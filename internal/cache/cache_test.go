package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	c := NewMemoryCache(DefaultConfig(), zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", 0))

	value, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, "v", value)

	require.NoError(t, c.Delete(ctx, "k"))
	_, found = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCacheZeroTTLUsesDefault(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	// ttl=0 falls back to the configured default instead of expiring at once.
	require.NoError(t, c.Set(ctx, "k", "v", 0))
	time.Sleep(5 * time.Millisecond)

	value, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, "v", value)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	require.NoError(t, c.Set(ctx, "history:1:0", 1, 0))
	require.NoError(t, c.Set(ctx, "history:1:20", 2, 0))
	require.NoError(t, c.Set(ctx, "history:2:0", 3, 0))

	require.NoError(t, c.DeletePattern(ctx, KeyUserHistory(1)))

	_, found := c.Get(ctx, "history:1:20")
	assert.False(t, found)
	_, found = c.Get(ctx, "history:2:0")
	assert.True(t, found)
}

func TestMemoryCacheIncrement(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	n, err := c.Increment(ctx, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Increment(ctx, "counter", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, matchPattern("history:1:20", "history:1:*"))
	assert.False(t, matchPattern("history:2:20", "history:1:*"))
	assert.True(t, matchPattern("anything", "*"))
	assert.True(t, matchPattern("foo.bar", "*.bar"))
	assert.False(t, matchPattern("foo.baz", "*.bar"))
	assert.True(t, matchPattern("exact", "exact"))
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "user:7", KeyUser(7))
	assert.Equal(t, "history:7:*", KeyUserHistory(7))
	assert.Equal(t, "ranking:all", KeyRanking)
	assert.Equal(t, "badges:all", KeyBadges)
}
