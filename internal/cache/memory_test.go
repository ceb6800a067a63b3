package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemoryCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(Expiry{Absolute: 15 * time.Minute, Sliding: 5 * time.Minute})
	c.now = clock.now
	return c, clock
}

func TestMemoryCache_SlidingExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	clock.advance(4 * time.Minute)
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// the hit above pushed expiry to 9m after set
	clock.advance(4 * time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.True(t, ok)

	clock.advance(6 * time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_AbsoluteDeadline(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	for i := 0; i < 3; i++ {
		clock.advance(4 * time.Minute)
		_, ok, _ := c.Get(ctx, "k")
		require.True(t, ok)
	}

	// 12m elapsed; touches keep it alive only until the 15m deadline
	clock.advance(3*time.Minute + time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, "companies:a", []byte("1")))
	require.NoError(t, c.Set(ctx, "companies:b", []byte("2")))
	require.NoError(t, c.Set(ctx, "reports:x", []byte("3")))

	require.NoError(t, c.DeletePrefix(ctx, "companies:"))

	_, ok, _ := c.Get(ctx, "companies:a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "reports:x")
	assert.True(t, ok)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()
	logger := zap.NewNop()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, err := Fetch(ctx, c, logger, "list", load)
	require.NoError(t, err)
	second, err := Fetch(ctx, c, logger, "list", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	t.Run("nil cache always loads", func(t *testing.T) {
		_, err := Fetch[[]string](ctx, nil, logger, "list", load)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}
