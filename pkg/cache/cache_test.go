package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("k", 42, 0)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheInvalidatePrefix(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("stream:1", "a", 0)
	c.Set("stream:2", "b", 0)
	c.Set("profile:x", "c", 0)

	c.Invalidate("stream:")

	_, ok := c.Get("stream:1")
	assert.False(t, ok)
	_, ok = c.Get("stream:2")
	assert.False(t, ok)
	_, ok = c.Get("profile:x")
	assert.True(t, ok)
}

func TestGetOrSetLoadsOnce(t *testing.T) {
	c := NewCacheWithFallback(time.Minute)
	defer c.Stop()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet(context.Background(), "k", loader, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "loaded", v)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c := NewCacheWithFallback(time.Minute)
	defer c.Stop()

	boom := errors.New("boom")
	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, boom
	}

	for i := 0; i < 2; i++ {
		_, err := c.GetOrSet(context.Background(), "k", loader, time.Minute)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
}
