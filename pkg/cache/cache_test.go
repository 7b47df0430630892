package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInMemoryLRUCacheSetGet(t *testing.T) {
	c, err := NewInMemoryLRUCache[string]()
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("a", "value", 10*time.Second)
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "value", got)
}

func TestInMemoryLRUCacheDelete(t *testing.T) {
	c, err := NewInMemoryLRUCache[int]()
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	c.Set("a", 1, 10*time.Second)
	c.Delete("a")

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestInMemoryLRUCacheTTL(t *testing.T) {
	c, err := NewInMemoryLRUCache[int]()
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	c.Set("a", 1, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, 1*time.Second, 10*time.Millisecond)
}

func TestInMemoryLRUCacheRange(t *testing.T) {
	c, err := NewInMemoryLRUCache[int]()
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	c.Set("a", 1, 10*time.Second)
	c.Set("b", 2, 10*time.Second)

	seen := map[string]int{}
	c.Range(func(key string, value int) bool {
		seen[key] = value
		return true
	})
	require.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
}

func TestInMemoryLRUCacheStopIsIdempotent(t *testing.T) {
	c, err := NewInMemoryLRUCache[int]()
	require.NoError(t, err)

	c.Stop()
	c.Stop()
}
