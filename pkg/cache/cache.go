// Package cache provides the process-wide in-memory cache behind the
// read-through visibility cache. Contents are ephemeral: the cache starts
// empty at process start and is discarded at process stop.
package cache

import (
	"sync"
	"time"

	"github.com/Yiling-J/theine-go"
)

const defaultMaxCacheSize = 10000

// InMemoryCache is a generic TTL cache.
type InMemoryCache[T any] interface {

	// Get returns the live value for the given key, if present.
	Get(key string) (T, bool)

	// Set stores the value under key for the given TTL.
	Set(key string, value T, ttl time.Duration)

	// Delete removes the key, if present.
	Delete(key string)

	// Range calls f for every live entry until f returns false.
	Range(f func(key string, value T) bool)

	// Stop cleans up residual resources before returning.
	Stop()
}

// InMemoryLRUCache implements InMemoryCache on top of theine, bounded by
// a maximum element count.
type InMemoryLRUCache[T any] struct {
	client      *theine.Cache[string, T]
	maxElements int64
	closeOnce   *sync.Once
}

var _ InMemoryCache[any] = (*InMemoryLRUCache[any])(nil)

// InMemoryLRUCacheOpt configures an InMemoryLRUCache.
type InMemoryLRUCacheOpt[T any] func(i *InMemoryLRUCache[T])

// WithMaxCacheSize sets the maximum number of cached elements. Past it,
// keys are evicted by the underlying policy.
func WithMaxCacheSize[T any](maxElements int64) InMemoryLRUCacheOpt[T] {
	return func(i *InMemoryLRUCache[T]) {
		i.maxElements = maxElements
	}
}

// NewInMemoryLRUCache builds the cache, applying any options.
func NewInMemoryLRUCache[T any](opts ...InMemoryLRUCacheOpt[T]) (*InMemoryLRUCache[T], error) {
	c := &InMemoryLRUCache[T]{
		maxElements: defaultMaxCacheSize,
		closeOnce:   &sync.Once{},
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.client, err = theine.NewBuilder[string, T](c.maxElements).Build()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (i *InMemoryLRUCache[T]) Get(key string) (T, bool) {
	return i.client.Get(key)
}

func (i *InMemoryLRUCache[T]) Set(key string, value T, ttl time.Duration) {
	i.client.SetWithTTL(key, value, 1, ttl)
}

func (i *InMemoryLRUCache[T]) Delete(key string) {
	i.client.Delete(key)
}

func (i *InMemoryLRUCache[T]) Range(f func(key string, value T) bool) {
	i.client.Range(f)
}

func (i *InMemoryLRUCache[T]) Stop() {
	i.closeOnce.Do(func() {
		i.client.Close()
	})
}
