package resolver

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/build"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/keys"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/cache"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

const (
	defaultMaxCacheSize = 10000
	defaultCacheTTL     = 10 * time.Second
)

var (
	visibilityCacheTotalCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "visibility_cache_total_count",
		Help:      "The total number of resolutions served through the read-through cache.",
	})

	visibilityCacheHitCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "visibility_cache_hit_count",
		Help:      "The total number of resolutions served from the cache without recomputation.",
	})
)

// cacheEntry is one cached view. Exactly one of single or batch is set.
// cachedAt records when the computation started, not when it finished, so
// a mutation racing an in-flight computation still invalidates the entry.
type cacheEntry struct {
	single    *types.Decision
	batch     map[int64]types.Decision
	dependsOn []types.EntityRef
	cachedAt  time.Time
}

// CachedResolver serves decisions from prior computations before
// delegating to the underlying Resolver. Hits within the TTL window
// return the stored decision with no delegate call; negative outcomes
// (Deny, NotFound) are cached exactly like positive ones; errors are
// never cached. Entries are additionally validated against invalidation
// markers so a mutation defeats the TTL window (see Invalidator).
type CachedResolver struct {
	delegate     Resolver
	cache        cache.InMemoryCache[any]
	maxCacheSize int64
	cacheTTL     time.Duration
	logger       logger.Logger
	// allocatedCache denotes whether the cache was allocated by this
	// struct, and therefore is closed by it.
	allocatedCache bool
}

var _ Resolver = (*CachedResolver)(nil)

// CachedResolverOpt configures a CachedResolver.
type CachedResolverOpt func(*CachedResolver)

// WithCacheTTL sets the TTL for any single cached view.
func WithCacheTTL(ttl time.Duration) CachedResolverOpt {
	return func(c *CachedResolver) {
		c.cacheTTL = ttl
	}
}

// WithMaxCacheSize sets the maximum number of cached views before
// eviction starts.
func WithMaxCacheSize(size int64) CachedResolverOpt {
	return func(c *CachedResolver) {
		c.maxCacheSize = size
	}
}

// WithExistingCache sets the cache to the given instance. The instance is
// not stopped on Close as it may still be used by others; that is up to
// the caller.
func WithExistingCache(c cache.InMemoryCache[any]) CachedResolverOpt {
	return func(r *CachedResolver) {
		r.cache = c
	}
}

// WithCacheLogger sets the logger for the cached resolver.
func WithCacheLogger(l logger.Logger) CachedResolverOpt {
	return func(c *CachedResolver) {
		c.logger = l
	}
}

// NewCachedResolver wraps delegate with the read-through cache.
func NewCachedResolver(delegate Resolver, opts ...CachedResolverOpt) (*CachedResolver, error) {
	c := &CachedResolver{
		delegate:     delegate,
		maxCacheSize: defaultMaxCacheSize,
		cacheTTL:     defaultCacheTTL,
		logger:       logger.NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cache == nil {
		var err error
		c.cache, err = cache.NewInMemoryLRUCache(
			cache.WithMaxCacheSize[any](c.maxCacheSize),
		)
		if err != nil {
			return nil, err
		}
		c.allocatedCache = true
	}

	return c, nil
}

// TTL returns the TTL applied to cached views.
func (c *CachedResolver) TTL() time.Duration {
	return c.cacheTTL
}

// Close deallocates the cache if this resolver allocated it.
func (c *CachedResolver) Close() {
	if c.allocatedCache {
		c.cache.Stop()
	}
}

// Resolve implements Resolver.
func (c *CachedResolver) Resolve(ctx context.Context, req *Request) (*Response, error) {
	visibilityCacheTotalCounter.Inc()

	key := keys.ViewKey(req.Actor, req.Target, req.Params)
	if entry := c.lookup(key); entry != nil && entry.single != nil {
		visibilityCacheHitCounter.Inc()
		return copyResponse(&Response{Decision: *entry.single, DependsOn: entry.dependsOn}), nil
	}

	computedAt := time.Now()
	resp, err := c.delegate.Resolve(ctx, req)
	if err != nil {
		// failures are never cached
		return nil, err
	}

	decision := resp.Decision
	c.cache.Set(key, &cacheEntry{
		single:    &decision,
		dependsOn: resp.DependsOn,
		cachedAt:  computedAt,
	}, c.cacheTTL)

	return resp, nil
}

// ResolveMany implements Resolver.
func (c *CachedResolver) ResolveMany(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	visibilityCacheTotalCounter.Inc()

	key := keys.BatchKey(req.Actor, req.Kind, req.IDs, req.Params)
	if entry := c.lookup(key); entry != nil && entry.batch != nil {
		visibilityCacheHitCounter.Inc()
		return copyBatchResponse(&BatchResponse{Results: entry.batch, DependsOn: entry.dependsOn}), nil
	}

	computedAt := time.Now()
	resp, err := c.delegate.ResolveMany(ctx, req)
	if err != nil {
		return nil, err
	}

	stored := copyBatchResponse(resp)
	c.cache.Set(key, &cacheEntry{
		batch:     stored.Results,
		dependsOn: stored.DependsOn,
		cachedAt:  computedAt,
	}, c.cacheTTL)

	return resp, nil
}

// lookup returns the live entry for key, or nil when it is absent or has
// been made stale by an invalidation marker.
func (c *CachedResolver) lookup(key string) *cacheEntry {
	raw, ok := c.cache.Get(key)
	if !ok {
		return nil
	}
	entry, ok := raw.(*cacheEntry)
	if !ok {
		return nil
	}

	for _, ref := range entry.dependsOn {
		raw, ok := c.cache.Get(keys.InvalidationKey(ref))
		if !ok {
			continue
		}
		if marker, ok := raw.(*invalidationMarker); ok && !marker.invalidatedAt.Before(entry.cachedAt) {
			return nil
		}
	}
	return entry
}
