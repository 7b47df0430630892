// Package engine exposes the privacy-aware visibility engine consumed by
// endpoint handlers: per-target resolution, batch resolution, and
// mutation-driven cache invalidation. Handlers map the returned outcomes
// to transport responses; the engine never does.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/resolver"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/cache"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

const (
	// DefaultCacheTTL bounds how stale a served decision may be. Reads up
	// to this far behind a mutation that was not reported through the
	// invalidation hooks are an accepted trade-off.
	DefaultCacheTTL = 10 * time.Second

	// DefaultCacheLimit is the maximum number of cached views.
	DefaultCacheLimit = 10000
)

// Engine is the read-side visibility service. It owns the process-wide
// decision cache and assembles the resolver chain
// local -> cached -> singleflight around the relationship store.
type Engine struct {
	ds          storage.RelationshipStore
	resolver    resolver.Resolver
	cached      *resolver.CachedResolver
	invalidator *resolver.Invalidator
	sharedCache cache.InMemoryCache[any]
	logger      logger.Logger

	cacheEnabled bool
	cacheTTL     time.Duration
	cacheLimit   int64

	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its resolver chain.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithCacheTTL sets the TTL for cached decisions.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithCacheLimit sets the maximum number of cached decisions.
func WithCacheLimit(limit int64) Option {
	return func(e *Engine) {
		e.cacheLimit = limit
	}
}

// WithCacheEnabled toggles the read-through cache. With the cache
// disabled every resolution recomputes against the store; the
// singleflight guard stays active either way.
func WithCacheEnabled(enabled bool) Option {
	return func(e *Engine) {
		e.cacheEnabled = enabled
	}
}

// New builds an Engine over the given relationship store.
func New(ds storage.RelationshipStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		ds:           ds,
		logger:       logger.NewNoopLogger(),
		cacheEnabled: true,
		cacheTTL:     DefaultCacheTTL,
		cacheLimit:   DefaultCacheLimit,
	}
	for _, opt := range opts {
		opt(e)
	}

	local := resolver.NewLocalResolver(ds, resolver.WithLocalLogger(e.logger))

	var chain resolver.Resolver = local
	if e.cacheEnabled {
		sharedCache, err := cache.NewInMemoryLRUCache(
			cache.WithMaxCacheSize[any](e.cacheLimit),
		)
		if err != nil {
			return nil, err
		}
		e.sharedCache = sharedCache

		e.cached, err = resolver.NewCachedResolver(local,
			resolver.WithExistingCache(sharedCache),
			resolver.WithCacheTTL(e.cacheTTL),
			resolver.WithCacheLogger(e.logger),
		)
		if err != nil {
			sharedCache.Stop()
			return nil, err
		}
		chain = e.cached

		e.invalidator = resolver.NewInvalidator(sharedCache, e.cacheTTL, e.logger)
	}

	e.resolver = resolver.NewSingleflightResolver(chain,
		resolver.WithSingleflightLogger(e.logger),
	)

	return e, nil
}

// Close releases the resolver chain and the shared cache.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.resolver.Close()
		if e.cached != nil {
			e.cached.Close()
		}
		if e.sharedCache != nil {
			e.sharedCache.Stop()
		}
	})
}

// Resolve decides whether actor may see target. Params are view
// parameters that scope the cache entry, not the decision.
func (e *Engine) Resolve(ctx context.Context, actor types.Actor, target types.Target, params map[string]string) (types.Decision, error) {
	resp, err := e.resolver.Resolve(ctx, &resolver.Request{
		Actor:  actor,
		Target: target,
		Params: params,
	})
	if err != nil {
		e.logger.Error("visibility resolution failed",
			zap.String("request_id", ulid.Make().String()),
			zap.String("target", target.String()),
			zap.Error(err),
		)
		return types.Decision{}, err
	}

	e.logger.Debug("resolved visibility",
		zap.String("target", target.String()),
		zap.String("outcome", resp.Decision.Outcome.String()),
	)
	return resp.Decision, nil
}

// ResolveMany decides visibility for a homogeneous id set in one pass.
// Every requested id is present in the result; ids that do not exist
// carry OutcomeNotFound.
func (e *Engine) ResolveMany(ctx context.Context, actor types.Actor, kind types.Kind, ids []int64) (map[int64]types.Decision, error) {
	resp, err := e.resolver.ResolveMany(ctx, &resolver.BatchRequest{
		Actor: actor,
		Kind:  kind,
		IDs:   ids,
	})
	if err != nil {
		e.logger.Error("batch visibility resolution failed",
			zap.String("request_id", ulid.Make().String()),
			zap.String("kind", string(kind)),
			zap.Int("ids", len(ids)),
			zap.Error(err),
		)
		return nil, err
	}
	return resp.Results, nil
}

// Invalidate drops every cached view derived from the given entity,
// across all actor scopes.
func (e *Engine) Invalidate(ref types.EntityRef) {
	if e.invalidator != nil {
		e.invalidator.Invalidate(ref)
	}
}
