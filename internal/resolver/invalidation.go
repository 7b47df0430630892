package resolver

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/keys"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/cache"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

// invalidationMarker records when an entity was last mutated. Cached
// views depending on the entity and computed before the marker are
// rejected on lookup even inside their TTL window.
type invalidationMarker struct {
	invalidatedAt time.Time
}

// Invalidator drops cached views after a mutation to the entity they were
// derived from, across all actor scopes: a circle flipping from private
// to public changes every actor's cached denial, not just the mutating
// actor's.
//
// Single-target view keys start with the entity prefix and are deleted
// eagerly. Batch keys hash their id set, so they cannot be found by
// prefix; a timestamped marker rejects them lazily on the next lookup.
type Invalidator struct {
	cache     cache.InMemoryCache[any]
	markerTTL time.Duration
	logger    logger.Logger
}

// NewInvalidator builds an invalidator over the cache shared with the
// CachedResolver. markerTTL must be at least the view TTL so a marker
// outlives every entry cached before it.
func NewInvalidator(c cache.InMemoryCache[any], markerTTL time.Duration, l logger.Logger) *Invalidator {
	return &Invalidator{
		cache:     c,
		markerTTL: markerTTL,
		logger:    l,
	}
}

// Invalidate drops every cached view derived from the given entity.
func (i *Invalidator) Invalidate(ref types.EntityRef) {
	i.cache.Set(keys.InvalidationKey(ref), &invalidationMarker{invalidatedAt: time.Now()}, i.markerTTL)

	prefix := keys.EntityPrefix(ref)
	var doomed []string
	i.cache.Range(func(key string, _ any) bool {
		if strings.HasPrefix(key, prefix) {
			doomed = append(doomed, key)
		}
		return true
	})
	for _, key := range doomed {
		i.cache.Delete(key)
	}

	i.logger.Debug("invalidated cached views",
		zap.String("entity", ref.String()),
		zap.Int("evicted", len(doomed)),
	)
}
