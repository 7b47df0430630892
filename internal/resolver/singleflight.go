package resolver

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/build"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/keys"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
)

var deduplicatedResolutionCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: build.ProjectName,
	Name:      "deduplicated_resolution_count",
	Help:      "The total number of resolutions that joined an in-flight computation instead of issuing their own.",
})

// SingleflightResolver guarantees at most one concurrent computation per
// cache key: concurrent callers for an in-flight key await that
// computation's result instead of each issuing duplicate store calls.
//
// The computation runs detached from any single caller's context, so a
// request that disconnects mid-flight neither cancels the result for the
// other waiters nor prevents it from populating the cache below.
type SingleflightResolver struct {
	delegate   Resolver
	group      singleflight.Group
	batchGroup singleflight.Group
	logger     logger.Logger
}

var _ Resolver = (*SingleflightResolver)(nil)

// SingleflightResolverOpt configures a SingleflightResolver.
type SingleflightResolverOpt func(*SingleflightResolver)

// WithSingleflightLogger sets the logger for the singleflight resolver.
func WithSingleflightLogger(l logger.Logger) SingleflightResolverOpt {
	return func(s *SingleflightResolver) {
		s.logger = l
	}
}

// NewSingleflightResolver wraps delegate with the thundering-herd guard.
func NewSingleflightResolver(delegate Resolver, opts ...SingleflightResolverOpt) *SingleflightResolver {
	s := &SingleflightResolver{
		delegate: delegate,
		logger:   logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close implements Resolver.
func (s *SingleflightResolver) Close() {}

// Resolve implements Resolver.
func (s *SingleflightResolver) Resolve(ctx context.Context, req *Request) (*Response, error) {
	key := keys.ViewKey(req.Actor, req.Target, req.Params)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.delegate.Resolve(context.WithoutCancel(ctx), req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			deduplicatedResolutionCounter.Inc()
		}
		// Return a dereferenced copy: the group's value is shared between
		// every goroutine that joined the flight.
		return copyResponse(res.Val.(*Response)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResolveMany implements Resolver.
func (s *SingleflightResolver) ResolveMany(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	key := keys.BatchKey(req.Actor, req.Kind, req.IDs, req.Params)

	ch := s.batchGroup.DoChan(key, func() (interface{}, error) {
		return s.delegate.ResolveMany(context.WithoutCancel(ctx), req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			deduplicatedResolutionCounter.Inc()
		}
		return copyBatchResponse(res.Val.(*BatchResponse)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
