// Package resolver implements the visibility resolution core: the rule
// chain deciding whether an actor may see a target, the batch fetcher,
// and the caching and deduplication layers wrapped around them.
//
//go:generate mockgen -destination ../mocks/mock_resolver.go -package mocks github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/resolver Resolver
package resolver

import (
	"context"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

// Request asks for the visibility of a single target. Params are
// caller-supplied view parameters (pagination and the like) that become
// part of the cache key fingerprint but never influence the decision.
type Request struct {
	Actor  types.Actor
	Target types.Target
	Params map[string]string
}

// Response carries the decision plus the durable entities it was derived
// from. The caching layer compares DependsOn against invalidation markers
// to reject entries made stale by mutations inside the TTL window.
type Response struct {
	Decision  types.Decision
	DependsOn []types.EntityRef
}

// BatchRequest asks for per-id visibility of a homogeneous id set.
type BatchRequest struct {
	Actor  types.Actor
	Kind   types.Kind
	IDs    []int64
	Params map[string]string
}

// BatchResponse maps each requested id to its decision. Ids that do not
// exist are present with OutcomeNotFound, never silently defaulted.
// Ordering is irrelevant; callers needing deterministic order sort by
// their own key.
type BatchResponse struct {
	Results   map[int64]types.Decision
	DependsOn []types.EntityRef
}

// Resolver is the visibility decision contract. Implementations are
// composed as delegate chains (local -> singleflight -> cached).
type Resolver interface {
	Resolve(ctx context.Context, req *Request) (*Response, error)
	ResolveMany(ctx context.Context, req *BatchRequest) (*BatchResponse, error)

	// Close releases resources owned by this resolver layer.
	Close()
}

func copyResponse(original *Response) *Response {
	return &Response{
		Decision:  original.Decision,
		DependsOn: append([]types.EntityRef(nil), original.DependsOn...),
	}
}

func copyBatchResponse(original *BatchResponse) *BatchResponse {
	results := make(map[int64]types.Decision, len(original.Results))
	for id, decision := range original.Results {
		results[id] = decision
	}
	return &BatchResponse{
		Results:   results,
		DependsOn: append([]types.EntityRef(nil), original.DependsOn...),
	}
}
