package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/mocks"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/resolver"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/cache"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/memory"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

var errStoreDown = storage.ErrUnavailable

func profileRequest(actor types.Actor, id int64) *resolver.Request {
	return &resolver.Request{
		Actor:  actor,
		Target: types.Target{Kind: types.KindUserProfile, ID: id},
	}
}

func allowResponse() *resolver.Response {
	return &resolver.Response{
		Decision:  types.AllowDecision(types.Flags{}),
		DependsOn: []types.EntityRef{types.UserRef(7)},
	}
}

func TestCachedResolverServesRepeatsFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(allowResponse(), nil).Times(1)

	c, err := resolver.NewCachedResolver(delegate)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	first, err := c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.NoError(t, err)

	second, err := c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.NoError(t, err)
	require.Equal(t, first.Decision, second.Decision)
}

func TestCachedResolverCachesNegativeOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)

	deny := &resolver.Response{
		Decision:  types.DenyDecision(types.ReasonFollowRequired, types.Flags{}),
		DependsOn: []types.EntityRef{types.UserRef(7)},
	}
	notFound := &resolver.Response{
		Decision:  types.NotFoundDecision(),
		DependsOn: []types.EntityRef{types.UserRef(8)},
	}
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(deny, nil).Times(1)
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(notFound, nil).Times(1)

	c, err := resolver.NewCachedResolver(delegate)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	for range 2 {
		resp, err := c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
		require.NoError(t, err)
		require.Equal(t, types.OutcomeDeny, resp.Decision.Outcome)
	}
	for range 2 {
		resp, err := c.Resolve(ctx, profileRequest(types.UserActor(1), 8))
		require.NoError(t, err)
		require.Equal(t, types.OutcomeNotFound, resp.Decision.Outcome)
	}
}

func TestCachedResolverNeverCachesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)

	gomock.InOrder(
		delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(nil, errStoreDown).Times(1),
		delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(allowResponse(), nil).Times(1),
	)

	c, err := resolver.NewCachedResolver(delegate)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	_, err = c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.ErrorIs(t, err, storage.ErrUnavailable)

	resp, err := c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.NoError(t, err)
	require.Equal(t, types.OutcomeAllow, resp.Decision.Outcome)
}

func TestCachedResolverIsActorScoped(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)
	// two actors, two computations: a cached decision never leaks across
	// actor scopes
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(allowResponse(), nil).Times(2)

	c, err := resolver.NewCachedResolver(delegate)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	_, err = c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.NoError(t, err)
	_, err = c.Resolve(ctx, profileRequest(types.UserActor(2), 7))
	require.NoError(t, err)
}

func TestCachedResolverExpiresEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(allowResponse(), nil).Times(2)

	c, err := resolver.NewCachedResolver(delegate, resolver.WithCacheTTL(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	_, err = c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := c.Resolve(ctx, profileRequest(types.UserActor(1), 7))
		require.NoError(t, err)
		return ctrl.Satisfied()
	}, 1*time.Second, 20*time.Millisecond)
}

// TestInvalidationDefeatsTTL covers the mutation path end to end: a
// cached denial must not outlive the membership write that retires it,
// even inside the TTL window.
func TestInvalidationDefeatsTTL(t *testing.T) {
	ds := memory.New()
	ctx := context.Background()
	require.NoError(t, ds.CreateUser(ctx, &storage.User{ID: 1, Username: "alice"}))
	require.NoError(t, ds.CreateCircle(ctx, &storage.Circle{ID: 10, CreatorID: 2, Private: true}))

	shared, err := cache.NewInMemoryLRUCache[any]()
	require.NoError(t, err)
	t.Cleanup(shared.Stop)

	c, err := resolver.NewCachedResolver(
		resolver.NewLocalResolver(ds),
		resolver.WithExistingCache(shared),
		resolver.WithCacheTTL(1*time.Hour),
	)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	invalidator := resolver.NewInvalidator(shared, 1*time.Hour, logger.NewNoopLogger())

	req := &resolver.Request{
		Actor:  types.UserActor(1),
		Target: types.Target{Kind: types.KindCircle, ID: 10},
	}
	resp, err := c.Resolve(ctx, req)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeDeny, resp.Decision.Outcome)

	require.NoError(t, ds.WriteMembership(ctx, 1, 10, storage.RoleMember))
	invalidator.Invalidate(types.CircleRef(10))

	resp, err = c.Resolve(ctx, req)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeAllow, resp.Decision.Outcome)
}

// Batch entries cannot be found by key prefix; the invalidation marker
// must reject them lazily on the next lookup.
func TestInvalidationRejectsBatchEntries(t *testing.T) {
	ds := memory.New()
	ctx := context.Background()
	require.NoError(t, ds.CreateCircle(ctx, &storage.Circle{ID: 10, CreatorID: 2, Private: true}))

	shared, err := cache.NewInMemoryLRUCache[any]()
	require.NoError(t, err)
	t.Cleanup(shared.Stop)

	c, err := resolver.NewCachedResolver(
		resolver.NewLocalResolver(ds),
		resolver.WithExistingCache(shared),
		resolver.WithCacheTTL(1*time.Hour),
	)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	invalidator := resolver.NewInvalidator(shared, 1*time.Hour, logger.NewNoopLogger())

	req := &resolver.BatchRequest{
		Actor: types.UserActor(1),
		Kind:  types.KindCircle,
		IDs:   []int64{10},
	}
	resp, err := c.ResolveMany(ctx, req)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeDeny, resp.Results[10].Outcome)

	circle, err := ds.GetCircle(ctx, 10)
	require.NoError(t, err)
	circle.Private = false
	require.NoError(t, ds.UpdateCircle(ctx, circle))
	invalidator.Invalidate(types.CircleRef(10))

	resp, err = c.ResolveMany(ctx, req)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeAllow, resp.Results[10].Outcome)
}

func TestCachedResolverBatchCaching(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)
	delegate.EXPECT().ResolveMany(gomock.Any(), gomock.Any()).Return(&resolver.BatchResponse{
		Results:   map[int64]types.Decision{1: types.AllowDecision(types.Flags{})},
		DependsOn: []types.EntityRef{types.UserRef(1)},
	}, nil).Times(1)

	c, err := resolver.NewCachedResolver(delegate)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	// permutations of the same id set share one entry
	for _, ids := range [][]int64{{1, 1}, {1}} {
		resp, err := c.ResolveMany(ctx, &resolver.BatchRequest{
			Actor: types.UserActor(2),
			Kind:  types.KindUserProfile,
			IDs:   ids,
		})
		require.NoError(t, err)
		require.Equal(t, types.OutcomeAllow, resp.Results[1].Outcome)
	}
}
