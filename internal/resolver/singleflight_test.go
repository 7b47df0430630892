package resolver_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/mocks"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/resolver"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

func TestSingleflightDeduplicatesConcurrentResolutions(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *resolver.Request) (*resolver.Response, error) {
			close(started)
			<-release
			return allowResponse(), nil
		}).Times(1)

	s := resolver.NewSingleflightResolver(delegate)
	t.Cleanup(s.Close)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*resolver.Response, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.Resolve(context.Background(), profileRequest(types.UserActor(1), 7))
		}()
	}

	<-started
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		require.Equal(t, types.OutcomeAllow, results[i].Decision.Outcome)
	}
}

func TestSingleflightDistinctKeysDoNotShareFlights(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(allowResponse(), nil).Times(2)

	s := resolver.NewSingleflightResolver(delegate)
	t.Cleanup(s.Close)

	ctx := context.Background()
	_, err := s.Resolve(ctx, profileRequest(types.UserActor(1), 7))
	require.NoError(t, err)
	_, err = s.Resolve(ctx, profileRequest(types.UserActor(2), 7))
	require.NoError(t, err)
}

// A caller that disconnects mid-flight gets its context error, but the
// computation keeps running and serves the remaining waiters.
func TestSingleflightSurvivesCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	delegate.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *resolver.Request) (*resolver.Response, error) {
			close(started)
			select {
			case <-release:
				return allowResponse(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}).Times(1)

	s := resolver.NewSingleflightResolver(delegate)
	t.Cleanup(s.Close)

	cancellable, cancel := context.WithCancel(context.Background())
	cancelledErr := make(chan error, 1)
	go func() {
		_, err := s.Resolve(cancellable, profileRequest(types.UserActor(1), 7))
		cancelledErr <- err
	}()

	<-started

	survivorResp := make(chan *resolver.Response, 1)
	survivorErr := make(chan error, 1)
	go func() {
		resp, err := s.Resolve(context.Background(), profileRequest(types.UserActor(1), 7))
		survivorResp <- resp
		survivorErr <- err
	}()

	cancel()
	require.ErrorIs(t, <-cancelledErr, context.Canceled)

	// give the survivor time to join the in-flight computation before it
	// completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	require.NoError(t, <-survivorErr)
	require.Equal(t, types.OutcomeAllow, (<-survivorResp).Decision.Outcome)
}

func TestSingleflightReturnsDelegateErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockResolver(ctrl)
	delegate.EXPECT().ResolveMany(gomock.Any(), gomock.Any()).Return(nil, errStoreDown).Times(1)

	s := resolver.NewSingleflightResolver(delegate)
	t.Cleanup(s.Close)

	_, err := s.ResolveMany(context.Background(), &resolver.BatchRequest{
		Actor: types.UserActor(1),
		Kind:  types.KindUserProfile,
		IDs:   []int64{1},
	})
	require.ErrorIs(t, err, errStoreDown)
}
