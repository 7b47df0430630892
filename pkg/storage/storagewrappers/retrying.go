package storagewrappers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
)

const (
	defaultMaxRetries      = 1
	defaultInitialInterval = 10 * time.Millisecond
)

var _ storage.RelationshipStore = (*RetryingDatastore)(nil)

// RetryingDatastore retries transient read failures before surfacing them
// as storage.ErrUnavailable. Expected outcomes (ErrNotFound, cancelled
// contexts) are terminal and never retried.
type RetryingDatastore struct {
	storage.RelationshipStore
	maxRetries uint64
}

// NewRetryingDatastore creates a RetryingDatastore wrapping ds with the
// default single retry.
func NewRetryingDatastore(ds storage.RelationshipStore) *RetryingDatastore {
	return &RetryingDatastore{
		RelationshipStore: ds,
		maxRetries:        defaultMaxRetries,
	}
}

func (r *RetryingDatastore) retry(ctx context.Context, op func() error) error {
	attempt := func() error {
		err := op()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, storage.ErrNotFound),
			errors.Is(err, storage.ErrCancelled),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = defaultInitialInterval

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrCancelled) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
}

// GetUser see [storage.RelationshipStore].GetUser.
func (r *RetryingDatastore) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	var user *storage.User
	err := r.retry(ctx, func() error {
		var err error
		user, err = r.RelationshipStore.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername see [storage.RelationshipStore].GetUserByUsername.
func (r *RetryingDatastore) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	var user *storage.User
	err := r.retry(ctx, func() error {
		var err error
		user, err = r.RelationshipStore.GetUserByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetCircle see [storage.RelationshipStore].GetCircle.
func (r *RetryingDatastore) GetCircle(ctx context.Context, id int64) (*storage.Circle, error) {
	var circle *storage.Circle
	err := r.retry(ctx, func() error {
		var err error
		circle, err = r.RelationshipStore.GetCircle(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return circle, nil
}

// GetAlbum see [storage.RelationshipStore].GetAlbum.
func (r *RetryingDatastore) GetAlbum(ctx context.Context, id int64) (*storage.Album, error) {
	var album *storage.Album
	err := r.retry(ctx, func() error {
		var err error
		album, err = r.RelationshipStore.GetAlbum(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return album, nil
}

// GetMembership see [storage.RelationshipStore].GetMembership.
func (r *RetryingDatastore) GetMembership(ctx context.Context, userID, circleID int64) (*storage.Membership, error) {
	var membership *storage.Membership
	err := r.retry(ctx, func() error {
		var err error
		membership, err = r.RelationshipStore.GetMembership(ctx, userID, circleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// ListFollowEdges see [storage.RelationshipStore].ListFollowEdges.
func (r *RetryingDatastore) ListFollowEdges(ctx context.Context, userID int64, direction storage.FollowDirection, targetIDs []int64) ([]*storage.Follow, error) {
	var edges []*storage.Follow
	err := r.retry(ctx, func() error {
		var err error
		edges, err = r.RelationshipStore.ListFollowEdges(ctx, userID, direction, targetIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// GetUsers see [storage.RelationshipStore].GetUsers.
func (r *RetryingDatastore) GetUsers(ctx context.Context, ids []int64) ([]*storage.User, error) {
	var users []*storage.User
	err := r.retry(ctx, func() error {
		var err error
		users, err = r.RelationshipStore.GetUsers(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetCircles see [storage.RelationshipStore].GetCircles.
func (r *RetryingDatastore) GetCircles(ctx context.Context, ids []int64) ([]*storage.Circle, error) {
	var circles []*storage.Circle
	err := r.retry(ctx, func() error {
		var err error
		circles, err = r.RelationshipStore.GetCircles(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return circles, nil
}

// GetAlbums see [storage.RelationshipStore].GetAlbums.
func (r *RetryingDatastore) GetAlbums(ctx context.Context, ids []int64) ([]*storage.Album, error) {
	var albums []*storage.Album
	err := r.retry(ctx, func() error {
		var err error
		albums, err = r.RelationshipStore.GetAlbums(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return albums, nil
}

// ListMemberships see [storage.RelationshipStore].ListMemberships.
func (r *RetryingDatastore) ListMemberships(ctx context.Context, userID int64, circleIDs []int64) ([]*storage.Membership, error) {
	var memberships []*storage.Membership
	err := r.retry(ctx, func() error {
		var err error
		memberships, err = r.RelationshipStore.ListMemberships(ctx, userID, circleIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListAlbumLikes see [storage.RelationshipStore].ListAlbumLikes.
func (r *RetryingDatastore) ListAlbumLikes(ctx context.Context, userID int64, albumIDs []int64) ([]*storage.AlbumLike, error) {
	var likes []*storage.AlbumLike
	err := r.retry(ctx, func() error {
		var err error
		likes, err = r.RelationshipStore.ListAlbumLikes(ctx, userID, albumIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return likes, nil
}
