// Package storagewrappers provides decorators over
// storage.RelationshipStore: query instrumentation and transient-failure
// retries.
package storagewrappers

import (
	"context"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/build"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
)

var datastoreQueryCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: build.ProjectName,
	Name:      "datastore_query_count",
	Help:      "The total number of relationship store queries, by method.",
}, []string{"method"})

var _ storage.RelationshipStore = (*InstrumentedDatastore)(nil)

// InstrumentedDatastore wraps a RelationshipStore and counts the queries
// flowing through it, both in a process-wide prometheus counter and in a
// per-instance counter tests assert against. It must wrap the raw store,
// not a cache, for the counts to mean anything.
type InstrumentedDatastore struct {
	storage.RelationshipStore
	countReads atomic.Uint32
}

// NewInstrumentedDatastore creates an InstrumentedDatastore wrapping ds.
func NewInstrumentedDatastore(ds storage.RelationshipStore) *InstrumentedDatastore {
	return &InstrumentedDatastore{
		RelationshipStore: ds,
	}
}

// ReadCount returns the number of queries issued through this instance.
func (m *InstrumentedDatastore) ReadCount() uint32 {
	return m.countReads.Load()
}

func (m *InstrumentedDatastore) increaseReads(method string) {
	m.countReads.Add(1)
	datastoreQueryCounter.WithLabelValues(method).Inc()
}

// GetUser see [storage.RelationshipStore].GetUser.
func (m *InstrumentedDatastore) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	m.increaseReads("GetUser")

	return m.RelationshipStore.GetUser(ctx, id)
}

// GetUserByUsername see [storage.RelationshipStore].GetUserByUsername.
func (m *InstrumentedDatastore) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	m.increaseReads("GetUserByUsername")

	return m.RelationshipStore.GetUserByUsername(ctx, username)
}

// GetCircle see [storage.RelationshipStore].GetCircle.
func (m *InstrumentedDatastore) GetCircle(ctx context.Context, id int64) (*storage.Circle, error) {
	m.increaseReads("GetCircle")

	return m.RelationshipStore.GetCircle(ctx, id)
}

// GetAlbum see [storage.RelationshipStore].GetAlbum.
func (m *InstrumentedDatastore) GetAlbum(ctx context.Context, id int64) (*storage.Album, error) {
	m.increaseReads("GetAlbum")

	return m.RelationshipStore.GetAlbum(ctx, id)
}

// GetMembership see [storage.RelationshipStore].GetMembership.
func (m *InstrumentedDatastore) GetMembership(ctx context.Context, userID, circleID int64) (*storage.Membership, error) {
	m.increaseReads("GetMembership")

	return m.RelationshipStore.GetMembership(ctx, userID, circleID)
}

// ListFollowEdges see [storage.RelationshipStore].ListFollowEdges.
func (m *InstrumentedDatastore) ListFollowEdges(ctx context.Context, userID int64, direction storage.FollowDirection, targetIDs []int64) ([]*storage.Follow, error) {
	m.increaseReads("ListFollowEdges")

	return m.RelationshipStore.ListFollowEdges(ctx, userID, direction, targetIDs)
}

// GetUsers see [storage.RelationshipStore].GetUsers.
func (m *InstrumentedDatastore) GetUsers(ctx context.Context, ids []int64) ([]*storage.User, error) {
	m.increaseReads("GetUsers")

	return m.RelationshipStore.GetUsers(ctx, ids)
}

// GetCircles see [storage.RelationshipStore].GetCircles.
func (m *InstrumentedDatastore) GetCircles(ctx context.Context, ids []int64) ([]*storage.Circle, error) {
	m.increaseReads("GetCircles")

	return m.RelationshipStore.GetCircles(ctx, ids)
}

// GetAlbums see [storage.RelationshipStore].GetAlbums.
func (m *InstrumentedDatastore) GetAlbums(ctx context.Context, ids []int64) ([]*storage.Album, error) {
	m.increaseReads("GetAlbums")

	return m.RelationshipStore.GetAlbums(ctx, ids)
}

// ListMemberships see [storage.RelationshipStore].ListMemberships.
func (m *InstrumentedDatastore) ListMemberships(ctx context.Context, userID int64, circleIDs []int64) ([]*storage.Membership, error) {
	m.increaseReads("ListMemberships")

	return m.RelationshipStore.ListMemberships(ctx, userID, circleIDs)
}

// ListAlbumLikes see [storage.RelationshipStore].ListAlbumLikes.
func (m *InstrumentedDatastore) ListAlbumLikes(ctx context.Context, userID int64, albumIDs []int64) ([]*storage.AlbumLike, error) {
	m.increaseReads("ListAlbumLikes")

	return m.RelationshipStore.ListAlbumLikes(ctx, userID, albumIDs)
}
