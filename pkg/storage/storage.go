// Package storage contains the relationship-store interfaces the
// visibility engine reads from, and the entities those stores own.
//
//go:generate mockgen -destination ../../internal/mocks/mock_storage.go -package mocks github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage RelationshipStore
package storage

import (
	"context"
)

// FollowDirection selects which end of a follow edge a list query is
// anchored on.
type FollowDirection int

const (
	// FollowDirectionOutgoing lists edges where the given user is the
	// follower.
	FollowDirectionOutgoing FollowDirection = iota
	// FollowDirectionIncoming lists edges where the given user is the
	// followee.
	FollowDirectionIncoming
)

// RelationshipStore is the read contract the resolver and batch fetcher
// depend on. It is a pure data accessor: no caching and no policy logic
// live behind it, so implementations are replaceable independently of the
// resolver.
//
// Point lookups return ErrNotFound for absent rows, except GetMembership
// which reports absence via a nil membership because a missing row is an
// expected, non-exceptional answer during resolution.
type RelationshipStore interface {
	// GetUser returns the user with the given id.
	GetUser(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername returns the user with the given unique username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetCircle returns the circle with the given id.
	GetCircle(ctx context.Context, id int64) (*Circle, error)

	// GetAlbum returns the album with the given id.
	GetAlbum(ctx context.Context, id int64) (*Album, error)

	// GetMembership returns the membership row for (userID, circleID), or
	// nil when no row exists.
	GetMembership(ctx context.Context, userID, circleID int64) (*Membership, error)

	// ListFollowEdges returns the follow edges anchored on userID in the
	// given direction. A non-empty targetIDs restricts the other end of
	// the edge to those ids.
	ListFollowEdges(ctx context.Context, userID int64, direction FollowDirection, targetIDs []int64) ([]*Follow, error)

	// GetUsers returns the users whose ids are in ids. Absent ids are
	// simply missing from the result, not an error.
	GetUsers(ctx context.Context, ids []int64) ([]*User, error)

	// GetCircles returns the circles whose ids are in ids.
	GetCircles(ctx context.Context, ids []int64) ([]*Circle, error)

	// GetAlbums returns the albums whose ids are in ids.
	GetAlbums(ctx context.Context, ids []int64) ([]*Album, error)

	// ListMemberships returns the membership rows userID holds in any of
	// the given circles.
	ListMemberships(ctx context.Context, userID int64, circleIDs []int64) ([]*Membership, error)

	// ListAlbumLikes returns the like rows userID holds on any of the
	// given albums.
	ListAlbumLikes(ctx context.Context, userID int64, albumIDs []int64) ([]*AlbumLike, error)

	// Close releases resources held by the store.
	Close()
}

// RelationshipWriter is the write contract implemented by the bundled
// adapters. The engine itself never writes; the application's mutation
// path does, and then reports the mutation through the engine's
// invalidation hooks.
type RelationshipWriter interface {
	CreateUser(ctx context.Context, user *User) error
	CreateCircle(ctx context.Context, circle *Circle) error
	CreateAlbum(ctx context.Context, album *Album) error
	UpdateUser(ctx context.Context, user *User) error
	UpdateCircle(ctx context.Context, circle *Circle) error
	UpdateAlbum(ctx context.Context, album *Album) error

	// WriteFollow creates the directed edge follower -> followee. Writing
	// an existing edge is idempotent. Self-follows return
	// ErrInvalidWriteInput.
	WriteFollow(ctx context.Context, followerID, followingID int64) error
	DeleteFollow(ctx context.Context, followerID, followingID int64) error

	// WriteMembership upserts the membership row for (userID, circleID).
	WriteMembership(ctx context.Context, userID, circleID int64, role Role) error
	DeleteMembership(ctx context.Context, userID, circleID int64) error

	WriteAlbumLike(ctx context.Context, userID, albumID int64) error
	DeleteAlbumLike(ctx context.Context, userID, albumID int64) error
}

// Datastore combines the read and write contracts.
type Datastore interface {
	RelationshipStore
	RelationshipWriter
}
