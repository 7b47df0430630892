// Package memory provides a mutex-guarded in-memory implementation of
// storage.Datastore. It backs tests and the "memory" datastore engine.
package memory

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
)

var tracer = otel.Tracer("circlevis/pkg/storage/memory")

type pairKey struct {
	a, b int64
}

// Datastore is an in-memory storage.Datastore. All durable state lives in
// maps guarded by a single RWMutex; values are copied on the way in and
// out so callers never alias internal state.
type Datastore struct {
	mu sync.RWMutex

	users         map[int64]storage.User
	usernameIndex map[string]int64
	circles       map[int64]storage.Circle
	albums        map[int64]storage.Album
	memberships   map[pairKey]storage.Membership // (userID, circleID)
	follows       map[pairKey]struct{}           // (followerID, followingID)
	albumLikes    map[pairKey]struct{}           // (userID, albumID)

	nextID int64
}

var _ storage.Datastore = (*Datastore)(nil)

// New creates an empty in-memory datastore.
func New() *Datastore {
	return &Datastore{
		users:         make(map[int64]storage.User),
		usernameIndex: make(map[string]int64),
		circles:       make(map[int64]storage.Circle),
		albums:        make(map[int64]storage.Album),
		memberships:   make(map[pairKey]storage.Membership),
		follows:       make(map[pairKey]struct{}),
		albumLikes:    make(map[pairKey]struct{}),
	}
}

// Close does not do anything for the in-memory datastore.
func (s *Datastore) Close() {}

func (s *Datastore) allocateID() int64 {
	s.nextID++
	return s.nextID
}

// GetUser see [storage.RelationshipStore].GetUser.
func (s *Datastore) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	_, span := tracer.Start(ctx, "memory.GetUser")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &user, nil
}

// GetUserByUsername see [storage.RelationshipStore].GetUserByUsername.
func (s *Datastore) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	_, span := tracer.Start(ctx, "memory.GetUserByUsername")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

// GetCircle see [storage.RelationshipStore].GetCircle.
func (s *Datastore) GetCircle(ctx context.Context, id int64) (*storage.Circle, error) {
	_, span := tracer.Start(ctx, "memory.GetCircle")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	circle, ok := s.circles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &circle, nil
}

// GetAlbum see [storage.RelationshipStore].GetAlbum.
func (s *Datastore) GetAlbum(ctx context.Context, id int64) (*storage.Album, error) {
	_, span := tracer.Start(ctx, "memory.GetAlbum")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	album, ok := s.albums[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &album, nil
}

// GetMembership see [storage.RelationshipStore].GetMembership.
func (s *Datastore) GetMembership(ctx context.Context, userID, circleID int64) (*storage.Membership, error) {
	_, span := tracer.Start(ctx, "memory.GetMembership")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	membership, ok := s.memberships[pairKey{userID, circleID}]
	if !ok {
		return nil, nil
	}
	return &membership, nil
}

// ListFollowEdges see [storage.RelationshipStore].ListFollowEdges.
func (s *Datastore) ListFollowEdges(ctx context.Context, userID int64, direction storage.FollowDirection, targetIDs []int64) ([]*storage.Follow, error) {
	_, span := tracer.Start(ctx, "memory.ListFollowEdges")
	defer span.End()

	if ctx.Err() != nil {
		return nil, storage.ErrCancelled
	}

	targets := make(map[int64]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var edges []*storage.Follow
	for key := range s.follows {
		anchor, other := key.a, key.b
		if direction == storage.FollowDirectionIncoming {
			anchor, other = key.b, key.a
		}
		if anchor != userID {
			continue
		}
		if len(targets) > 0 {
			if _, ok := targets[other]; !ok {
				continue
			}
		}
		edges = append(edges, &storage.Follow{FollowerID: key.a, FollowingID: key.b})
	}
	return edges, nil
}

// GetUsers see [storage.RelationshipStore].GetUsers.
func (s *Datastore) GetUsers(ctx context.Context, ids []int64) ([]*storage.User, error) {
	_, span := tracer.Start(ctx, "memory.GetUsers")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*storage.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			u := user
			users = append(users, &u)
		}
	}
	return users, nil
}

// GetCircles see [storage.RelationshipStore].GetCircles.
func (s *Datastore) GetCircles(ctx context.Context, ids []int64) ([]*storage.Circle, error) {
	_, span := tracer.Start(ctx, "memory.GetCircles")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	circles := make([]*storage.Circle, 0, len(ids))
	for _, id := range ids {
		if circle, ok := s.circles[id]; ok {
			c := circle
			circles = append(circles, &c)
		}
	}
	return circles, nil
}

// GetAlbums see [storage.RelationshipStore].GetAlbums.
func (s *Datastore) GetAlbums(ctx context.Context, ids []int64) ([]*storage.Album, error) {
	_, span := tracer.Start(ctx, "memory.GetAlbums")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	albums := make([]*storage.Album, 0, len(ids))
	for _, id := range ids {
		if album, ok := s.albums[id]; ok {
			a := album
			albums = append(albums, &a)
		}
	}
	return albums, nil
}

// ListMemberships see [storage.RelationshipStore].ListMemberships.
func (s *Datastore) ListMemberships(ctx context.Context, userID int64, circleIDs []int64) ([]*storage.Membership, error) {
	_, span := tracer.Start(ctx, "memory.ListMemberships")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	memberships := make([]*storage.Membership, 0, len(circleIDs))
	for _, circleID := range circleIDs {
		if membership, ok := s.memberships[pairKey{userID, circleID}]; ok {
			m := membership
			memberships = append(memberships, &m)
		}
	}
	return memberships, nil
}

// ListAlbumLikes see [storage.RelationshipStore].ListAlbumLikes.
func (s *Datastore) ListAlbumLikes(ctx context.Context, userID int64, albumIDs []int64) ([]*storage.AlbumLike, error) {
	_, span := tracer.Start(ctx, "memory.ListAlbumLikes")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	likes := make([]*storage.AlbumLike, 0, len(albumIDs))
	for _, albumID := range albumIDs {
		if _, ok := s.albumLikes[pairKey{userID, albumID}]; ok {
			likes = append(likes, &storage.AlbumLike{UserID: userID, AlbumID: albumID})
		}
	}
	return likes, nil
}

// CreateUser assigns an id if the user has none and stores it. The
// username must be unused.
func (s *Datastore) CreateUser(ctx context.Context, user *storage.User) error {
	_, span := tracer.Start(ctx, "memory.CreateUser")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernameIndex[user.Username]; ok {
		return storage.ErrCollision
	}
	if user.ID == 0 {
		user.ID = s.allocateID()
	} else if _, ok := s.users[user.ID]; ok {
		return storage.ErrCollision
	} else if user.ID > s.nextID {
		s.nextID = user.ID
	}

	s.users[user.ID] = *user
	s.usernameIndex[user.Username] = user.ID
	return nil
}

// CreateCircle assigns an id if the circle has none and stores it.
func (s *Datastore) CreateCircle(ctx context.Context, circle *storage.Circle) error {
	_, span := tracer.Start(ctx, "memory.CreateCircle")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if circle.ID == 0 {
		circle.ID = s.allocateID()
	} else if _, ok := s.circles[circle.ID]; ok {
		return storage.ErrCollision
	} else if circle.ID > s.nextID {
		s.nextID = circle.ID
	}

	s.circles[circle.ID] = *circle
	return nil
}

// CreateAlbum assigns an id if the album has none and stores it.
func (s *Datastore) CreateAlbum(ctx context.Context, album *storage.Album) error {
	_, span := tracer.Start(ctx, "memory.CreateAlbum")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if album.ID == 0 {
		album.ID = s.allocateID()
	} else if _, ok := s.albums[album.ID]; ok {
		return storage.ErrCollision
	} else if album.ID > s.nextID {
		s.nextID = album.ID
	}

	s.albums[album.ID] = *album
	return nil
}

// UpdateUser replaces the stored user row.
func (s *Datastore) UpdateUser(ctx context.Context, user *storage.User) error {
	_, span := tracer.Start(ctx, "memory.UpdateUser")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return storage.ErrNotFound
	}
	// usernames are immutable lookup keys
	if existing.Username != user.Username {
		return storage.ErrInvalidWriteInput
	}

	s.users[user.ID] = *user
	return nil
}

// UpdateCircle replaces the stored circle row.
func (s *Datastore) UpdateCircle(ctx context.Context, circle *storage.Circle) error {
	_, span := tracer.Start(ctx, "memory.UpdateCircle")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.circles[circle.ID]; !ok {
		return storage.ErrNotFound
	}
	s.circles[circle.ID] = *circle
	return nil
}

// UpdateAlbum replaces the stored album row.
func (s *Datastore) UpdateAlbum(ctx context.Context, album *storage.Album) error {
	_, span := tracer.Start(ctx, "memory.UpdateAlbum")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.albums[album.ID]; !ok {
		return storage.ErrNotFound
	}
	s.albums[album.ID] = *album
	return nil
}

// WriteFollow see [storage.RelationshipWriter].WriteFollow.
func (s *Datastore) WriteFollow(ctx context.Context, followerID, followingID int64) error {
	_, span := tracer.Start(ctx, "memory.WriteFollow")
	defer span.End()

	if followerID == followingID {
		return storage.ErrInvalidWriteInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.follows[pairKey{followerID, followingID}] = struct{}{}
	return nil
}

// DeleteFollow see [storage.RelationshipWriter].DeleteFollow.
func (s *Datastore) DeleteFollow(ctx context.Context, followerID, followingID int64) error {
	_, span := tracer.Start(ctx, "memory.DeleteFollow")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.follows, pairKey{followerID, followingID})
	return nil
}

// WriteMembership see [storage.RelationshipWriter].WriteMembership.
func (s *Datastore) WriteMembership(ctx context.Context, userID, circleID int64, role storage.Role) error {
	_, span := tracer.Start(ctx, "memory.WriteMembership")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.memberships[pairKey{userID, circleID}] = storage.Membership{
		UserID:   userID,
		CircleID: circleID,
		Role:     role,
	}
	return nil
}

// DeleteMembership see [storage.RelationshipWriter].DeleteMembership.
func (s *Datastore) DeleteMembership(ctx context.Context, userID, circleID int64) error {
	_, span := tracer.Start(ctx, "memory.DeleteMembership")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memberships, pairKey{userID, circleID})
	return nil
}

// WriteAlbumLike see [storage.RelationshipWriter].WriteAlbumLike.
func (s *Datastore) WriteAlbumLike(ctx context.Context, userID, albumID int64) error {
	_, span := tracer.Start(ctx, "memory.WriteAlbumLike")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.albumLikes[pairKey{userID, albumID}] = struct{}{}
	return nil
}

// DeleteAlbumLike see [storage.RelationshipWriter].DeleteAlbumLike.
func (s *Datastore) DeleteAlbumLike(ctx context.Context, userID, albumID int64) error {
	_, span := tracer.Start(ctx, "memory.DeleteAlbumLike")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.albumLikes, pairKey{userID, albumID})
	return nil
}
