package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
)

func TestUserLifecycle(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	user := &storage.User{Username: "alice", Name: "Alice"}
	require.NoError(t, ds.CreateUser(ctx, user))
	require.NotZero(t, user.ID)

	got, err := ds.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	byName, err := ds.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, byName.ID)

	_, err = ds.GetUser(ctx, 999)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = ds.GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUserCollisions(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	require.NoError(t, ds.CreateUser(ctx, &storage.User{ID: 5, Username: "alice"}))

	err := ds.CreateUser(ctx, &storage.User{Username: "alice"})
	require.ErrorIs(t, err, storage.ErrCollision)

	err = ds.CreateUser(ctx, &storage.User{ID: 5, Username: "bob"})
	require.ErrorIs(t, err, storage.ErrCollision)

	// fresh ids must not collide with explicitly assigned ones
	next := &storage.User{Username: "carol"}
	require.NoError(t, ds.CreateUser(ctx, next))
	require.Greater(t, next.ID, int64(5))
}

func TestUpdateUserKeepsUsernameImmutable(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	user := &storage.User{Username: "alice"}
	require.NoError(t, ds.CreateUser(ctx, user))

	user.Name = "Alice A."
	user.ProfilePrivate = true
	require.NoError(t, ds.UpdateUser(ctx, user))

	got, err := ds.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.ProfilePrivate)

	renamed := *got
	renamed.Username = "alice2"
	require.ErrorIs(t, ds.UpdateUser(ctx, &renamed), storage.ErrInvalidWriteInput)
}

func TestFollowEdges(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	require.ErrorIs(t, ds.WriteFollow(ctx, 1, 1), storage.ErrInvalidWriteInput)

	require.NoError(t, ds.WriteFollow(ctx, 1, 2))
	require.NoError(t, ds.WriteFollow(ctx, 1, 2)) // idempotent
	require.NoError(t, ds.WriteFollow(ctx, 1, 3))
	require.NoError(t, ds.WriteFollow(ctx, 3, 2))

	outgoing, err := ds.ListFollowEdges(ctx, 1, storage.FollowDirectionOutgoing, nil)
	require.NoError(t, err)
	require.Len(t, outgoing, 2)

	incoming, err := ds.ListFollowEdges(ctx, 2, storage.FollowDirectionIncoming, nil)
	require.NoError(t, err)
	require.Len(t, incoming, 2)

	filtered, err := ds.ListFollowEdges(ctx, 1, storage.FollowDirectionOutgoing, []int64{2})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, int64(2), filtered[0].FollowingID)

	require.NoError(t, ds.DeleteFollow(ctx, 1, 2))
	filtered, err = ds.ListFollowEdges(ctx, 1, storage.FollowDirectionOutgoing, []int64{2})
	require.NoError(t, err)
	require.Empty(t, filtered)
}

func TestMemberships(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	membership, err := ds.GetMembership(ctx, 1, 10)
	require.NoError(t, err)
	require.Nil(t, membership)

	require.NoError(t, ds.WriteMembership(ctx, 1, 10, storage.RoleMember))
	membership, err = ds.GetMembership(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, storage.RoleMember, membership.Role)

	// upsert replaces the role
	require.NoError(t, ds.WriteMembership(ctx, 1, 10, storage.RoleCreator))
	membership, err = ds.GetMembership(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, storage.RoleCreator, membership.Role)

	require.NoError(t, ds.WriteMembership(ctx, 1, 11, storage.RoleMember))
	memberships, err := ds.ListMemberships(ctx, 1, []int64{10, 11, 12})
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	require.NoError(t, ds.DeleteMembership(ctx, 1, 10))
	membership, err = ds.GetMembership(ctx, 1, 10)
	require.NoError(t, err)
	require.Nil(t, membership)
}

func TestBulkGetsSkipMissingIDs(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	require.NoError(t, ds.CreateUser(ctx, &storage.User{ID: 1, Username: "alice"}))
	require.NoError(t, ds.CreateCircle(ctx, &storage.Circle{ID: 10, CreatorID: 1}))
	require.NoError(t, ds.CreateAlbum(ctx, &storage.Album{ID: 20, CreatorID: 1}))

	users, err := ds.GetUsers(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, users, 1)

	circles, err := ds.GetCircles(ctx, []int64{10, 11})
	require.NoError(t, err)
	require.Len(t, circles, 1)

	albums, err := ds.GetAlbums(ctx, []int64{20, 21})
	require.NoError(t, err)
	require.Len(t, albums, 1)
}

func TestAlbumLikes(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	require.NoError(t, ds.WriteAlbumLike(ctx, 1, 20))
	require.NoError(t, ds.WriteAlbumLike(ctx, 1, 20)) // idempotent
	require.NoError(t, ds.WriteAlbumLike(ctx, 1, 21))

	likes, err := ds.ListAlbumLikes(ctx, 1, []int64{20, 21, 22})
	require.NoError(t, err)
	require.Len(t, likes, 2)

	require.NoError(t, ds.DeleteAlbumLike(ctx, 1, 20))
	likes, err = ds.ListAlbumLikes(ctx, 1, []int64{20})
	require.NoError(t, err)
	require.Empty(t, likes)
}

func TestValuesAreCopiedInAndOut(t *testing.T) {
	ds := New()
	t.Cleanup(ds.Close)
	ctx := context.Background()

	circle := &storage.Circle{ID: 10, CreatorID: 1, Name: "c1"}
	require.NoError(t, ds.CreateCircle(ctx, circle))

	circle.Name = "mutated"
	got, err := ds.GetCircle(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "c1", got.Name)

	got.Name = "mutated again"
	fresh, err := ds.GetCircle(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "c1", fresh.Name)
}
