package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/memory"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

// seedDatastore builds a small social graph:
//
//	alice (1, public), bob (2, private), carol (3, public)
//	alice follows bob
//	c1 (private, creator bob, member alice), c2 (public, creator carol)
//	a1 (public, no circle, creator carol)
//	a2 (private, no circle, creator bob)
//	a3 (private, in c1, creator bob)
//	a4 (private, in c2, creator carol)
//	alice liked a1
func seedDatastore(t *testing.T) *memory.Datastore {
	t.Helper()
	ds := memory.New()
	ctx := context.Background()

	require.NoError(t, ds.CreateUser(ctx, &storage.User{ID: 1, Username: "alice"}))
	require.NoError(t, ds.CreateUser(ctx, &storage.User{ID: 2, Username: "bob", ProfilePrivate: true}))
	require.NoError(t, ds.CreateUser(ctx, &storage.User{ID: 3, Username: "carol"}))
	require.NoError(t, ds.WriteFollow(ctx, 1, 2))

	require.NoError(t, ds.CreateCircle(ctx, &storage.Circle{ID: 10, CreatorID: 2, Name: "c1", Private: true}))
	require.NoError(t, ds.WriteMembership(ctx, 1, 10, storage.RoleMember))
	require.NoError(t, ds.CreateCircle(ctx, &storage.Circle{ID: 11, CreatorID: 3, Name: "c2"}))

	require.NoError(t, ds.CreateAlbum(ctx, &storage.Album{ID: 20, CreatorID: 3, Title: "a1"}))
	require.NoError(t, ds.CreateAlbum(ctx, &storage.Album{ID: 21, CreatorID: 2, Title: "a2", Private: true}))
	require.NoError(t, ds.CreateAlbum(ctx, &storage.Album{ID: 22, CreatorID: 2, CircleID: 10, Title: "a3", Private: true}))
	require.NoError(t, ds.CreateAlbum(ctx, &storage.Album{ID: 23, CreatorID: 3, CircleID: 11, Title: "a4", Private: true}))
	require.NoError(t, ds.WriteAlbumLike(ctx, 1, 20))

	return ds
}

func resolve(t *testing.T, r Resolver, actor types.Actor, kind types.Kind, id int64) types.Decision {
	t.Helper()
	resp, err := r.Resolve(context.Background(), &Request{
		Actor:  actor,
		Target: types.Target{Kind: kind, ID: id},
	})
	require.NoError(t, err)
	return resp.Decision
}

func TestResolveProfile(t *testing.T) {
	r := NewLocalResolver(seedDatastore(t))
	t.Cleanup(r.Close)

	t.Run("public profile visible to guests", func(t *testing.T) {
		decision := resolve(t, r, types.Guest(), types.KindUserProfile, 1)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.False(t, decision.Flags.IsSelf)
		require.False(t, decision.Flags.IsFollowing)
	})

	t.Run("private profile hidden from guests", func(t *testing.T) {
		decision := resolve(t, r, types.Guest(), types.KindUserProfile, 2)
		require.Equal(t, types.OutcomeDeny, decision.Outcome)
		require.Equal(t, types.ReasonFollowRequired, decision.Reason)
	})

	t.Run("private profile hidden from strangers", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(3), types.KindUserProfile, 2)
		require.Equal(t, types.OutcomeDeny, decision.Outcome)
		require.Equal(t, types.ReasonFollowRequired, decision.Reason)
	})

	t.Run("private profile visible to followers", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(1), types.KindUserProfile, 2)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.True(t, decision.Flags.IsFollowing)
	})

	t.Run("private profile visible to its owner", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(2), types.KindUserProfile, 2)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.True(t, decision.Flags.IsSelf)
	})

	t.Run("unknown user resolves not found", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(1), types.KindUserProfile, 99)
		require.Equal(t, types.OutcomeNotFound, decision.Outcome)
	})
}

func TestResolveFollowLists(t *testing.T) {
	r := NewLocalResolver(seedDatastore(t))
	t.Cleanup(r.Close)

	// follow lists are gated exactly like the profile summary
	for _, kind := range []types.Kind{types.KindUserFollowing, types.KindUserFollowers} {
		decision := resolve(t, r, types.Guest(), kind, 2)
		require.Equal(t, types.OutcomeDeny, decision.Outcome)
		require.Equal(t, types.ReasonFollowRequired, decision.Reason)

		decision = resolve(t, r, types.UserActor(1), kind, 2)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
	}
}

func TestResolveCircle(t *testing.T) {
	r := NewLocalResolver(seedDatastore(t))
	t.Cleanup(r.Close)

	t.Run("public circle visible to anyone", func(t *testing.T) {
		require.Equal(t, types.OutcomeAllow, resolve(t, r, types.Guest(), types.KindCircle, 11).Outcome)
		require.Equal(t, types.OutcomeAllow, resolve(t, r, types.UserActor(1), types.KindCircle, 11).Outcome)
	})

	t.Run("private circle hidden from non-members", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(3), types.KindCircle, 10)
		require.Equal(t, types.OutcomeDeny, decision.Outcome)
		require.Equal(t, types.ReasonPrivateCircle, decision.Reason)
	})

	t.Run("private circle hidden from guests", func(t *testing.T) {
		decision := resolve(t, r, types.Guest(), types.KindCircle, 10)
		require.Equal(t, types.OutcomeDeny, decision.Outcome)
	})

	t.Run("private circle visible to members", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(1), types.KindCircle, 10)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.True(t, decision.Flags.IsMember)
		require.False(t, decision.Flags.IsOwner)
	})

	t.Run("creator is membership equivalent without a row", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(2), types.KindCircle, 10)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.True(t, decision.Flags.IsOwner)
		require.True(t, decision.Flags.IsMember)
	})

	t.Run("unknown circle resolves not found", func(t *testing.T) {
		require.Equal(t, types.OutcomeNotFound, resolve(t, r, types.UserActor(1), types.KindCircle, 99).Outcome)
	})
}

func TestResolveAlbum(t *testing.T) {
	r := NewLocalResolver(seedDatastore(t))
	t.Cleanup(r.Close)

	t.Run("public album visible to anyone with liked flag", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(1), types.KindAlbum, 20)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.True(t, decision.Flags.Liked)

		decision = resolve(t, r, types.Guest(), types.KindAlbum, 20)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.False(t, decision.Flags.Liked)
	})

	t.Run("private album without circle visible only to creator", func(t *testing.T) {
		require.Equal(t, types.OutcomeAllow, resolve(t, r, types.UserActor(2), types.KindAlbum, 21).Outcome)

		decision := resolve(t, r, types.UserActor(1), types.KindAlbum, 21)
		require.Equal(t, types.OutcomeDeny, decision.Outcome)
		require.Equal(t, types.ReasonPrivateAlbum, decision.Reason)
	})

	t.Run("private album in private circle visible to circle members", func(t *testing.T) {
		decision := resolve(t, r, types.UserActor(1), types.KindAlbum, 22)
		require.Equal(t, types.OutcomeAllow, decision.Outcome)
		require.True(t, decision.Flags.IsMember)

		require.Equal(t, types.OutcomeDeny, resolve(t, r, types.UserActor(3), types.KindAlbum, 22).Outcome)
	})

	t.Run("private album in public circle visible to any signed-in actor", func(t *testing.T) {
		require.Equal(t, types.OutcomeAllow, resolve(t, r, types.UserActor(2), types.KindAlbum, 23).Outcome)
	})

	t.Run("guests never gain access through circles", func(t *testing.T) {
		require.Equal(t, types.OutcomeDeny, resolve(t, r, types.Guest(), types.KindAlbum, 23).Outcome)
	})

	t.Run("unknown album resolves not found", func(t *testing.T) {
		require.Equal(t, types.OutcomeNotFound, resolve(t, r, types.UserActor(1), types.KindAlbum, 99).Outcome)
	})
}

func TestResolveAlbumDependsOnItsCircle(t *testing.T) {
	r := NewLocalResolver(seedDatastore(t))
	t.Cleanup(r.Close)

	resp, err := r.Resolve(context.Background(), &Request{
		Actor:  types.UserActor(1),
		Target: types.Target{Kind: types.KindAlbum, ID: 22},
	})
	require.NoError(t, err)
	require.Contains(t, resp.DependsOn, types.AlbumRef(22))
	require.Contains(t, resp.DependsOn, types.CircleRef(10))
}

func TestResolveUnknownKind(t *testing.T) {
	r := NewLocalResolver(seedDatastore(t))
	t.Cleanup(r.Close)

	_, err := r.Resolve(context.Background(), &Request{
		Actor:  types.UserActor(1),
		Target: types.Target{Kind: "story", ID: 1},
	})
	require.Error(t, err)
}
