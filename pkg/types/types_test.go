package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActor(t *testing.T) {
	guest := Guest()
	require.True(t, guest.IsGuest())
	_, err := guest.ID()
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.False(t, guest.Is(0))

	alice := UserActor(1)
	require.False(t, alice.IsGuest())
	id, err := alice.ID()
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.True(t, alice.Is(1))
	require.False(t, alice.Is(2))
}

func TestKindEntity(t *testing.T) {
	require.Equal(t, EntityUser, KindUserProfile.Entity())
	require.Equal(t, EntityUser, KindUserFollowing.Entity())
	require.Equal(t, EntityUser, KindUserFollowers.Entity())
	require.Equal(t, EntityCircle, KindCircle.Entity())
	require.Equal(t, EntityAlbum, KindAlbum.Entity())
}

func TestKindValid(t *testing.T) {
	for _, kind := range []Kind{KindUserProfile, KindCircle, KindAlbum, KindUserFollowing, KindUserFollowers} {
		require.True(t, kind.Valid())
	}
	require.False(t, Kind("story").Valid())
	require.False(t, Kind("").Valid())
}

func TestDecisionConstructors(t *testing.T) {
	allow := AllowDecision(Flags{IsSelf: true})
	require.Equal(t, OutcomeAllow, allow.Outcome)
	require.True(t, allow.Allowed())
	require.Empty(t, allow.Reason)

	deny := DenyDecision(ReasonPrivateCircle, Flags{})
	require.Equal(t, OutcomeDeny, deny.Outcome)
	require.False(t, deny.Allowed())
	require.Equal(t, ReasonPrivateCircle, deny.Reason)

	notFound := NotFoundDecision()
	require.Equal(t, OutcomeNotFound, notFound.Outcome)
	require.False(t, notFound.Allowed())
}

func TestEntityRefString(t *testing.T) {
	require.Equal(t, "user:7", UserRef(7).String())
	require.Equal(t, "circle:10", CircleRef(10).String())
	require.Equal(t, "album:20", AlbumRef(20).String())
}
