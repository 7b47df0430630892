package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

func TestActorScope(t *testing.T) {
	require.Equal(t, "guest", ActorScope(types.Guest()))
	require.Equal(t, "u:42", ActorScope(types.UserActor(42)))
}

func TestViewKeyIsActorScoped(t *testing.T) {
	target := types.Target{Kind: types.KindUserProfile, ID: 7}

	alice := ViewKey(types.UserActor(1), target, nil)
	bob := ViewKey(types.UserActor(2), target, nil)
	guest := ViewKey(types.Guest(), target, nil)

	require.NotEqual(t, alice, bob)
	require.NotEqual(t, alice, guest)
	require.NotEqual(t, bob, guest)
}

func TestViewKeyStartsWithEntityPrefix(t *testing.T) {
	tests := []struct {
		kind types.Kind
		ref  types.EntityRef
	}{
		{types.KindUserProfile, types.UserRef(7)},
		{types.KindUserFollowing, types.UserRef(7)},
		{types.KindUserFollowers, types.UserRef(7)},
		{types.KindCircle, types.CircleRef(7)},
		{types.KindAlbum, types.AlbumRef(7)},
	}
	for _, test := range tests {
		key := ViewKey(types.UserActor(1), types.Target{Kind: test.kind, ID: 7}, nil)
		require.True(t, strings.HasPrefix(key, EntityPrefix(test.ref)),
			"key %q must start with %q", key, EntityPrefix(test.ref))
	}
}

func TestViewKeyDistinguishesKindsOfSameEntity(t *testing.T) {
	actor := types.UserActor(1)

	profile := ViewKey(actor, types.Target{Kind: types.KindUserProfile, ID: 7}, nil)
	following := ViewKey(actor, types.Target{Kind: types.KindUserFollowing, ID: 7}, nil)
	followers := ViewKey(actor, types.Target{Kind: types.KindUserFollowers, ID: 7}, nil)

	require.NotEqual(t, profile, following)
	require.NotEqual(t, following, followers)
}

func TestBatchKeyStableUnderPermutation(t *testing.T) {
	actor := types.UserActor(3)

	a := BatchKey(actor, types.KindAlbum, []int64{3, 1, 2}, nil)
	b := BatchKey(actor, types.KindAlbum, []int64{2, 3, 1}, nil)
	c := BatchKey(actor, types.KindAlbum, []int64{1, 1, 2, 3, 3}, nil)

	require.Equal(t, a, b)
	require.Equal(t, a, c)

	d := BatchKey(actor, types.KindAlbum, []int64{1, 2, 4}, nil)
	require.NotEqual(t, a, d)
}

func TestBatchKeyDoesNotMutateInput(t *testing.T) {
	ids := []int64{3, 1, 2}
	_ = BatchKey(types.Guest(), types.KindCircle, ids, nil)
	require.Equal(t, []int64{3, 1, 2}, ids)
}

func TestParamsFingerprint(t *testing.T) {
	actor := types.UserActor(1)
	target := types.Target{Kind: types.KindUserFollowing, ID: 7}

	bare := ViewKey(actor, target, nil)
	empty := ViewKey(actor, target, map[string]string{})
	require.Equal(t, bare, empty)

	paged := ViewKey(actor, target, map[string]string{"page": "2", "size": "50"})
	require.NotEqual(t, bare, paged)

	reordered := ViewKey(actor, target, map[string]string{"size": "50", "page": "2"})
	require.Equal(t, paged, reordered)
}

func TestInvalidationKeyDistinctFromViewKeys(t *testing.T) {
	ref := types.CircleRef(9)
	require.False(t, strings.HasPrefix(InvalidationKey(ref), EntityPrefix(ref)))
}
