package engine

import "github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"

// Mutation hooks. The application's write path calls these after a
// successful mutation so cached decisions derived from the mutated
// entity are dropped for every actor, not just the mutating one.
// Visibility for other actors may change too: a circle flipping from
// private to public retires every actor's cached denial.

// MembershipChanged reports that a membership row for (userID, circleID)
// was written or deleted.
func (e *Engine) MembershipChanged(userID, circleID int64) {
	_ = userID // decisions are keyed by the circle, not the member
	e.Invalidate(types.CircleRef(circleID))
}

// FollowChanged reports that the follow edge follower -> followee was
// written or deleted. Views of the followee (profile summary, follow
// lists, follow-status flags) depend on the edge.
func (e *Engine) FollowChanged(followerID, followingID int64) {
	_ = followerID
	e.Invalidate(types.UserRef(followingID))
}

// CircleChanged reports a mutation to the circle row itself, including
// privacy flips and ownership transfers.
func (e *Engine) CircleChanged(id int64) {
	e.Invalidate(types.CircleRef(id))
}

// AlbumChanged reports a mutation to the album row itself, including
// privacy flips, ownership transfers and circle re-attachment.
func (e *Engine) AlbumChanged(id int64) {
	e.Invalidate(types.AlbumRef(id))
}

// ProfileChanged reports a mutation to a user row, including privacy
// flips.
func (e *Engine) ProfileChanged(id int64) {
	e.Invalidate(types.UserRef(id))
}

// AlbumLikeChanged reports that a like row for (userID, albumID) was
// written or deleted.
func (e *Engine) AlbumLikeChanged(userID, albumID int64) {
	_ = userID
	e.Invalidate(types.AlbumRef(albumID))
}
