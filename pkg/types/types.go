// Package types defines the shared vocabulary of the visibility engine:
// actors, resource targets, entity references and decisions.
package types

import (
	"fmt"
	"strconv"
)

// Kind identifies the kind of view a caller is asking visibility for.
type Kind string

const (
	// KindUserProfile is a user's profile summary.
	KindUserProfile Kind = "user_profile"
	// KindCircle is a circle and its member-visible content.
	KindCircle Kind = "circle"
	// KindAlbum is an album and its media.
	KindAlbum Kind = "album"
	// KindUserFollowing is the list of users a user follows.
	KindUserFollowing Kind = "user_following"
	// KindUserFollowers is the list of users following a user.
	KindUserFollowers Kind = "user_followers"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindUserProfile, KindCircle, KindAlbum, KindUserFollowing, KindUserFollowers:
		return true
	}
	return false
}

// Entity returns the durable entity kind a view of kind k is keyed by.
// Both follow-list kinds are views over the user entity.
func (k Kind) Entity() EntityKind {
	switch k {
	case KindCircle:
		return EntityCircle
	case KindAlbum:
		return EntityAlbum
	default:
		return EntityUser
	}
}

// Target is the resource descriptor a visibility decision is made against.
type Target struct {
	Kind Kind
	ID   int64
}

func (t Target) String() string {
	return string(t.Kind) + ":" + strconv.FormatInt(t.ID, 10)
}

// EntityKind names one of the durable entities owned by the relationship
// store.
type EntityKind string

const (
	EntityUser   EntityKind = "user"
	EntityCircle EntityKind = "circle"
	EntityAlbum  EntityKind = "album"
)

// EntityRef identifies one durable entity. Cached decisions record the
// refs they were derived from so that mutations to any of them invalidate
// the decision.
type EntityRef struct {
	Kind EntityKind
	ID   int64
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// UserRef returns the entity ref for a user.
func UserRef(id int64) EntityRef {
	return EntityRef{Kind: EntityUser, ID: id}
}

// CircleRef returns the entity ref for a circle.
func CircleRef(id int64) EntityRef {
	return EntityRef{Kind: EntityCircle, ID: id}
}

// AlbumRef returns the entity ref for an album.
func AlbumRef(id int64) EntityRef {
	return EntityRef{Kind: EntityAlbum, ID: id}
}
