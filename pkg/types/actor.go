package types

import "errors"

// ErrUnauthenticated is returned when an operation requires a concrete
// actor but only a guest is present.
var ErrUnauthenticated = errors.New("a signed-in user is required")

// Actor is the identity on whose behalf a visibility decision is made.
// The zero value is a guest.
type Actor struct {
	id int64
}

// Guest returns the anonymous actor.
func Guest() Actor {
	return Actor{}
}

// UserActor returns the actor for the given user id.
func UserActor(id int64) Actor {
	return Actor{id: id}
}

// IsGuest reports whether the actor is anonymous.
func (a Actor) IsGuest() bool {
	return a.id == 0
}

// ID returns the concrete user id behind the actor, or ErrUnauthenticated
// for guests.
func (a Actor) ID() (int64, error) {
	if a.IsGuest() {
		return 0, ErrUnauthenticated
	}
	return a.id, nil
}

// Is reports whether the actor is the given user.
func (a Actor) Is(userID int64) bool {
	return !a.IsGuest() && a.id == userID
}
