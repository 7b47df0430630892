package storage

// Role is the standing a membership grants within a circle.
type Role string

const (
	RoleCreator Role = "CREATOR"
	RoleMember  Role = "MEMBER"
)

// User is a profile row. Username is the unique, immutable lookup key.
type User struct {
	ID             int64
	Username       string
	Name           string
	ProfilePrivate bool
}

// Circle groups users via memberships and owns zero or more albums.
type Circle struct {
	ID        int64
	CreatorID int64
	Name      string
	Private   bool
}

// Album is a media collection. A CircleID of zero means the album is not
// attached to a circle and its visibility depends only on Private and the
// creator identity.
type Album struct {
	ID        int64
	CreatorID int64
	CircleID  int64
	Title     string
	Private   bool
}

// Membership grants a user standing within a circle. At most one row
// exists per (user, circle) pair. A circle's creator is membership
// equivalent even without a row; resolution must not depend on one being
// present.
type Membership struct {
	UserID   int64
	CircleID int64
	Role     Role
}

// Follow is a directed edge from follower to followee. At most one edge
// exists per ordered pair and self-follows are rejected on write.
type Follow struct {
	FollowerID  int64
	FollowingID int64
}

// AlbumLike marks that a user liked an album. It backs the "liked"
// derived flag on album views.
type AlbumLike struct {
	UserID  int64
	AlbumID int64
}
