package types

// Outcome is the terminal result of a visibility resolution.
type Outcome int

const (
	// OutcomeAllow means the actor may see the target.
	OutcomeAllow Outcome = iota
	// OutcomeDeny means the target exists but the actor lacks visibility.
	OutcomeDeny
	// OutcomeNotFound means the target does not exist. Existence is checked
	// before visibility; the transport mapping of NotFound vs Deny is left
	// to the handler layer.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllow:
		return "allow"
	case OutcomeDeny:
		return "deny"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// DenyReason names the rule that produced a deny outcome. Reasons are
// stable identifiers the UI layer keys prompts off of.
type DenyReason string

const (
	ReasonPrivateCircle  DenyReason = "access_denied_private_circle"
	ReasonPrivateAlbum   DenyReason = "access_denied_private_album"
	ReasonFollowRequired DenyReason = "private_profile_follow_required"
)

// Flags are the per-decision derived view annotations. For guests every
// flag is false, never an error.
type Flags struct {
	// IsSelf is set when the target is the actor's own profile or list.
	IsSelf bool `json:"is_self"`
	// IsOwner is set when the actor created the target circle or album.
	IsOwner bool `json:"is_owner"`
	// IsFollowing is set when a follow edge actor -> target user exists.
	IsFollowing bool `json:"is_following"`
	// IsMember is set when the actor has standing in the target circle.
	IsMember bool `json:"is_member"`
	// Liked is set when the actor has liked the target album.
	Liked bool `json:"liked"`
}

// Decision is the result of resolving one target for one actor.
type Decision struct {
	Outcome Outcome    `json:"outcome"`
	Reason  DenyReason `json:"reason,omitempty"`
	Flags   Flags      `json:"flags"`
}

// Allowed reports whether the decision grants visibility.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// AllowDecision returns an allow decision carrying the given flags.
func AllowDecision(flags Flags) Decision {
	return Decision{Outcome: OutcomeAllow, Flags: flags}
}

// DenyDecision returns a deny decision with the given reason and flags.
func DenyDecision(reason DenyReason, flags Flags) Decision {
	return Decision{Outcome: OutcomeDeny, Reason: reason, Flags: flags}
}

// NotFoundDecision returns the decision for an absent target.
func NotFoundDecision() Decision {
	return Decision{Outcome: OutcomeNotFound}
}
