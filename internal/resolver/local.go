package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

var tracer = otel.Tracer("circlevis/internal/resolver")

// LocalResolver evaluates the visibility rule chain directly against the
// relationship store. It is pure decision logic: the store calls are its
// only suspension points and it holds no mutable state of its own.
//
// Rules, first match wins:
//  1. targets that are not privacy gated resolve Allow
//  2. the owner/creator of the target, or the profile owner, resolves Allow
//  3. private circles require creator identity or a membership row
//  4. private albums require creator identity, or circle access when the
//     album belongs to a circle
//  5. views of a private profile require a follow edge actor -> profile
//
// Guests fail every rule except rule 1 and always carry false derived
// flags. Absent targets resolve NotFound before any privacy evaluation.
type LocalResolver struct {
	ds     storage.RelationshipStore
	logger logger.Logger
}

var _ Resolver = (*LocalResolver)(nil)

// LocalResolverOpt configures a LocalResolver.
type LocalResolverOpt func(*LocalResolver)

// WithLocalLogger sets the logger for the local resolver.
func WithLocalLogger(l logger.Logger) LocalResolverOpt {
	return func(r *LocalResolver) {
		r.logger = l
	}
}

// NewLocalResolver builds a resolver evaluating rules against ds.
func NewLocalResolver(ds storage.RelationshipStore, opts ...LocalResolverOpt) *LocalResolver {
	r := &LocalResolver{
		ds:     ds,
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close implements Resolver.
func (r *LocalResolver) Close() {}

// Resolve implements Resolver.
func (r *LocalResolver) Resolve(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "localResolver.Resolve")
	defer span.End()

	if !req.Target.Kind.Valid() {
		return nil, fmt.Errorf("unknown target kind %q", req.Target.Kind)
	}

	switch req.Target.Kind {
	case types.KindCircle:
		return r.resolveCircle(ctx, req.Actor, req.Target.ID)
	case types.KindAlbum:
		return r.resolveAlbum(ctx, req.Actor, req.Target.ID)
	default:
		return r.resolveUserView(ctx, req.Actor, req.Target.ID)
	}
}

// resolveUserView covers the profile summary and both follow-list views.
// All three are gated the same way: private profiles require the actor to
// follow the profile owner.
func (r *LocalResolver) resolveUserView(ctx context.Context, actor types.Actor, userID int64) (*Response, error) {
	refs := []types.EntityRef{types.UserRef(userID)}

	user, err := r.ds.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Response{Decision: types.NotFoundDecision(), DependsOn: refs}, nil
		}
		return nil, err
	}

	flags := types.Flags{IsSelf: actor.Is(user.ID)}
	if !actor.IsGuest() && !flags.IsSelf {
		flags.IsFollowing, err = r.isFollowing(ctx, actor, user.ID)
		if err != nil {
			return nil, err
		}
	}

	if flags.IsSelf || !user.ProfilePrivate || flags.IsFollowing {
		return &Response{Decision: types.AllowDecision(flags), DependsOn: refs}, nil
	}

	return &Response{Decision: types.DenyDecision(types.ReasonFollowRequired, flags), DependsOn: refs}, nil
}

func (r *LocalResolver) resolveCircle(ctx context.Context, actor types.Actor, circleID int64) (*Response, error) {
	refs := []types.EntityRef{types.CircleRef(circleID)}

	circle, err := r.ds.GetCircle(ctx, circleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Response{Decision: types.NotFoundDecision(), DependsOn: refs}, nil
		}
		return nil, err
	}

	flags := types.Flags{IsOwner: actor.Is(circle.CreatorID)}
	flags.IsMember, err = r.isMember(ctx, actor, circle)
	if err != nil {
		return nil, err
	}

	if !circle.Private || flags.IsMember {
		return &Response{Decision: types.AllowDecision(flags), DependsOn: refs}, nil
	}

	return &Response{Decision: types.DenyDecision(types.ReasonPrivateCircle, flags), DependsOn: refs}, nil
}

func (r *LocalResolver) resolveAlbum(ctx context.Context, actor types.Actor, albumID int64) (*Response, error) {
	refs := []types.EntityRef{types.AlbumRef(albumID)}

	album, err := r.ds.GetAlbum(ctx, albumID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Response{Decision: types.NotFoundDecision(), DependsOn: refs}, nil
		}
		return nil, err
	}

	flags := types.Flags{IsOwner: actor.Is(album.CreatorID)}
	if !actor.IsGuest() {
		flags.Liked, err = r.hasLiked(ctx, actor, album.ID)
		if err != nil {
			return nil, err
		}
	}

	// A circle album's decision also depends on that circle: a membership
	// change or a privacy flip on the circle must invalidate it.
	circleAccess := false
	if album.CircleID != 0 {
		refs = append(refs, types.CircleRef(album.CircleID))

		circle, err := r.ds.GetCircle(ctx, album.CircleID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if circle != nil {
			flags.IsMember, err = r.isMember(ctx, actor, circle)
			if err != nil {
				return nil, err
			}
			// circle-level access, not bare membership: a public circle
			// grants it to any signed-in actor
			circleAccess = !actor.IsGuest() && (!circle.Private || flags.IsMember)
		}
	}

	if !album.Private || flags.IsOwner || circleAccess {
		return &Response{Decision: types.AllowDecision(flags), DependsOn: refs}, nil
	}

	return &Response{Decision: types.DenyDecision(types.ReasonPrivateAlbum, flags), DependsOn: refs}, nil
}

// isMember reports membership-equivalent standing: the creator counts as
// a member regardless of row presence.
func (r *LocalResolver) isMember(ctx context.Context, actor types.Actor, circle *storage.Circle) (bool, error) {
	if actor.Is(circle.CreatorID) {
		return true, nil
	}

	actorID, err := actor.ID()
	if err != nil {
		// guests hold no memberships
		return false, nil
	}

	membership, err := r.ds.GetMembership(ctx, actorID, circle.ID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

func (r *LocalResolver) isFollowing(ctx context.Context, actor types.Actor, userID int64) (bool, error) {
	actorID, err := actor.ID()
	if err != nil {
		return false, nil
	}

	edges, err := r.ds.ListFollowEdges(ctx, actorID, storage.FollowDirectionOutgoing, []int64{userID})
	if err != nil {
		return false, err
	}
	return len(edges) > 0, nil
}

func (r *LocalResolver) hasLiked(ctx context.Context, actor types.Actor, albumID int64) (bool, error) {
	actorID, err := actor.ID()
	if err != nil {
		return false, nil
	}

	likes, err := r.ds.ListAlbumLikes(ctx, actorID, []int64{albumID})
	if err != nil {
		return false, err
	}
	return len(likes) > 0, nil
}
