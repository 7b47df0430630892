package resolver

import (
	"context"
	"fmt"
	"slices"

	"github.com/sourcegraph/conc/pool"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

// ResolveMany implements Resolver. It deduplicates the id set, loads the
// resource rows and the actor's relation rows with a constant number of
// store queries regardless of the set size, and then applies the same
// rule chain as Resolve per id in memory.
func (r *LocalResolver) ResolveMany(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	ctx, span := tracer.Start(ctx, "localResolver.ResolveMany")
	defer span.End()

	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown target kind %q", req.Kind)
	}

	ids := append([]int64(nil), req.IDs...)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	switch req.Kind {
	case types.KindCircle:
		return r.resolveManyCircles(ctx, req.Actor, ids)
	case types.KindAlbum:
		return r.resolveManyAlbums(ctx, req.Actor, ids)
	default:
		return r.resolveManyUserViews(ctx, req.Actor, ids)
	}
}

func (r *LocalResolver) resolveManyUserViews(ctx context.Context, actor types.Actor, ids []int64) (*BatchResponse, error) {
	var (
		users     []*storage.User
		following = make(map[int64]bool, len(ids))
	)

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		users, err = r.ds.GetUsers(ctx, ids)
		return err
	})
	if actorID, err := actor.ID(); err == nil {
		p.Go(func(ctx context.Context) error {
			edges, err := r.ds.ListFollowEdges(ctx, actorID, storage.FollowDirectionOutgoing, ids)
			if err != nil {
				return err
			}
			for _, edge := range edges {
				following[edge.FollowingID] = true
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]*storage.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	resp := &BatchResponse{Results: make(map[int64]types.Decision, len(ids))}
	for _, id := range ids {
		resp.DependsOn = append(resp.DependsOn, types.UserRef(id))

		user, ok := byID[id]
		if !ok {
			resp.Results[id] = types.NotFoundDecision()
			continue
		}

		flags := types.Flags{
			IsSelf:      actor.Is(user.ID),
			IsFollowing: following[user.ID],
		}
		if flags.IsSelf || !user.ProfilePrivate || flags.IsFollowing {
			resp.Results[id] = types.AllowDecision(flags)
		} else {
			resp.Results[id] = types.DenyDecision(types.ReasonFollowRequired, flags)
		}
	}
	return resp, nil
}

func (r *LocalResolver) resolveManyCircles(ctx context.Context, actor types.Actor, ids []int64) (*BatchResponse, error) {
	var (
		circles []*storage.Circle
		member  = make(map[int64]bool, len(ids))
	)

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		circles, err = r.ds.GetCircles(ctx, ids)
		return err
	})
	if actorID, err := actor.ID(); err == nil {
		p.Go(func(ctx context.Context) error {
			memberships, err := r.ds.ListMemberships(ctx, actorID, ids)
			if err != nil {
				return err
			}
			for _, membership := range memberships {
				member[membership.CircleID] = true
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]*storage.Circle, len(circles))
	for _, circle := range circles {
		byID[circle.ID] = circle
	}

	resp := &BatchResponse{Results: make(map[int64]types.Decision, len(ids))}
	for _, id := range ids {
		resp.DependsOn = append(resp.DependsOn, types.CircleRef(id))

		circle, ok := byID[id]
		if !ok {
			resp.Results[id] = types.NotFoundDecision()
			continue
		}

		flags := types.Flags{IsOwner: actor.Is(circle.CreatorID)}
		flags.IsMember = flags.IsOwner || member[circle.ID]

		if !circle.Private || flags.IsMember {
			resp.Results[id] = types.AllowDecision(flags)
		} else {
			resp.Results[id] = types.DenyDecision(types.ReasonPrivateCircle, flags)
		}
	}
	return resp, nil
}

// resolveManyAlbums needs one extra constant query compared to the other
// kinds: album rows are fetched first to learn the referenced circles,
// then circles, memberships and likes load concurrently.
func (r *LocalResolver) resolveManyAlbums(ctx context.Context, actor types.Actor, ids []int64) (*BatchResponse, error) {
	albums, err := r.ds.GetAlbums(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*storage.Album, len(albums))
	circleIDSet := make(map[int64]struct{})
	for _, album := range albums {
		byID[album.ID] = album
		if album.CircleID != 0 {
			circleIDSet[album.CircleID] = struct{}{}
		}
	}
	circleIDs := make([]int64, 0, len(circleIDSet))
	for id := range circleIDSet {
		circleIDs = append(circleIDs, id)
	}

	var (
		circleByID = make(map[int64]*storage.Circle, len(circleIDs))
		member     = make(map[int64]bool, len(circleIDs))
		liked      = make(map[int64]bool, len(ids))
	)

	p := pool.New().WithContext(ctx)
	if len(circleIDs) > 0 {
		p.Go(func(ctx context.Context) error {
			circles, err := r.ds.GetCircles(ctx, circleIDs)
			if err != nil {
				return err
			}
			for _, circle := range circles {
				circleByID[circle.ID] = circle
			}
			return nil
		})
	}
	if actorID, err := actor.ID(); err == nil {
		if len(circleIDs) > 0 {
			p.Go(func(ctx context.Context) error {
				memberships, err := r.ds.ListMemberships(ctx, actorID, circleIDs)
				if err != nil {
					return err
				}
				for _, membership := range memberships {
					member[membership.CircleID] = true
				}
				return nil
			})
		}
		p.Go(func(ctx context.Context) error {
			likes, err := r.ds.ListAlbumLikes(ctx, actorID, ids)
			if err != nil {
				return err
			}
			for _, like := range likes {
				liked[like.AlbumID] = true
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	resp := &BatchResponse{Results: make(map[int64]types.Decision, len(ids))}
	for circleID := range circleIDSet {
		resp.DependsOn = append(resp.DependsOn, types.CircleRef(circleID))
	}
	for _, id := range ids {
		resp.DependsOn = append(resp.DependsOn, types.AlbumRef(id))

		album, ok := byID[id]
		if !ok {
			resp.Results[id] = types.NotFoundDecision()
			continue
		}

		flags := types.Flags{
			IsOwner: actor.Is(album.CreatorID),
			Liked:   liked[album.ID],
		}
		circleAccess := false
		if circle, ok := circleByID[album.CircleID]; ok {
			flags.IsMember = actor.Is(circle.CreatorID) || member[circle.ID]
			circleAccess = !actor.IsGuest() && (!circle.Private || flags.IsMember)
		}

		if !album.Private || flags.IsOwner || circleAccess {
			resp.Results[id] = types.AllowDecision(flags)
		} else {
			resp.Results[id] = types.DenyDecision(types.ReasonPrivateAlbum, flags)
		}
	}
	return resp, nil
}
