package core

import (
	"context"

	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
	"github.com/opencreds/boostnet/internal/service"
)

// linkGuard checks that the caller may rewire the edge between the two
// boosts: they need edit rights on both ends.
func (s *AppService) linkGuard(ctx context.Context, parentURI, childURI, caller string) (parent, child domain.Boost, err error) {
	parent, err = s.loadBoost(ctx, parentURI)
	if err != nil {
		return
	}
	child, err = s.loadBoost(ctx, childURI)
	if err != nil {
		return
	}

	for _, boost := range []domain.Boost{parent, child} {
		var eff domain.Permissions
		eff, err = s.effectivePermissions(ctx, boost, caller)
		if err != nil {
			return
		}
		if !eff.CanEdit {
			err = service.ErrUnauthorized
			return
		}
	}
	return
}

func (s *AppService) MakeBoostParent(ctx context.Context, caller, parentURI, childURI string) error {
	parent, child, err := s.linkGuard(ctx, parentURI, childURI, caller)
	if err != nil {
		return err
	}
	return mapErr(s.DB.MakeParent(ctx, parent.ID, child.ID))
}

func (s *AppService) RemoveBoostParent(ctx context.Context, caller, parentURI, childURI string) error {
	parent, child, err := s.linkGuard(ctx, parentURI, childURI, caller)
	if err != nil {
		return err
	}
	return mapErr(s.DB.RemoveParent(ctx, parent.ID, child.ID))
}

// normalizeGenerations turns the caller-facing depth parameter into the
// storage one: zero means direct relatives only, negative lifts the bound.
func normalizeGenerations(generations int64) int64 {
	switch {
	case generations < 0:
		return db.InfiniteGenerations
	case generations == 0:
		return 1
	default:
		return generations
	}
}

func (s *AppService) relatives(ctx context.Context, uri string, generations int64, query match.Query, down bool) ([]domain.Boost, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return nil, err
	}

	var related []domain.Boost
	if down {
		related, err = s.DB.Children(ctx, boost.ID, normalizeGenerations(generations))
	} else {
		related, err = s.DB.Parents(ctx, boost.ID, normalizeGenerations(generations))
	}
	if err != nil {
		return nil, err
	}
	return filterBoosts(related, query), nil
}

func (s *AppService) GetBoostChildren(ctx context.Context, caller, uri string, generations int64, query match.Query, limit int, cursor string) ([]service.Boost, string, error) {
	return s.pagedRelatives(ctx, uri, generations, query, limit, cursor, true)
}

func (s *AppService) GetBoostParents(ctx context.Context, caller, uri string, generations int64, query match.Query, limit int, cursor string) ([]service.Boost, string, error) {
	return s.pagedRelatives(ctx, uri, generations, query, limit, cursor, false)
}

func (s *AppService) pagedRelatives(ctx context.Context, uri string, generations int64, query match.Query, limit int, cursor string, down bool) ([]service.Boost, string, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	related, err := s.relatives(ctx, uri, generations, query, down)
	if err != nil {
		return nil, "", err
	}
	return s.pageBoosts(afterCursor(related, after), clampLimit(limit))
}

func (s *AppService) CountBoostChildren(ctx context.Context, caller, uri string, generations int64, query match.Query) (int, error) {
	related, err := s.relatives(ctx, uri, generations, query, true)
	if err != nil {
		return 0, err
	}
	return len(related), nil
}

func (s *AppService) CountBoostParents(ctx context.Context, caller, uri string, generations int64, query match.Query) (int, error) {
	related, err := s.relatives(ctx, uri, generations, query, false)
	if err != nil {
		return 0, err
	}
	return len(related), nil
}
