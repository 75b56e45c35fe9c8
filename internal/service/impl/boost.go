package core

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
	"github.com/opencreds/boostnet/internal/service"
	"github.com/opencreds/boostnet/internal/validate"
	"github.com/rs/zerolog/log"
)

func (s *AppService) newBoost(caller string, input service.BoostInput) (domain.Boost, error) {
	if err := validate.BoostName(input.Name); err != nil {
		return domain.Boost{}, service.ErrBadRequest
	}

	status := input.Status
	if status == "" {
		status = domain.StatusLive
	}
	if status != domain.StatusDraft && status != domain.StatusLive {
		return domain.Boost{}, service.ErrBadRequest
	}

	return domain.Boost{
		ID:               newID(),
		Status:           status,
		Name:             input.Name,
		Category:         input.Category,
		Type:             input.Type,
		Credential:       input.Credential,
		ClaimPermissions: input.ClaimPermissions,
		CreatedBy:        caller,
		Created:          now(),
	}, nil
}

func (s *AppService) CreateBoost(ctx context.Context, caller string, input service.BoostInput) (string, error) {
	boost, err := s.newBoost(caller, input)
	if err != nil {
		return "", err
	}
	if err := s.DB.CreateBoost(ctx, boost); err != nil {
		return "", mapErr(err)
	}
	return s.boostURI(boost.ID), nil
}

func (s *AppService) CreateChildBoost(ctx context.Context, caller, parentURI string, input service.BoostInput) (string, error) {
	parent, err := s.loadBoost(ctx, parentURI)
	if err != nil {
		return "", err
	}

	child, err := s.newBoost(caller, input)
	if err != nil {
		return "", err
	}
	ok, err := s.canCreateChild(ctx, parent, caller, child.Attributes())
	if err != nil {
		return "", err
	}
	if !ok {
		return "", service.ErrUnauthorized
	}

	if err := s.DB.CreateBoost(ctx, child); err != nil {
		return "", mapErr(err)
	}
	if err := s.DB.MakeParent(ctx, parent.ID, child.ID); err != nil {
		if derr := s.DB.DeleteBoost(ctx, child.ID); derr != nil {
			log.Error().Err(derr).Str("boost", child.ID).Msg("orphaned boost after failed edge insert")
		}
		return "", mapErr(err)
	}
	return s.boostURI(child.ID), nil
}

func (s *AppService) UpdateBoost(ctx context.Context, caller, uri string, updates service.BoostUpdate) error {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return err
	}
	eff, err := s.effectivePermissions(ctx, boost, caller)
	if err != nil {
		return err
	}
	if !eff.CanEdit {
		return service.ErrUnauthorized
	}

	if boost.Status == domain.StatusLive {
		// Once live only the status field remains writable, and a live
		// boost can never go back to draft.
		if updates.Name != nil || updates.Category != nil || updates.Type != nil || updates.Credential != nil {
			return service.ErrForbidden
		}
		if updates.Status != nil && *updates.Status != domain.StatusLive {
			return service.ErrForbidden
		}
		return nil
	}

	if updates.Name != nil {
		if err := validate.BoostName(*updates.Name); err != nil {
			return service.ErrBadRequest
		}
		boost.Name = *updates.Name
	}
	if updates.Category != nil {
		boost.Category = *updates.Category
	}
	if updates.Type != nil {
		boost.Type = *updates.Type
	}
	if updates.Credential != nil {
		boost.Credential = updates.Credential
	}
	if updates.Status != nil {
		if *updates.Status != domain.StatusDraft && *updates.Status != domain.StatusLive {
			return service.ErrBadRequest
		}
		boost.Status = *updates.Status
	}
	return mapErr(s.DB.UpdateBoost(ctx, boost))
}

func (s *AppService) DeleteBoost(ctx context.Context, caller, uri string) error {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return err
	}
	if boost.CreatedBy != caller {
		return service.ErrUnauthorized
	}

	children, err := s.DB.Children(ctx, boost.ID, 1)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return service.ErrConflict
	}
	records, err := s.DB.CredentialsForBoost(ctx, boost.ID)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return service.ErrConflict
	}

	return mapErr(s.DB.DeleteBoost(ctx, boost.ID))
}

func (s *AppService) GetBoost(ctx context.Context, caller, uri string) (service.Boost, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return service.Boost{}, err
	}
	return service.Boost{Boost: boost, URI: s.boostURI(boost.ID)}, nil
}

func (s *AppService) GetPaginatedBoosts(ctx context.Context, caller string, query match.Query, limit int, cursor string) ([]service.Boost, string, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	boosts, err := s.DB.BoostsForProfile(ctx, caller, after.ts, after.id)
	if err != nil {
		return nil, "", err
	}
	return s.pageBoosts(filterBoosts(boosts, query), clampLimit(limit))
}

func (s *AppService) CountBoosts(ctx context.Context, caller string, query match.Query) (int, error) {
	boosts, err := s.DB.BoostsForProfile(ctx, caller, 0, "")
	if err != nil {
		return 0, err
	}
	return len(filterBoosts(boosts, query)), nil
}

func filterBoosts(boosts []domain.Boost, query match.Query) []domain.Boost {
	if len(query) == 0 {
		return boosts
	}
	kept := boosts[:0]
	for _, b := range boosts {
		if match.Evaluate(query, b.Attributes()) {
			kept = append(kept, b)
		}
	}
	return kept
}

// pageBoosts cuts one page off an already filtered, newest-first list and
// returns the cursor for the next page, empty when this was the last one.
func (s *AppService) pageBoosts(boosts []domain.Boost, limit int) ([]service.Boost, string, error) {
	next := ""
	if len(boosts) > limit {
		boosts = boosts[:limit]
		last := boosts[limit-1]
		next = formatCursor(last.Created, last.ID)
	}

	page := make([]service.Boost, len(boosts))
	for i, b := range boosts {
		page[i] = service.Boost{Boost: b, URI: s.boostURI(b.ID)}
	}
	return page, next, nil
}
