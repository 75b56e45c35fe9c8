package core

import (
	"context"
	"sort"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
	"github.com/opencreds/boostnet/internal/service"
)

func profileAttrs(p domain.Profile) map[string]any {
	return map[string]any{
		"profileId":   p.ProfileID,
		"displayName": p.DisplayName,
		"did":         p.DID,
	}
}

// recipients loads the recipients of a single boost, newest delivery
// first, optionally keeping unaccepted deliveries.
func (s *AppService) recipients(ctx context.Context, boost domain.Boost, includeUnaccepted bool, query match.Query) ([]domain.BoostRecipient, error) {
	records, err := s.DB.CredentialsForBoost(ctx, boost.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.Accepted() || includeUnaccepted {
			ids = append(ids, r.To)
		}
	}
	profiles, err := s.DB.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ProfileID] = p
	}

	var out []domain.BoostRecipient
	for _, r := range records {
		if !r.Accepted() && !includeUnaccepted {
			continue
		}
		to, ok := byID[r.To]
		if !ok {
			continue
		}
		if len(query) > 0 && !match.Evaluate(query, profileAttrs(to)) {
			continue
		}
		out = append(out, domain.BoostRecipient{
			To:           to,
			From:         r.From,
			CredentialID: r.ID,
			Sent:         r.Sent,
			Received:     r.Received,
		})
	}
	return out, nil
}

func (s *AppService) GetBoostRecipients(ctx context.Context, caller, uri string, includeUnaccepted bool, query match.Query, limit int, cursor string) ([]domain.BoostRecipient, string, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return nil, "", err
	}
	if err := s.analyticsGuard(ctx, boost, caller); err != nil {
		return nil, "", err
	}

	all, err := s.recipients(ctx, boost, includeUnaccepted, query)
	if err != nil {
		return nil, "", err
	}
	if !after.zero() {
		i := 0
		for i < len(all) && !after.follows(all[i].Sent, all[i].CredentialID) {
			i++
		}
		all = all[i:]
	}

	limit = clampLimit(limit)
	next := ""
	if len(all) > limit {
		all = all[:limit]
		last := all[limit-1]
		next = formatCursor(last.Sent, last.CredentialID)
	}
	return all, next, nil
}

func (s *AppService) GetBoostRecipientCount(ctx context.Context, caller, uri string, includeUnaccepted bool) (int, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return 0, err
	}
	if err := s.analyticsGuard(ctx, boost, caller); err != nil {
		return 0, err
	}
	all, err := s.recipients(ctx, boost, includeUnaccepted, nil)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// connectedRecipients aggregates the recipients of a boost and its
// descendants. Every profile appears once, with the list of boosts that
// reached it, regardless of how many credentials or paths did.
func (s *AppService) connectedRecipients(ctx context.Context, caller, uri string, options service.RecipientOptions) ([]domain.RecipientWithBoosts, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := s.analyticsGuard(ctx, boost, caller); err != nil {
		return nil, err
	}

	children, err := s.DB.Children(ctx, boost.ID, normalizeGenerations(options.Generations))
	if err != nil {
		return nil, err
	}
	boosts := filterBoosts(append([]domain.Boost{boost}, children...), options.BoostQuery)

	seen := make(map[string]*domain.RecipientWithBoosts)
	var order []string
	for _, b := range boosts {
		found, err := s.recipients(ctx, b, options.IncludeUnaccepted, options.ProfileQuery)
		if err != nil {
			return nil, err
		}
		for _, r := range found {
			agg, ok := seen[r.To.ProfileID]
			if !ok {
				agg = &domain.RecipientWithBoosts{To: r.To}
				seen[r.To.ProfileID] = agg
				order = append(order, r.To.ProfileID)
			}
			if !contains(agg.BoostIDs, b.ID) {
				agg.BoostIDs = append(agg.BoostIDs, b.ID)
			}
		}
	}

	sort.Strings(order)
	out := make([]domain.RecipientWithBoosts, len(order))
	for i, id := range order {
		out[i] = *seen[id]
	}
	return out, nil
}

func (s *AppService) GetConnectedBoostRecipients(ctx context.Context, caller, uri string, options service.RecipientOptions) ([]domain.RecipientWithBoosts, error) {
	return s.connectedRecipients(ctx, caller, uri, options)
}

func (s *AppService) CountBoostRecipientsWithChildren(ctx context.Context, caller, uri string, options service.RecipientOptions) (int, error) {
	out, err := s.connectedRecipients(ctx, caller, uri, options)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// analyticsGuard gates the recipient listings: the analytics permission,
// or any standing on the boost at all beyond the empty role.
func (s *AppService) analyticsGuard(ctx context.Context, boost domain.Boost, caller string) error {
	eff, err := s.effectivePermissions(ctx, boost, caller)
	if err != nil {
		return err
	}
	if !eff.CanViewAnalytics && !eff.CanIssue && !eff.CanManagePermissions {
		return service.ErrUnauthorized
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
