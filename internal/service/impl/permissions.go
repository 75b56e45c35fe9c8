package core

import (
	"context"
	"errors"

	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
	"github.com/opencreds/boostnet/internal/service"
)

// resolvePermissions answers "what role does this profile hold on this
// boost", in order: creator, explicit role, the explicit role on the
// nearest ancestor, and finally the empty role.
func (s *AppService) resolvePermissions(ctx context.Context, boost domain.Boost, profileID string) (domain.Permissions, error) {
	if boost.CreatedBy == profileID {
		return domain.CreatorPermissions(), nil
	}

	role, err := s.DB.GetRole(ctx, boost.ID, profileID)
	if err == nil {
		return role.Permissions, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return domain.Permissions{}, err
	}

	role, err = s.DB.NearestAncestorRole(ctx, boost.ID, profileID)
	if err == nil {
		return role.Permissions, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return domain.Permissions{}, err
	}

	return domain.EmptyPermissions(), nil
}

// effectivePermissions widens the resolved role with what the profile's
// grants on ancestors confer here: a children scope on any ancestor that
// matches this boost turns into the corresponding direct permission, and
// carries down as a children scope for delegation further below. Creating
// any ancestor confers everything.
func (s *AppService) effectivePermissions(ctx context.Context, boost domain.Boost, profileID string) (domain.Permissions, error) {
	perms, err := s.resolvePermissions(ctx, boost, profileID)
	if err != nil {
		return domain.Permissions{}, err
	}
	if perms.Role == domain.RoleCreator {
		return perms, nil
	}

	created, err := s.DB.IsAncestorCreator(ctx, boost.ID, profileID)
	if err != nil {
		return domain.Permissions{}, err
	}
	if created {
		return unionAll(perms), nil
	}

	roles, err := s.DB.AncestorRoles(ctx, boost.ID, profileID)
	if err != nil {
		return domain.Permissions{}, err
	}
	attrs := boost.Attributes()
	for _, role := range roles {
		perms = unionAncestor(perms, role.Permissions, attrs)
	}
	return perms, nil
}

// unionAll is what creating an ancestor grants on every boost below it.
func unionAll(p domain.Permissions) domain.Permissions {
	p.CanEdit = true
	p.CanIssue = true
	p.CanRevoke = true
	p.CanManagePermissions = true
	p.CanManageChildrenProfiles = true
	p.CanIssueChildren = match.AllScope()
	p.CanCreateChildren = match.AllScope()
	p.CanEditChildren = match.AllScope()
	p.CanRevokeChildren = match.AllScope()
	p.CanManageChildrenPermissions = match.AllScope()
	return p
}

// unionAncestor folds one ancestor role into the effective permissions on
// a boost with the given attributes. Grants only ever widen; an ancestor
// role can never take away what another grant already confers.
func unionAncestor(eff, ancestor domain.Permissions, attrs map[string]any) domain.Permissions {
	if ancestor.CanManageChildrenProfiles {
		eff.CanManageChildrenProfiles = true
	}

	for _, f := range []struct {
		scope  match.Scope
		direct *bool
		down   *match.Scope
	}{
		{ancestor.CanIssueChildren, &eff.CanIssue, &eff.CanIssueChildren},
		{ancestor.CanEditChildren, &eff.CanEdit, &eff.CanEditChildren},
		{ancestor.CanRevokeChildren, &eff.CanRevoke, &eff.CanRevokeChildren},
		{ancestor.CanManageChildrenPermissions, &eff.CanManagePermissions, &eff.CanManageChildrenPermissions},
		{ancestor.CanCreateChildren, nil, &eff.CanCreateChildren},
	} {
		switch f.scope.Kind {
		case match.ScopeAll:
			if f.direct != nil {
				*f.direct = true
			}
			*f.down = match.AllScope()
		case match.ScopeFilter:
			if f.direct != nil && f.scope.Matches(attrs) {
				*f.direct = true
			}
			if f.down.Kind == match.ScopeNone {
				*f.down = f.scope
			}
		}
	}
	return eff
}

// canCreateChild reports whether the profile may create a child with the
// given attributes under the parent. Unlike the other children scopes this
// one is evaluated against the boost being created, not an existing one.
func (s *AppService) canCreateChild(ctx context.Context, parent domain.Boost, profileID string, childAttrs map[string]any) (bool, error) {
	if parent.CreatedBy == profileID {
		return true, nil
	}

	created, err := s.DB.IsAncestorCreator(ctx, parent.ID, profileID)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	perms, err := s.resolvePermissions(ctx, parent, profileID)
	if err != nil {
		return false, err
	}
	if perms.CanCreateChildren.Matches(childAttrs) {
		return true, nil
	}

	roles, err := s.DB.AncestorRoles(ctx, parent.ID, profileID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.CanCreateChildren.Matches(childAttrs) {
			return true, nil
		}
	}
	return false, nil
}

// isAdmin is the strict check used where the creator or an explicitly
// granted admin role is required; inherited and ancestor grants do not
// count here.
func (s *AppService) isAdmin(ctx context.Context, boost domain.Boost, profileID string) (bool, error) {
	if boost.CreatedBy == profileID {
		return true, nil
	}
	role, err := s.DB.GetRole(ctx, boost.ID, profileID)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role.Role == domain.RoleAdmin, nil
}

func (s *AppService) GetBoostPermissions(ctx context.Context, caller, uri string) (domain.Permissions, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return domain.Permissions{}, err
	}
	return s.resolvePermissions(ctx, boost, caller)
}

func (s *AppService) GetOtherBoostPermissions(ctx context.Context, caller, uri, profileID string) (domain.Permissions, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return domain.Permissions{}, err
	}
	if profileID != caller {
		eff, err := s.effectivePermissions(ctx, boost, caller)
		if err != nil {
			return domain.Permissions{}, err
		}
		if !eff.CanManagePermissions {
			return domain.Permissions{}, service.ErrUnauthorized
		}
	}
	return s.resolvePermissions(ctx, boost, profileID)
}

func (s *AppService) UpdateBoostPermissions(ctx context.Context, caller, uri string, updates domain.PermissionsUpdate) error {
	return s.UpdateOtherBoostPermissions(ctx, caller, uri, caller, updates)
}

func (s *AppService) UpdateOtherBoostPermissions(ctx context.Context, caller, uri, profileID string, updates domain.PermissionsUpdate) error {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return err
	}
	if profileID == boost.CreatedBy {
		// The creator's role is implicit and cannot be altered.
		return service.ErrForbidden
	}

	eff, err := s.effectivePermissions(ctx, boost, caller)
	if err != nil {
		return err
	}
	if !eff.CanManagePermissions {
		return service.ErrUnauthorized
	}
	admin, err := s.isAdmin(ctx, boost, caller)
	if err != nil {
		return err
	}
	if err := validateGrant(eff, admin, updates); err != nil {
		return err
	}

	base := domain.EmptyPermissions()
	existing, err := s.DB.GetRole(ctx, boost.ID, profileID)
	switch {
	case err == nil:
		base = existing.Permissions
	case !errors.Is(err, db.ErrNotFound):
		return err
	}

	merged, err := base.Apply(updates)
	if err != nil {
		return service.ErrBadRequest
	}
	return mapErr(s.DB.UpsertRole(ctx, domain.Role{
		BoostID:     boost.ID,
		ProfileID:   profileID,
		Permissions: merged,
	}))
}

// validateGrant refuses updates that hand out anything the caller does not
// effectively hold. Revoking, or writing a narrower value, is always fine.
// The admin label is what the strict admin checks trust, so writing it is
// reserved for callers who are themselves admin or creator.
func validateGrant(eff domain.Permissions, callerIsAdmin bool, updates domain.PermissionsUpdate) error {
	if updates.Role != nil && *updates.Role == domain.RoleCreator {
		return service.ErrBadRequest
	}
	if updates.Role != nil && *updates.Role == domain.RoleAdmin && !callerIsAdmin {
		return service.ErrUnauthorized
	}

	for _, b := range []struct {
		want *bool
		held bool
	}{
		{updates.CanEdit, eff.CanEdit},
		{updates.CanIssue, eff.CanIssue},
		{updates.CanRevoke, eff.CanRevoke},
		{updates.CanManagePermissions, eff.CanManagePermissions},
		{updates.CanManageChildrenProfiles, eff.CanManageChildrenProfiles},
		{updates.CanViewAnalytics, eff.CanViewAnalytics},
	} {
		if b.want != nil && *b.want && !b.held {
			return service.ErrUnauthorized
		}
	}

	for _, sc := range []struct {
		want *string
		held match.Scope
	}{
		{updates.CanIssueChildren, eff.CanIssueChildren},
		{updates.CanCreateChildren, eff.CanCreateChildren},
		{updates.CanEditChildren, eff.CanEditChildren},
		{updates.CanRevokeChildren, eff.CanRevokeChildren},
		{updates.CanManageChildrenPermissions, eff.CanManageChildrenPermissions},
	} {
		if sc.want == nil {
			continue
		}
		requested, err := match.ParseScope(*sc.want)
		if err != nil {
			return service.ErrBadRequest
		}
		if !match.ScopeCovers(sc.held, requested) {
			return service.ErrUnauthorized
		}
	}
	return nil
}

func (s *AppService) AddBoostAdmin(ctx context.Context, caller, uri, profileID string) error {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return err
	}
	admin, err := s.isAdmin(ctx, boost, caller)
	if err != nil {
		return err
	}
	if !admin {
		return service.ErrUnauthorized
	}
	if profileID == boost.CreatedBy {
		return service.ErrConflict
	}
	if _, err := s.DB.GetProfile(ctx, profileID); err != nil {
		return mapErr(err)
	}
	return mapErr(s.DB.UpsertRole(ctx, domain.Role{
		BoostID:     boost.ID,
		ProfileID:   profileID,
		Permissions: domain.AdminPermissions(),
	}))
}

func (s *AppService) RemoveBoostAdmin(ctx context.Context, caller, uri, profileID string) error {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return err
	}
	if profileID == boost.CreatedBy {
		return service.ErrForbidden
	}
	if caller != profileID {
		admin, err := s.isAdmin(ctx, boost, caller)
		if err != nil {
			return err
		}
		if !admin {
			return service.ErrUnauthorized
		}
	}

	role, err := s.DB.GetRole(ctx, boost.ID, profileID)
	if err != nil {
		return mapErr(err)
	}
	if role.Role != domain.RoleAdmin {
		return service.ErrNotFound
	}
	return mapErr(s.DB.DeleteRole(ctx, boost.ID, profileID))
}

func (s *AppService) GetBoostAdmins(ctx context.Context, caller, uri string) ([]domain.Profile, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return nil, err
	}

	roles, err := s.DB.RolesForBoost(ctx, boost.ID)
	if err != nil {
		return nil, err
	}
	ids := []string{boost.CreatedBy}
	for _, role := range roles {
		if role.Role == domain.RoleAdmin {
			ids = append(ids, role.ProfileID)
		}
	}
	return s.DB.GetProfiles(ctx, ids)
}
