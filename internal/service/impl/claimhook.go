package core

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

// CreateClaimHook attaches an automation rule to a claim boost. The caller
// must be an admin of the claim boost, and must separately hold enough
// authority on the target: permission management rights plus everything
// the hook would grant for GRANT_PERMISSIONS, admin for ADD_ADMIN.
func (s *AppService) CreateClaimHook(ctx context.Context, caller string, hook service.ClaimHook) (string, error) {
	claim, err := s.loadBoost(ctx, hook.ClaimURI)
	if err != nil {
		return "", err
	}
	target, err := s.loadBoost(ctx, hook.TargetURI)
	if err != nil {
		return "", err
	}

	admin, err := s.isAdmin(ctx, claim, caller)
	if err != nil {
		return "", err
	}
	if !admin {
		return "", service.ErrUnauthorized
	}

	switch hook.Type {
	case domain.HookGrantPermissions:
		if hook.Permissions == nil {
			return "", service.ErrBadRequest
		}
		eff, err := s.effectivePermissions(ctx, target, caller)
		if err != nil {
			return "", err
		}
		if !eff.CanManagePermissions {
			return "", service.ErrUnauthorized
		}
		targetAdmin, err := s.isAdmin(ctx, target, caller)
		if err != nil {
			return "", err
		}
		if err := validateGrant(eff, targetAdmin, *hook.Permissions); err != nil {
			return "", err
		}
	case domain.HookAddAdmin:
		targetAdmin, err := s.isAdmin(ctx, target, caller)
		if err != nil {
			return "", err
		}
		if !targetAdmin {
			return "", service.ErrUnauthorized
		}
	default:
		return "", service.ErrBadRequest
	}

	record := domain.ClaimHook{
		ID:            newID(),
		Type:          hook.Type,
		ClaimBoostID:  claim.ID,
		TargetBoostID: target.ID,
		Grant:         hook.Permissions,
		Created:       now(),
	}
	if err := s.DB.CreateClaimHook(ctx, record); err != nil {
		return "", mapErr(err)
	}
	return record.ID, nil
}

func (s *AppService) GetClaimHooksForBoost(ctx context.Context, caller, uri string) ([]service.ClaimHook, error) {
	claim, err := s.loadBoost(ctx, uri)
	if err != nil {
		return nil, err
	}
	admin, err := s.isAdmin(ctx, claim, caller)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, service.ErrUnauthorized
	}

	hooks, err := s.DB.ClaimHooksForBoost(ctx, claim.ID)
	if err != nil {
		return nil, err
	}
	views := make([]service.ClaimHook, len(hooks))
	for i, h := range hooks {
		views[i] = service.ClaimHook{
			ID:          h.ID,
			Type:        h.Type,
			ClaimURI:    s.boostURI(h.ClaimBoostID),
			TargetURI:   s.boostURI(h.TargetBoostID),
			Permissions: h.Grant,
			Created:     h.Created,
		}
	}
	return views, nil
}

func (s *AppService) DeleteClaimHook(ctx context.Context, caller, id string) error {
	hook, err := s.DB.GetClaimHook(ctx, id)
	if err != nil {
		return mapErr(err)
	}
	claim, err := s.DB.GetBoost(ctx, hook.ClaimBoostID)
	if err != nil {
		return mapErr(err)
	}
	admin, err := s.isAdmin(ctx, claim, caller)
	if err != nil {
		return err
	}
	if !admin {
		return service.ErrUnauthorized
	}
	return mapErr(s.DB.DeleteClaimHook(ctx, id))
}
