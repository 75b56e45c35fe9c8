package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
	"github.com/rs/zerolog/log"
)

func (s *AppService) SendBoost(ctx context.Context, caller, uri, profileID string, credential json.RawMessage) (string, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return "", err
	}
	if boost.Status != domain.StatusLive {
		return "", service.ErrForbidden
	}
	if _, err := s.DB.GetProfile(ctx, profileID); err != nil {
		return "", mapErr(err)
	}

	eff, err := s.effectivePermissions(ctx, boost, caller)
	if err != nil {
		return "", err
	}
	if !eff.CanIssue {
		return "", service.ErrUnauthorized
	}

	if credential == nil {
		credential = boost.Credential
	}
	record := domain.CredentialRecord{
		ID:         newID(),
		BoostID:    boost.ID,
		From:       caller,
		To:         profileID,
		Credential: credential,
		Sent:       now(),
		ActivityID: newID(),
	}
	if err := s.DB.CreateCredential(ctx, record); err != nil {
		return "", mapErr(err)
	}

	uri = s.credentialURI(record.ID)
	if err := s.Notify.CredentialSent(ctx, profileID, uri); err != nil {
		log.Warn().Err(err).Str("to", profileID).Msg("send notification failed")
	}
	return uri, nil
}

func (s *AppService) AcceptCredential(ctx context.Context, caller, credentialURI string) error {
	record, err := s.DB.GetCredential(ctx, idFromURI(credentialURI))
	if err != nil {
		return mapErr(err)
	}
	if record.To != caller {
		return service.ErrUnauthorized
	}
	if record.Accepted() {
		return service.ErrConflict
	}

	boost, err := s.DB.GetBoost(ctx, record.BoostID)
	if err != nil {
		return mapErr(err)
	}
	grants, err := s.claimGrants(ctx, boost, caller)
	if err != nil {
		return err
	}

	if err := s.DB.AcceptCredential(ctx, record.ID, now(), grants); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// A concurrent accept got there first.
			return service.ErrConflict
		}
		return err
	}

	uri := s.credentialURI(record.ID)
	if err := s.Notify.CredentialAccepted(ctx, record.From, uri); err != nil {
		log.Warn().Err(err).Str("issuer", record.From).Msg("accept notification failed")
	}
	return nil
}

// claimGrants collects every role write that accepting a credential of this
// boost triggers for the claimer: the boost's own claim permissions, then
// its claim hooks in creation order. Grants targeting a boost the claimer
// created are dropped, the creator role already covers them.
func (s *AppService) claimGrants(ctx context.Context, boost domain.Boost, claimer string) ([]domain.RoleGrant, error) {
	var grants []domain.RoleGrant
	if boost.ClaimPermissions != nil && boost.CreatedBy != claimer {
		grants = append(grants, domain.RoleGrant{
			BoostID:   boost.ID,
			ProfileID: claimer,
			IfAbsent:  boost.ClaimPermissions,
		})
	}

	hooks, err := s.DB.ClaimHooksForBoost(ctx, boost.ID)
	if err != nil {
		return nil, err
	}
	for _, hook := range hooks {
		target, err := s.DB.GetBoost(ctx, hook.TargetBoostID)
		if err != nil {
			return nil, mapErr(err)
		}
		if target.CreatedBy == claimer {
			continue
		}

		grant := domain.RoleGrant{BoostID: target.ID, ProfileID: claimer}
		switch hook.Type {
		case domain.HookGrantPermissions:
			grant.Update = hook.Grant
		case domain.HookAddAdmin:
			grant.Update = adminGrant()
		default:
			continue
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

// adminGrant promotes whatever role the claimer holds to a full admin one.
func adminGrant() *domain.PermissionsUpdate {
	all := "*"
	yes := true
	role := domain.RoleAdmin
	return &domain.PermissionsUpdate{
		Role:                         &role,
		CanEdit:                      &yes,
		CanIssue:                     &yes,
		CanRevoke:                    &yes,
		CanManagePermissions:         &yes,
		CanManageChildrenProfiles:    &yes,
		CanViewAnalytics:             &yes,
		CanIssueChildren:             &all,
		CanCreateChildren:            &all,
		CanEditChildren:              &all,
		CanRevokeChildren:            &all,
		CanManageChildrenPermissions: &all,
	}
}

// RevokeBoostRecipient removes the recipient's credentials for the boost
// together with the roles its claim hooks and claim permissions granted
// them. The roles are removed wholesale, later manual edits to those roles
// go with them.
func (s *AppService) RevokeBoostRecipient(ctx context.Context, caller, uri, profileID string) (bool, error) {
	boost, err := s.loadBoost(ctx, uri)
	if err != nil {
		return false, err
	}
	eff, err := s.effectivePermissions(ctx, boost, caller)
	if err != nil {
		return false, err
	}
	if !eff.CanRevoke {
		return false, service.ErrUnauthorized
	}

	var targets []string
	if boost.ClaimPermissions != nil {
		targets = append(targets, boost.ID)
	}
	hooks, err := s.DB.ClaimHooksForBoost(ctx, boost.ID)
	if err != nil {
		return false, err
	}
	for _, hook := range hooks {
		targets = append(targets, hook.TargetBoostID)
	}

	removed, err := s.DB.RevokeRecipient(ctx, boost.ID, profileID, targets)
	return removed, mapErr(err)
}
