package core

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
	"github.com/opencreds/boostnet/internal/validate"
	"github.com/rs/zerolog/log"
)

func (s *AppService) GenerateClaimLink(ctx context.Context, caller, boostURI, challenge string, authority service.SigningAuthorityRef, options service.ClaimLinkOptions) (service.ClaimLink, error) {
	if err := validate.Challenge(challenge); err != nil {
		return service.ClaimLink{}, service.ErrBadRequest
	}

	boost, err := s.loadBoost(ctx, boostURI)
	if err != nil {
		return service.ClaimLink{}, err
	}
	if boost.Status != domain.StatusLive {
		return service.ClaimLink{}, service.ErrForbidden
	}

	eff, err := s.effectivePermissions(ctx, boost, caller)
	if err != nil {
		return service.ClaimLink{}, err
	}
	if !eff.CanIssue {
		return service.ClaimLink{}, service.ErrUnauthorized
	}

	// The link can only reference a signing authority the caller has
	// registered beforehand.
	if _, err := s.DB.GetSigningAuthority(ctx, caller, authority.Endpoint, authority.Name); err != nil {
		return service.ClaimLink{}, service.ErrPreconditionFailed
	}

	ttl := domain.InfiniteTTL
	if options.TTLSeconds != nil {
		ttl = *options.TTLSeconds
	}
	if ttl <= 0 && ttl != domain.InfiniteTTL {
		return service.ClaimLink{}, service.ErrBadRequest
	}

	var remaining *int64
	if options.TotalUses != nil {
		if *options.TotalUses <= 0 {
			return service.ClaimLink{}, service.ErrBadRequest
		}
		uses := *options.TotalUses
		remaining = &uses
	}

	created := now()
	var expiresAt int64
	if ttl != domain.InfiniteTTL {
		expiresAt = created + ttl
	}

	link := domain.ClaimLink{
		BoostID:    boost.ID,
		Challenge:  challenge,
		Endpoint:   authority.Endpoint,
		Name:       authority.Name,
		TTLSeconds: ttl,
		ExpiresAt:  expiresAt,
		Remaining:  remaining,
		Created:    created,
	}
	if err := s.DB.CreateClaimLink(ctx, link); err != nil {
		return service.ClaimLink{}, mapErr(err)
	}

	return service.ClaimLink{
		BoostURI:   s.boostURI(boost.ID),
		Challenge:  challenge,
		Authority:  authority,
		TTLSeconds: ttl,
		Remaining:  remaining,
	}, nil
}

// ClaimBoostWithLink issues the boost to the caller through the link's
// signing authority. Consuming the link, storing the credential and
// applying the boost's claim grants happen in one transaction, so the last
// use of a budgeted link goes to exactly one claimant.
func (s *AppService) ClaimBoostWithLink(ctx context.Context, caller, boostURI, challenge string) (string, error) {
	boost, err := s.loadBoost(ctx, boostURI)
	if err != nil {
		return "", err
	}
	if boost.Status != domain.StatusLive {
		return "", service.ErrForbidden
	}

	link, err := s.DB.GetClaimLink(ctx, boost.ID, challenge)
	if err != nil {
		return "", mapErr(err)
	}

	signed, err := s.Signer.IssueCredential(ctx, link.Endpoint, boost.Credential)
	if err != nil {
		return "", err
	}

	grants, err := s.claimGrants(ctx, boost, caller)
	if err != nil {
		return "", err
	}

	claimedAt := now()
	record := domain.CredentialRecord{
		ID:         newID(),
		BoostID:    boost.ID,
		From:       boost.CreatedBy,
		To:         caller,
		Credential: signed,
		Sent:       claimedAt,
		Received:   claimedAt,
		ActivityID: newID(),
	}
	if err := s.DB.ConsumeClaimLink(ctx, boost.ID, challenge, claimedAt, record, grants); err != nil {
		return "", mapErr(err)
	}

	uri := s.credentialURI(record.ID)
	if err := s.Notify.CredentialAccepted(ctx, boost.CreatedBy, uri); err != nil {
		log.Warn().Err(err).Str("issuer", boost.CreatedBy).Msg("claim notification failed")
	}
	return uri, nil
}
