package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

type ClaimLinks interface {
	CreateClaimLink(ctx context.Context, link domain.ClaimLink) error
	GetClaimLink(ctx context.Context, boostID, challenge string) (domain.ClaimLink, error)
	// ConsumeClaimLink atomically records the claim: it decrements the
	// remaining-uses counter (when the link has one) only if the link is
	// neither expired nor exhausted at `now`, inserts the credential and
	// applies the role grants, all in one transaction. Two concurrent
	// claimants cannot both consume the last use. ErrNotFound when the
	// link is absent, expired or exhausted.
	ConsumeClaimLink(ctx context.Context, boostID, challenge string, now int64, credential domain.CredentialRecord, grants []domain.RoleGrant) error
}
