package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

type Credentials interface {
	CreateCredential(ctx context.Context, record domain.CredentialRecord) error
	GetCredential(ctx context.Context, id string) (domain.CredentialRecord, error)
	// AcceptCredential marks the credential received and applies the role
	// grants produced by claim hooks and claim permissions, atomically
	// with the acceptance itself.
	AcceptCredential(ctx context.Context, id string, receivedAt int64, grants []domain.RoleGrant) error
	// CredentialsForBoost lists deliveries newest first, ascending ids
	// breaking ties between same-second sends.
	CredentialsForBoost(ctx context.Context, boostID string) ([]domain.CredentialRecord, error)
	// RevokeRecipient deletes the recipient's credentials on the boost and
	// their entire role on each listed target boost, in one transaction.
	// Reports whether anything was removed.
	RevokeRecipient(ctx context.Context, boostID, profileID string, targetBoostIDs []string) (bool, error)
}
