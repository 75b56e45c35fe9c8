package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

type Roles interface {
	// UpsertRole writes the full role record for a (boost, profile) pair.
	// Concurrent first writes collapse into one row.
	UpsertRole(ctx context.Context, role domain.Role) error
	GetRole(ctx context.Context, boostID, profileID string) (domain.Role, error)
	DeleteRole(ctx context.Context, boostID, profileID string) error
	// NearestAncestorRole returns the profile's explicit role on the
	// closest ancestor that has one; ErrNotFound when no ancestor does.
	NearestAncestorRole(ctx context.Context, boostID, profileID string) (domain.Role, error)
	// AncestorRoles returns the profile's explicit roles on every ancestor
	// of the boost, at any depth, each ancestor at most once.
	AncestorRoles(ctx context.Context, boostID, profileID string) ([]domain.Role, error)
	RolesForBoost(ctx context.Context, boostID string) ([]domain.Role, error)
}
