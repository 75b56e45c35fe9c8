package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

type Profiles interface {
	// CreateProfile inserts a new profile; profiles are immutable once
	// created. Returns ErrConflict when the id is taken.
	CreateProfile(ctx context.Context, profile domain.Profile) error
	GetProfile(ctx context.Context, profileID string) (domain.Profile, error)
	GetProfiles(ctx context.Context, profileIDs []string) ([]domain.Profile, error)
	// RegisterSigningAuthority stores a signing endpoint under a name for a
	// profile. Registering the same pair twice is a no-op.
	RegisterSigningAuthority(ctx context.Context, sa domain.SigningAuthority) error
	GetSigningAuthority(ctx context.Context, profileID, endpoint, name string) (domain.SigningAuthority, error)
}
