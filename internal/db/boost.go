package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

type Boosts interface {
	CreateBoost(ctx context.Context, boost domain.Boost) error
	GetBoost(ctx context.Context, id string) (domain.Boost, error)
	// UpdateBoost overwrites the mutable fields of a boost row. Status
	// rules are enforced by the service layer.
	UpdateBoost(ctx context.Context, boost domain.Boost) error
	// DeleteBoost removes the boost and everything hanging off it: edges,
	// roles, hooks referencing it and claim links.
	DeleteBoost(ctx context.Context, id string) error
	// BoostsForProfile returns every boost the profile created or holds a
	// role on, newest first with ascending ids breaking ties. When created
	// is non-zero only boosts strictly after the (created, afterID) pair
	// in that order are returned.
	BoostsForProfile(ctx context.Context, profileID string, created int64, afterID string) ([]domain.Boost, error)
}
