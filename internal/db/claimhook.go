package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

type ClaimHooks interface {
	CreateClaimHook(ctx context.Context, hook domain.ClaimHook) error
	GetClaimHook(ctx context.Context, id string) (domain.ClaimHook, error)
	ClaimHooksForBoost(ctx context.Context, claimBoostID string) ([]domain.ClaimHook, error)
	DeleteClaimHook(ctx context.Context, id string) error
}
