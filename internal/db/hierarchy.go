package db

import (
	"context"

	"github.com/opencreds/boostnet/internal/domain"
)

// InfiniteGenerations lifts the depth bound on a traversal.
const InfiniteGenerations int64 = -1

type Hierarchy interface {
	// MakeParent creates the parent->child edge in a single transaction.
	// Fails with ErrConflict when an edge already exists between the pair
	// in either direction, or when the edge would close a cycle.
	MakeParent(ctx context.Context, parentID, childID string) error
	// RemoveParent deletes the direct edge between exactly this pair;
	// ErrNotFound when no such direct edge exists.
	RemoveParent(ctx context.Context, parentID, childID string) error
	IsAncestor(ctx context.Context, ancestorID, descendantID string) (bool, error)
	// IsAncestorCreator reports whether profileID created any ancestor of
	// the boost. Creators hold their full authority over the subtree below
	// them without a stored role.
	IsAncestorCreator(ctx context.Context, boostID, profileID string) (bool, error)
	// Children returns the distinct descendants of a boost within
	// maxDepth hops (InfiniteGenerations for no bound), excluding the
	// boost itself, newest first.
	Children(ctx context.Context, id string, maxDepth int64) ([]domain.Boost, error)
	Parents(ctx context.Context, id string, maxDepth int64) ([]domain.Boost, error)
}
