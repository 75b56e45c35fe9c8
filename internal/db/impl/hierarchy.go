package impl

import (
	"context"
	"database/sql"

	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/rs/zerolog/log"
)

// reachable reports whether descendantID can be reached from ancestorID by
// following parent->child edges, at any depth.
func (d *dbImpl) reachable(ctx context.Context, q querier, ancestorID, descendantID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		WITH RECURSIVE walk(id) AS (
			SELECT child_id FROM boost_edges WHERE parent_id = ?
			UNION
			SELECT e.child_id FROM boost_edges e JOIN walk w ON e.parent_id = w.id
		)
		SELECT EXISTS(SELECT 1 FROM walk WHERE id = ?)`,
		ancestorID, descendantID).Scan(&exists)
	return exists, err
}

func (d *dbImpl) IsAncestor(ctx context.Context, ancestorID, descendantID string) (bool, error) {
	ok, err := d.reachable(ctx, d.db, ancestorID, descendantID)
	return ok, d.HandleError(err)
}

func (d *dbImpl) IsAncestorCreator(ctx context.Context, boostID, profileID string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, parentWalk+`
		SELECT EXISTS(
			SELECT 1 FROM boosts b JOIN walk w ON b.id = w.id
			WHERE b.created_by = ?
		)`,
		boostID, db.InfiniteGenerations, db.InfiniteGenerations, profileID).Scan(&exists)
	return exists, d.HandleError(err)
}

// MakeParent runs every invariant check and the insert inside one
// transaction, so two concurrent calls cannot cooperate to close a cycle.
func (d *dbImpl) MakeParent(ctx context.Context, parentID, childID string) error {
	if parentID == childID {
		return db.ErrConflict
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		down, err := d.reachable(ctx, tx, parentID, childID)
		if err != nil {
			return err
		}
		up, err := d.reachable(ctx, tx, childID, parentID)
		if err != nil {
			return err
		}
		if down || up {
			log.Debug().
				Str("parent", parentID).
				Str("child", childID).
				Bool("alreadyAncestor", down).
				Bool("wouldCycle", up).
				Msg("rejecting edge")
			return db.ErrConflict
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO boost_edges(parent_id, child_id) VALUES (?,?)`,
			parentID, childID)
		return err
	})
}

func (d *dbImpl) RemoveParent(ctx context.Context, parentID, childID string) error {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM boost_edges WHERE parent_id = ? AND child_id = ?`,
		parentID, childID)
	if err != nil {
		return d.HandleError(err)
	}
	return d.requireRows(result)
}

const (
	childWalk = `
		WITH RECURSIVE walk(id, depth) AS (
			SELECT child_id, 1 FROM boost_edges WHERE parent_id = ?
			UNION
			SELECT e.child_id, w.depth + 1 FROM boost_edges e JOIN walk w ON e.parent_id = w.id
			WHERE ? < 0 OR w.depth < ?
		)`
	parentWalk = `
		WITH RECURSIVE walk(id, depth) AS (
			SELECT parent_id, 1 FROM boost_edges WHERE child_id = ?
			UNION
			SELECT e.parent_id, w.depth + 1 FROM boost_edges e JOIN walk w ON e.child_id = w.id
			WHERE ? < 0 OR w.depth < ?
		)`
)

func (d *dbImpl) Children(ctx context.Context, id string, maxDepth int64) ([]domain.Boost, error) {
	return d.traverse(ctx, childWalk, id, maxDepth)
}

func (d *dbImpl) Parents(ctx context.Context, id string, maxDepth int64) ([]domain.Boost, error) {
	return d.traverse(ctx, parentWalk, id, maxDepth)
}

func (d *dbImpl) traverse(ctx context.Context, walk, id string, maxDepth int64) ([]domain.Boost, error) {
	rows, err := d.db.QueryContext(ctx, walk+`
		SELECT DISTINCT b.id, b.status, b.name, b.category, b.type, b.credential, b.claim_permissions, b.created_by, b.created
		FROM boosts b JOIN walk w ON b.id = w.id
		WHERE b.id != ?
		ORDER BY b.created DESC, b.id`,
		id, maxDepth, maxDepth, id)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()
	return d.collectBoosts(rows)
}
