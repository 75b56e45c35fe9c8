package impl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
)

const roleColumns = `boost_id, profile_id, role,
	can_edit, can_issue, can_revoke, can_manage_permissions,
	can_manage_children_profiles, can_view_analytics,
	can_issue_children, can_create_children, can_edit_children,
	can_revoke_children, can_manage_children_permissions`

func scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var r domain.Role
	var scopes [5]string
	err := row.Scan(&r.BoostID, &r.ProfileID, &r.Role,
		&r.CanEdit, &r.CanIssue, &r.CanRevoke, &r.CanManagePermissions,
		&r.CanManageChildrenProfiles, &r.CanViewAnalytics,
		&scopes[0], &scopes[1], &scopes[2], &scopes[3], &scopes[4])
	if err != nil {
		return r, err
	}

	// Scopes were validated when written, so a parse failure here means a
	// corrupt row, not bad input.
	parsed := make([]match.Scope, 5)
	for i, raw := range scopes {
		s, err := match.ParseScope(raw)
		if err != nil {
			return r, fmt.Errorf("corrupt scope on role (%s, %s): %w", r.BoostID, r.ProfileID, err)
		}
		parsed[i] = s
	}
	r.CanIssueChildren = parsed[0]
	r.CanCreateChildren = parsed[1]
	r.CanEditChildren = parsed[2]
	r.CanRevokeChildren = parsed[3]
	r.CanManageChildrenPermissions = parsed[4]
	return r, nil
}

func roleArgs(role domain.Role) []any {
	return []any{
		role.BoostID, role.ProfileID, role.Role,
		role.CanEdit, role.CanIssue, role.CanRevoke, role.CanManagePermissions,
		role.CanManageChildrenProfiles, role.CanViewAnalytics,
		role.CanIssueChildren.String(), role.CanCreateChildren.String(),
		role.CanEditChildren.String(), role.CanRevokeChildren.String(),
		role.CanManageChildrenPermissions.String(),
	}
}

const upsertRoleQuery = `INSERT INTO roles(` + roleColumns + `)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(boost_id, profile_id) DO UPDATE SET
		role = excluded.role,
		can_edit = excluded.can_edit,
		can_issue = excluded.can_issue,
		can_revoke = excluded.can_revoke,
		can_manage_permissions = excluded.can_manage_permissions,
		can_manage_children_profiles = excluded.can_manage_children_profiles,
		can_view_analytics = excluded.can_view_analytics,
		can_issue_children = excluded.can_issue_children,
		can_create_children = excluded.can_create_children,
		can_edit_children = excluded.can_edit_children,
		can_revoke_children = excluded.can_revoke_children,
		can_manage_children_permissions = excluded.can_manage_children_permissions`

func (d *dbImpl) UpsertRole(ctx context.Context, role domain.Role) error {
	_, err := d.db.ExecContext(ctx, upsertRoleQuery, roleArgs(role)...)
	return d.HandleError(err)
}

func (d *dbImpl) getRole(ctx context.Context, q querier, boostID, profileID string) (domain.Role, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE boost_id = ? AND profile_id = ?`,
		boostID, profileID)
	return scanRole(row)
}

func (d *dbImpl) GetRole(ctx context.Context, boostID, profileID string) (domain.Role, error) {
	r, err := d.getRole(ctx, d.db, boostID, profileID)
	return r, d.HandleError(err)
}

func (d *dbImpl) DeleteRole(ctx context.Context, boostID, profileID string) error {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM roles WHERE boost_id = ? AND profile_id = ?`, boostID, profileID)
	if err != nil {
		return d.HandleError(err)
	}
	return d.requireRows(result)
}

func (d *dbImpl) NearestAncestorRole(ctx context.Context, boostID, profileID string) (domain.Role, error) {
	row := d.db.QueryRowContext(ctx, parentWalk+`
		SELECT `+roleColumns+` FROM roles
		JOIN walk w ON roles.boost_id = w.id
		WHERE roles.profile_id = ?
		ORDER BY w.depth, roles.boost_id
		LIMIT 1`,
		boostID, db.InfiniteGenerations, db.InfiniteGenerations, profileID)
	r, err := scanRole(row)
	return r, d.HandleError(err)
}

func (d *dbImpl) AncestorRoles(ctx context.Context, boostID, profileID string) ([]domain.Role, error) {
	rows, err := d.db.QueryContext(ctx, parentWalk+`
		SELECT DISTINCT `+roleColumns+` FROM roles
		JOIN walk w ON roles.boost_id = w.id
		WHERE roles.profile_id = ?
		ORDER BY roles.boost_id`,
		boostID, db.InfiniteGenerations, db.InfiniteGenerations, profileID)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()
	return d.collectRoles(rows)
}

func (d *dbImpl) RolesForBoost(ctx context.Context, boostID string) ([]domain.Role, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE boost_id = ? ORDER BY profile_id`, boostID)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()
	return d.collectRoles(rows)
}

func (d *dbImpl) collectRoles(rows *sql.Rows) ([]domain.Role, error) {
	var roles []domain.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, d.HandleError(err)
		}
		roles = append(roles, r)
	}
	return roles, d.HandleError(rows.Err())
}

// applyGrant performs one role write of a claim. Merges go over the
// existing role or an empty one; IfAbsent templates are only written when
// the pair has no role yet.
func (d *dbImpl) applyGrant(ctx context.Context, tx *sql.Tx, grant domain.RoleGrant) error {
	existing, err := d.getRole(ctx, tx, grant.BoostID, grant.ProfileID)
	found := true
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		found = false
	}

	var next domain.Role
	switch {
	case grant.Update != nil:
		base := domain.EmptyPermissions()
		if found {
			base = existing.Permissions
		}
		merged, err := base.Apply(*grant.Update)
		if err != nil {
			return err
		}
		next = domain.Role{BoostID: grant.BoostID, ProfileID: grant.ProfileID, Permissions: merged}
	case grant.IfAbsent != nil:
		if found {
			return nil
		}
		next = domain.Role{BoostID: grant.BoostID, ProfileID: grant.ProfileID, Permissions: *grant.IfAbsent}
	default:
		return nil
	}

	_, err = tx.ExecContext(ctx, upsertRoleQuery, roleArgs(next)...)
	return err
}
