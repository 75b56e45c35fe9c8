package impl

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/opencreds/boostnet/internal/domain"
)

const hookColumns = `id, type, claim_boost_id, target_boost_id, grant_permissions, created`

func scanHook(row interface{ Scan(...any) error }) (domain.ClaimHook, error) {
	var h domain.ClaimHook
	var grant sql.NullString
	err := row.Scan(&h.ID, &h.Type, &h.ClaimBoostID, &h.TargetBoostID, &grant, &h.Created)
	if err != nil {
		return h, err
	}
	if grant.Valid {
		var update domain.PermissionsUpdate
		if err := json.Unmarshal([]byte(grant.String), &update); err != nil {
			return h, fmt.Errorf("corrupt grant on claim hook %s: %w", h.ID, err)
		}
		h.Grant = &update
	}
	return h, nil
}

func (d *dbImpl) CreateClaimHook(ctx context.Context, hook domain.ClaimHook) error {
	var grant sql.NullString
	if hook.Grant != nil {
		raw, err := json.Marshal(hook.Grant)
		if err != nil {
			return err
		}
		grant = sql.NullString{Valid: true, String: string(raw)}
	}

	_, err := d.db.ExecContext(ctx, `INSERT INTO claim_hooks(`+hookColumns+`) VALUES (?,?,?,?,?,?)`,
		hook.ID, hook.Type, hook.ClaimBoostID, hook.TargetBoostID, grant, hook.Created)
	return d.HandleError(err)
}

func (d *dbImpl) GetClaimHook(ctx context.Context, id string) (domain.ClaimHook, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+hookColumns+` FROM claim_hooks WHERE id = ?`, id)
	h, err := scanHook(row)
	return h, d.HandleError(err)
}

func (d *dbImpl) ClaimHooksForBoost(ctx context.Context, claimBoostID string) ([]domain.ClaimHook, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+hookColumns+` FROM claim_hooks WHERE claim_boost_id = ? ORDER BY created, id`,
		claimBoostID)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()

	var hooks []domain.ClaimHook
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, d.HandleError(err)
		}
		hooks = append(hooks, h)
	}
	return hooks, d.HandleError(rows.Err())
}

func (d *dbImpl) DeleteClaimHook(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM claim_hooks WHERE id = ?`, id)
	if err != nil {
		return d.HandleError(err)
	}
	return d.requireRows(result)
}
