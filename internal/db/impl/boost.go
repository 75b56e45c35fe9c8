package impl

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/opencreds/boostnet/internal/domain"
)

const boostColumns = `id, status, name, category, type, credential, claim_permissions, created_by, created`

func scanBoost(row interface{ Scan(...any) error }) (domain.Boost, error) {
	var b domain.Boost
	var credential string
	var claimPermissions sql.NullString
	err := row.Scan(&b.ID, &b.Status, &b.Name, &b.Category, &b.Type,
		&credential, &claimPermissions, &b.CreatedBy, &b.Created)
	if err != nil {
		return b, err
	}

	b.Credential = json.RawMessage(credential)
	if claimPermissions.Valid {
		var p domain.Permissions
		if err := json.Unmarshal([]byte(claimPermissions.String), &p); err != nil {
			return b, fmt.Errorf("corrupt claim permissions on boost %s: %w", b.ID, err)
		}
		b.ClaimPermissions = &p
	}
	return b, nil
}

func claimPermissionsValue(b domain.Boost) (sql.NullString, error) {
	if b.ClaimPermissions == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(b.ClaimPermissions)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{Valid: true, String: string(raw)}, nil
}

func (d *dbImpl) CreateBoost(ctx context.Context, boost domain.Boost) error {
	claim, err := claimPermissionsValue(boost)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `INSERT INTO boosts(
			id, status, name, category, type, credential, claim_permissions, created_by, created
		) VALUES (?,?,?,?,?,?,?,?,?)`,
		boost.ID, boost.Status, boost.Name, boost.Category, boost.Type,
		string(boost.Credential), claim, boost.CreatedBy, boost.Created)
	return d.HandleError(err)
}

func (d *dbImpl) GetBoost(ctx context.Context, id string) (domain.Boost, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+boostColumns+` FROM boosts WHERE id = ?`, id)
	b, err := scanBoost(row)
	return b, d.HandleError(err)
}

func (d *dbImpl) UpdateBoost(ctx context.Context, boost domain.Boost) error {
	claim, err := claimPermissionsValue(boost)
	if err != nil {
		return err
	}
	result, err := d.db.ExecContext(ctx,
		`UPDATE boosts SET status = ?, name = ?, category = ?, type = ?, credential = ?, claim_permissions = ?
		 WHERE id = ?`,
		boost.Status, boost.Name, boost.Category, boost.Type,
		string(boost.Credential), claim, boost.ID)
	if err != nil {
		return d.HandleError(err)
	}
	return d.requireRows(result)
}

func (d *dbImpl) DeleteBoost(ctx context.Context, id string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM boost_edges WHERE parent_id = ? OR child_id = ?`, id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE boost_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM claim_hooks WHERE claim_boost_id = ? OR target_boost_id = ?`, id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM claim_links WHERE boost_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE boost_id = ?`, id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM boosts WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return d.requireRows(result)
	})
}

func (d *dbImpl) BoostsForProfile(ctx context.Context, profileID string, created int64, afterID string) ([]domain.Boost, error) {
	query := `SELECT DISTINCT b.id, b.status, b.name, b.category, b.type, b.credential, b.claim_permissions, b.created_by, b.created
		 FROM boosts b
		 LEFT JOIN roles r ON r.boost_id = b.id AND r.profile_id = ?
		 WHERE (b.created_by = ? OR r.profile_id IS NOT NULL)`
	args := []any{profileID, profileID}
	if created != 0 {
		query += ` AND (b.created < ? OR (b.created = ? AND b.id > ?))`
		args = append(args, created, created, afterID)
	}
	query += ` ORDER BY b.created DESC, b.id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()
	return d.collectBoosts(rows)
}

func (d *dbImpl) collectBoosts(rows *sql.Rows) ([]domain.Boost, error) {
	var boosts []domain.Boost
	for rows.Next() {
		b, err := scanBoost(rows)
		if err != nil {
			return nil, d.HandleError(err)
		}
		boosts = append(boosts, b)
	}
	return boosts, d.HandleError(rows.Err())
}

func (d *dbImpl) requireRows(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return d.HandleError(err)
	}
	if n == 0 {
		return d.HandleError(sql.ErrNoRows)
	}
	return nil
}
