package impl

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/opencreds/boostnet/internal/domain"
)

const credentialColumns = `id, boost_id, from_profile, to_profile, credential, sent, received, activity_id, metadata`

func scanCredential(row interface{ Scan(...any) error }) (domain.CredentialRecord, error) {
	var c domain.CredentialRecord
	var credential string
	var metadata sql.NullString
	err := row.Scan(&c.ID, &c.BoostID, &c.From, &c.To, &credential,
		&c.Sent, &c.Received, &c.ActivityID, &metadata)
	if err != nil {
		return c, err
	}
	c.Credential = json.RawMessage(credential)
	if metadata.Valid {
		c.Metadata = json.RawMessage(metadata.String)
	}
	return c, nil
}

func insertCredential(ctx context.Context, tx querier, record domain.CredentialRecord) error {
	var metadata sql.NullString
	if record.Metadata != nil {
		metadata = sql.NullString{Valid: true, String: string(record.Metadata)}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO credentials(`+credentialColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		record.ID, record.BoostID, record.From, record.To, string(record.Credential),
		record.Sent, record.Received, record.ActivityID, metadata)
	return err
}

func (d *dbImpl) CreateCredential(ctx context.Context, record domain.CredentialRecord) error {
	return d.HandleError(insertCredential(ctx, d.db, record))
}

func (d *dbImpl) GetCredential(ctx context.Context, id string) (domain.CredentialRecord, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	c, err := scanCredential(row)
	return c, d.HandleError(err)
}

// AcceptCredential flips the received timestamp and applies the hook
// grants in the same transaction, so a failed grant leaves the credential
// unaccepted rather than half-processed.
func (d *dbImpl) AcceptCredential(ctx context.Context, id string, receivedAt int64, grants []domain.RoleGrant) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE credentials SET received = ? WHERE id = ? AND received = 0`,
			receivedAt, id)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}

		for _, grant := range grants {
			if err := d.applyGrant(ctx, tx, grant); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *dbImpl) CredentialsForBoost(ctx context.Context, boostID string) ([]domain.CredentialRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE boost_id = ? ORDER BY sent DESC, id`,
		boostID)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()

	var records []domain.CredentialRecord
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, d.HandleError(err)
		}
		records = append(records, c)
	}
	return records, d.HandleError(rows.Err())
}

func (d *dbImpl) RevokeRecipient(ctx context.Context, boostID, profileID string, targetBoostIDs []string) (bool, error) {
	var removed bool
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM credentials WHERE boost_id = ? AND to_profile = ?`,
			boostID, profileID)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		removed = n > 0

		// The whole role goes, not just hook-granted fields.
		for _, target := range targetBoostIDs {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM roles WHERE boost_id = ? AND profile_id = ?`,
				target, profileID); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}
