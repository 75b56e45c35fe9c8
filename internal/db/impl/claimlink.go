package impl

import (
	"context"
	"database/sql"

	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/rs/zerolog/log"
)

const linkColumns = `boost_id, challenge, endpoint, name, ttl_seconds, expires_at, remaining_uses, created`

func scanLink(row interface{ Scan(...any) error }) (domain.ClaimLink, error) {
	var l domain.ClaimLink
	var remaining sql.NullInt64
	err := row.Scan(&l.BoostID, &l.Challenge, &l.Endpoint, &l.Name,
		&l.TTLSeconds, &l.ExpiresAt, &remaining, &l.Created)
	if err != nil {
		return l, err
	}
	if remaining.Valid {
		l.Remaining = &remaining.Int64
	}
	return l, nil
}

func (d *dbImpl) CreateClaimLink(ctx context.Context, link domain.ClaimLink) error {
	var remaining sql.NullInt64
	if link.Remaining != nil {
		remaining = sql.NullInt64{Valid: true, Int64: *link.Remaining}
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO claim_links(`+linkColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		link.BoostID, link.Challenge, link.Endpoint, link.Name,
		link.TTLSeconds, link.ExpiresAt, remaining, link.Created)
	return d.HandleError(err)
}

func (d *dbImpl) GetClaimLink(ctx context.Context, boostID, challenge string) (domain.ClaimLink, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM claim_links WHERE boost_id = ? AND challenge = ?`,
		boostID, challenge)
	l, err := scanLink(row)
	return l, d.HandleError(err)
}

// ConsumeClaimLink is the single atomic unit of a link claim. The
// conditional UPDATE is the check-and-decrement: it only hits a row that is
// unexpired and still has uses left, so of two racing claimants on the last
// use exactly one sees an affected row. The TTL columns are never touched.
func (d *dbImpl) ConsumeClaimLink(ctx context.Context, boostID, challenge string, now int64, credential domain.CredentialRecord, grants []domain.RoleGrant) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE claim_links
			SET remaining_uses = CASE WHEN remaining_uses IS NULL THEN NULL ELSE remaining_uses - 1 END
			WHERE boost_id = ? AND challenge = ?
			  AND (expires_at = 0 OR expires_at > ?)
			  AND (remaining_uses IS NULL OR remaining_uses > 0)`,
			boostID, challenge, now)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			log.Debug().
				Str("boost", boostID).
				Str("challenge", challenge).
				Msg("claim link missing, expired or exhausted")
			return db.ErrNotFound
		}

		if err := insertCredential(ctx, tx, credential); err != nil {
			return err
		}

		for _, grant := range grants {
			if err := d.applyGrant(ctx, tx, grant); err != nil {
				return err
			}
		}
		return nil
	})
}
