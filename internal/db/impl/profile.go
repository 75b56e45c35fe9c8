package impl

import (
	"context"
	"strings"

	"github.com/opencreds/boostnet/internal/domain"
)

func (d *dbImpl) CreateProfile(ctx context.Context, profile domain.Profile) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO profiles(
			profile_id,
			did,
			display_name,
			public_key,
			notify_endpoint,
			created
		) VALUES (?,?,?,?,?,?)`,
		profile.ProfileID, profile.DID, profile.DisplayName,
		profile.PublicKeyPem, profile.NotifyEndpoint, profile.Created)
	return d.HandleError(err)
}

func (d *dbImpl) GetProfile(ctx context.Context, profileID string) (domain.Profile, error) {
	var p domain.Profile
	err := d.db.QueryRowContext(ctx,
		`SELECT profile_id, did, display_name, public_key, notify_endpoint, created
		 FROM profiles WHERE profile_id = ?`, profileID).
		Scan(&p.ProfileID, &p.DID, &p.DisplayName, &p.PublicKeyPem, &p.NotifyEndpoint, &p.Created)
	return p, d.HandleError(err)
}

func (d *dbImpl) GetProfiles(ctx context.Context, profileIDs []string) ([]domain.Profile, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(profileIDs))
	args := make([]any, len(profileIDs))
	for i, id := range profileIDs {
		args[i] = id
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT profile_id, did, display_name, public_key, notify_endpoint, created
		 FROM profiles WHERE profile_id IN (`+placeholders[:len(placeholders)-1]+`)
		 ORDER BY profile_id`, args...)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ProfileID, &p.DID, &p.DisplayName, &p.PublicKeyPem, &p.NotifyEndpoint, &p.Created); err != nil {
			return nil, d.HandleError(err)
		}
		profiles = append(profiles, p)
	}
	return profiles, d.HandleError(rows.Err())
}

func (d *dbImpl) RegisterSigningAuthority(ctx context.Context, sa domain.SigningAuthority) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO signing_authorities(profile_id, endpoint, name) VALUES (?,?,?)
		 ON CONFLICT(profile_id, endpoint, name) DO NOTHING`,
		sa.ProfileID, sa.Endpoint, sa.Name)
	return d.HandleError(err)
}

func (d *dbImpl) GetSigningAuthority(ctx context.Context, profileID, endpoint, name string) (domain.SigningAuthority, error) {
	var sa domain.SigningAuthority
	err := d.db.QueryRowContext(ctx,
		`SELECT profile_id, endpoint, name FROM signing_authorities
		 WHERE profile_id = ? AND endpoint = ? AND name = ?`,
		profileID, endpoint, name).
		Scan(&sa.ProfileID, &sa.Endpoint, &sa.Name)
	return sa, d.HandleError(err)
}
