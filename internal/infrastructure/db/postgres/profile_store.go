package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jiayou/auth-service/internal/application/caregiver"
	"github.com/jiayou/auth-service/internal/domain"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) UpsertProfile(ctx context.Context, identityID string, p domain.CaregiverProfile) (caregiver.Profile, error) {
	doc, err := domain.EncodeDocument(p)
	if err != nil {
		return caregiver.Profile{}, err
	}

	const q = `
INSERT INTO caregiver_profiles (identity_id, profile, status, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (identity_id) DO UPDATE
SET profile = EXCLUDED.profile,
    updated_at = NOW()
RETURNING identity_id, profile, status, updated_at;
`
	var (
		out caregiver.Profile
		raw []byte
	)
	err = s.db.QueryRowContext(ctx, q, identityID, []byte(doc), caregiver.CheckNotStarted).
		Scan(&out.IdentityID, &raw, &out.Status, &out.UpdatedAt)
	if err != nil {
		return caregiver.Profile{}, domain.ErrDBUnavailable(err)
	}
	if err := json.Unmarshal(raw, &out.Profile); err != nil {
		return caregiver.Profile{}, domain.ErrInternal(err)
	}
	return out, nil
}

func (s *ProfileStore) SetCheckStatus(ctx context.Context, identityID, status string) error {
	const q = `
INSERT INTO caregiver_profiles (identity_id, status, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (identity_id) DO UPDATE
SET status = EXCLUDED.status,
    updated_at = NOW();
`
	if _, err := s.db.ExecContext(ctx, q, identityID, status); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
