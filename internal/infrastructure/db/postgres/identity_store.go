package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jiayou/auth-service/internal/domain"
)

const uniqueViolation = "23505"

type IdentityStore struct {
	db *sql.DB
}

func NewIdentityStore(db *sql.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate")
}

func (r *IdentityStore) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Identity{}, domain.ErrIdentityNotFound()
	}

	const q = `
SELECT ` + identityColumns + `
FROM identities
WHERE email = $1
LIMIT 1;
`
	ir, err := scanIdentity(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, domain.ErrIdentityNotFound()
		}
		return domain.Identity{}, domain.ErrDBUnavailable(err)
	}
	return ir.toDomain(), nil
}

func (r *IdentityStore) Insert(ctx context.Context, id domain.Identity) (domain.Identity, error) {
	id.Email = domain.NormalizeEmail(id.Email)
	if id.ID == "" {
		return domain.Identity{}, domain.ErrMissingField("id")
	}
	if id.Email == "" {
		return domain.Identity{}, domain.ErrMissingField("email")
	}
	if id.PasswordHash == "" {
		return domain.Identity{}, domain.ErrMissingField("password_hash")
	}
	if !domain.IsValidRole(string(id.Role)) {
		return domain.Identity{}, domain.ErrInvalidRole(string(id.Role))
	}
	if id.Language == "" {
		id.Language = domain.DefaultLanguage
	}

	const q = `
INSERT INTO identities (id, email, password_hash, role, language, first_name, last_name, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + identityColumns + `;
`
	ir, err := scanIdentity(r.db.QueryRowContext(ctx, q,
		id.ID, id.Email, id.PasswordHash, string(id.Role), id.Language, id.FirstName, id.LastName, id.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Identity{}, domain.ErrEmailAlreadyExists()
		}
		return domain.Identity{}, domain.ErrDBUnavailable(err)
	}
	return ir.toDomain(), nil
}

func nullableTrimmed(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

func (r *IdentityStore) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (domain.Identity, error) {
	email = domain.NormalizeEmail(email)

	const q = `
UPDATE identities
SET first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    language   = COALESCE($4, language),
    updated_at = NOW()
WHERE email = $1
RETURNING ` + identityColumns + `;
`
	ir, err := scanIdentity(r.db.QueryRowContext(ctx, q,
		email, nullableTrimmed(upd.FirstName), nullableTrimmed(upd.LastName), nullableTrimmed(upd.Language),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, domain.ErrIdentityNotFound()
		}
		return domain.Identity{}, domain.ErrDBUnavailable(err)
	}
	return ir.toDomain(), nil
}

func (r *IdentityStore) Deactivate(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	const q = `
UPDATE identities
SET active = FALSE,
    updated_at = NOW()
WHERE email = $1;
`
	res, err := r.db.ExecContext(ctx, q, email)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrIdentityNotFound()
	}
	return nil
}
