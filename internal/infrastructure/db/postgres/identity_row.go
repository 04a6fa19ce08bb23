package postgres

import (
	"database/sql"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

const identityColumns = `id, email, password_hash, role, language, first_name, last_name, active, created_at, updated_at`

type identityRow struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Language     string
	FirstName    string
	LastName     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func scanIdentity(row *sql.Row) (identityRow, error) {
	var ir identityRow
	err := row.Scan(
		&ir.ID,
		&ir.Email,
		&ir.PasswordHash,
		&ir.Role,
		&ir.Language,
		&ir.FirstName,
		&ir.LastName,
		&ir.Active,
		&ir.CreatedAt,
		&ir.UpdatedAt,
	)
	return ir, err
}

func (ir identityRow) toDomain() domain.Identity {
	return domain.Identity{
		ID:           ir.ID,
		Email:        ir.Email,
		PasswordHash: ir.PasswordHash,
		Role:         domain.Role(ir.Role),
		Language:     ir.Language,
		FirstName:    ir.FirstName,
		LastName:     ir.LastName,
		Active:       ir.Active,
		CreatedAt:    ir.CreatedAt,
		UpdatedAt:    ir.UpdatedAt,
	}
}
