package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiayou/auth-service/internal/domain"
)

var columns = []string{"id", "email", "password_hash", "role", "language", "first_name", "last_name", "active", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func identityRows(active bool) *sqlmock.Rows {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).
		AddRow("11111111-1111-1111-1111-111111111111", "a@x.com", "$2a$04$hash", "family", "zh", "Lin", "Chen", active, ts, ts)
}

func TestFindByEmail_NormalizesAndMaps(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("SELECT (.+) FROM identities WHERE email = \\$1").
		WithArgs("a@x.com").
		WillReturnRows(identityRows(true))

	id, err := store.FindByEmail(context.Background(), "  A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFamily, id.Role)
	assert.Equal(t, "Lin", id.FirstName)
	assert.True(t, id.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("SELECT (.+) FROM identities").
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := store.FindByEmail(context.Background(), "nobody@x.com")
	assert.True(t, domain.Is(err, "identity_not_found"))
}

func TestFindByEmail_Empty_NoQuery(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	_, err := store.FindByEmail(context.Background(), "  ")
	assert.True(t, domain.Is(err, "identity_not_found"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_DBDown(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("SELECT (.+) FROM identities").WillReturnError(errors.New("conn reset"))

	_, err := store.FindByEmail(context.Background(), "a@x.com")
	assert.True(t, domain.Is(err, "db_unavailable"))
}

func TestInsert_Success(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("INSERT INTO identities").
		WithArgs("11111111-1111-1111-1111-111111111111", "a@x.com", "$2a$04$hash", "family", "zh", "Lin", "Chen", true).
		WillReturnRows(identityRows(true))

	got, err := store.Insert(context.Background(), domain.Identity{
		ID:           "11111111-1111-1111-1111-111111111111",
		Email:        "A@x.com",
		PasswordHash: "$2a$04$hash",
		Role:         domain.RoleFamily,
		FirstName:    "Lin",
		LastName:     "Chen",
		Active:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_Validation(t *testing.T) {
	db, _ := newMock(t)
	store := NewIdentityStore(db)
	ctx := context.Background()

	_, err := store.Insert(ctx, domain.Identity{Email: "a@x.com", PasswordHash: "h", Role: domain.RoleFamily})
	assert.True(t, domain.Is(err, "missing_field"))

	_, err = store.Insert(ctx, domain.Identity{ID: "1", PasswordHash: "h", Role: domain.RoleFamily})
	assert.True(t, domain.Is(err, "missing_field"))

	_, err = store.Insert(ctx, domain.Identity{ID: "1", Email: "a@x.com", Role: domain.RoleFamily})
	assert.True(t, domain.Is(err, "missing_field"))

	_, err = store.Insert(ctx, domain.Identity{ID: "1", Email: "a@x.com", PasswordHash: "h", Role: "admin"})
	assert.True(t, domain.Is(err, "invalid_role"))
}

func TestInsert_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("INSERT INTO identities").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "unique constraint"})

	_, err := store.Insert(context.Background(), domain.Identity{
		ID: "1", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleCaregiver,
	})
	assert.True(t, domain.Is(err, "email_already_exists"))
}

func TestInsert_DuplicateMessageFallback(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("INSERT INTO identities").
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint"))

	_, err := store.Insert(context.Background(), domain.Identity{
		ID: "1", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleCaregiver,
	})
	assert.True(t, domain.Is(err, "email_already_exists"))
}

func TestUpdateProfile(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("UPDATE identities SET first_name = COALESCE").
		WithArgs("a@x.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(identityRows(true))

	first := "Lin"
	got, err := store.UpdateProfile(context.Background(), "a@x.com", domain.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Lin", got.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_NotFound(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectQuery("UPDATE identities").WillReturnError(sql.ErrNoRows)

	_, err := store.UpdateProfile(context.Background(), "a@x.com", domain.ProfileUpdate{})
	assert.True(t, domain.Is(err, "identity_not_found"))
}

func TestNullableTrimmed(t *testing.T) {
	assert.False(t, nullableTrimmed(nil).Valid)

	s := "  en "
	got := nullableTrimmed(&s)
	assert.True(t, got.Valid)
	assert.Equal(t, "en", got.String)
}

func TestDeactivate(t *testing.T) {
	db, mock := newMock(t)
	store := NewIdentityStore(db)

	mock.ExpectExec("UPDATE identities SET active = FALSE").
		WithArgs("a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Deactivate(context.Background(), "A@x.com"))

	mock.ExpectExec("UPDATE identities SET active = FALSE").
		WithArgs("zz@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, domain.Is(store.Deactivate(context.Background(), "zz@x.com"), "identity_not_found"))

	mock.ExpectExec("UPDATE identities").WillReturnError(errors.New("down"))
	assert.True(t, domain.Is(store.Deactivate(context.Background(), "a@x.com"), "db_unavailable"))

	require.NoError(t, mock.ExpectationsWereMet())
}
