package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiayou/auth-service/internal/domain"
)

func TestUpsertProfile(t *testing.T) {
	db, mock := newMock(t)
	store := NewProfileStore(db)
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO caregiver_profiles").
		WithArgs("c1", sqlmock.AnyArg(), "not_started").
		WillReturnRows(sqlmock.NewRows([]string{"identity_id", "profile", "status", "updated_at"}).
			AddRow("c1", []byte(`{"location":"Taipei","experience":2,"rates":{"hourly":20}}`), "processing", ts))

	got, err := store.UpsertProfile(context.Background(), "c1", domain.CaregiverProfile{
		Location: "Taipei", Experience: 2, Rates: domain.Rates{Hourly: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "processing", got.Status)
	assert.Equal(t, "Taipei", got.Profile.Location)
	assert.Equal(t, 20.0, got.Profile.Rates.Hourly)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProfile_DBDown(t *testing.T) {
	db, mock := newMock(t)
	store := NewProfileStore(db)

	mock.ExpectQuery("INSERT INTO caregiver_profiles").WillReturnError(errors.New("down"))

	_, err := store.UpsertProfile(context.Background(), "c1", domain.CaregiverProfile{Location: "x"})
	assert.True(t, domain.Is(err, "db_unavailable"))
}

func TestSetCheckStatus(t *testing.T) {
	db, mock := newMock(t)
	store := NewProfileStore(db)

	mock.ExpectExec("INSERT INTO caregiver_profiles").
		WithArgs("c1", "processing").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.SetCheckStatus(context.Background(), "c1", "processing"))

	mock.ExpectExec("INSERT INTO caregiver_profiles").WillReturnError(errors.New("down"))
	assert.True(t, domain.Is(store.SetCheckStatus(context.Background(), "c1", "processing"), "db_unavailable"))
}
