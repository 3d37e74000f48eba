package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

var farmCols = []string{
	"id", "legal_name", "tag", "tax_id", "contact_name", "contact_email", "contact_phone",
	"active", "created_at", "updated_at",
}

func TestFarmPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFarmPostgres(db)
	now := time.Now().UTC()
	farm := &model.Farm{
		ID: "farm-1", LegalName: "Rosas del Norte S.A.S.", Tag: "RDN", TaxID: "900123456",
		Active: true, CreatedAt: now, UpdatedAt: now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO farms").
			WithArgs("farm-1", "Rosas del Norte S.A.S.", "RDN", "900123456", "", "", "", true, now, now).
			WillReturnRows(sqlmock.NewRows(farmCols).
				AddRow("farm-1", "Rosas del Norte S.A.S.", "RDN", "900123456", "", "", "", true, now, now))

		out, err := repo.Create(context.Background(), farm)

		require.NoError(t, err)
		assert.Equal(t, "RDN", out.Tag)
		assert.True(t, out.Active)
	})

	t.Run("duplicate tag", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO farms").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(context.Background(), farm)

		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFarmPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFarmPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM farms WHERE id = ?").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	f, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFarmPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFarmPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM farms").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM farms ORDER BY legal_name").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(farmCols).
			AddRow("farm-1", "Alpha", "ALP", "1", "", "", "", false, now, now))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.False(t, res.Items[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFarmPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFarmPostgres(db)
	now := time.Now().UTC()
	farm := &model.Farm{ID: "farm-1", LegalName: "Beta", Tag: "BET", TaxID: "2", Active: false, UpdatedAt: now}

	mock.ExpectQuery("UPDATE farms SET legal_name").
		WithArgs("farm-1", "Beta", "BET", "2", "", "", "", false, now).
		WillReturnRows(sqlmock.NewRows(farmCols).
			AddRow("farm-1", "Beta", "BET", "2", "", "", "", false, now, now))

	out, err := repo.Update(context.Background(), farm)

	require.NoError(t, err)
	assert.Equal(t, "Beta", out.LegalName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
