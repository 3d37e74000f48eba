package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func expectLedger(mock sqlmock.Sqlmock, applied ...string) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"name"})
	for _, name := range applied {
		rows.AddRow(name)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM schema_migrations")).WillReturnRows(rows)
}

func expectStep(mock sqlmock.Sqlmock, name string) {
	mock.ExpectBegin()
	mock.ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (name) VALUES ($1)")).
		WithArgs(name).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestRun_FreshDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLedger(mock)
	for _, name := range Names() {
		expectStep(mock, name)
	}

	applied, err := Run(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Names(), applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UpToDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLedger(mock, Names()...)

	applied, err := Run(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_AppliesOnlyMissingSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	names := Names()
	expectLedger(mock, names[:len(names)-1]...)
	expectStep(mock, names[len(names)-1])

	applied, err := Run(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, names[len(names)-1:], applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StepFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	names := Names()
	expectLedger(mock)
	expectStep(mock, names[0])
	mock.ExpectBegin()
	mock.ExpectExec(".+").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	applied, err := Run(context.Background(), db, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration step "+names[1]+" failed")
	assert.Equal(t, names[:1], applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_LedgerUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnError(errors.New("connection refused"))

	_, err = Run(context.Background(), db, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create migration ledger")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSteps_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range Names() {
		assert.False(t, seen[name], "duplicate step %s", name)
		seen[name] = true
	}
}
