package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"verifyapi/internal/repository"
)

const (
	uniqueViolation = "23505"

	// liveFincaConstraint allows one PENDING or APPROVED FINCA grant per farm.
	liveFincaConstraint = "role_grants_one_live_finca_per_farm"
)

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == liveFincaConstraint {
			return repository.ErrFarmClaimed
		}
		return repository.ErrConflict
	}
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func clampPage(pq repository.PageQuery) repository.PageQuery {
	if pq.Limit <= 0 {
		pq.Limit = 10
	}
	if pq.Offset < 0 {
		pq.Offset = 0
	}
	return pq
}
