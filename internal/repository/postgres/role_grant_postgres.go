package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

const grantColumns = `id, user_id, role, status, metadata, decided_by, created_at, updated_at`

// RoleGrantPostgres is a PostgreSQL implementation of repository.RoleGrantRepository.
// Metadata is stored as JSONB.
type RoleGrantPostgres struct {
	db *sql.DB
}

// NewRoleGrantPostgres creates a new RoleGrantPostgres repository.
func NewRoleGrantPostgres(db *sql.DB) *RoleGrantPostgres {
	return &RoleGrantPostgres{db: db}
}

var _ repository.RoleGrantRepository = (*RoleGrantPostgres)(nil)

// Create inserts a pending grant. The partial unique index on (user_id, role)
// for PENDING rows turns a duplicate request into ErrConflict, and the one on
// the FINCA farm id for live rows turns a second claim on a farm into
// ErrFarmClaimed.
func (r *RoleGrantPostgres) Create(ctx context.Context, g *model.RoleGrant) (*model.RoleGrant, error) {
	meta, err := json.Marshal(g.Metadata)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO role_grants (id, user_id, role, status, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + grantColumns

	out, err := scanGrant(r.db.QueryRowContext(ctx, q,
		g.ID,
		g.UserID,
		string(g.Role),
		string(g.Status),
		meta,
		g.CreatedAt,
		g.UpdatedAt,
	))
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// FindByID fetches a single grant by its ID.
func (r *RoleGrantPostgres) FindByID(ctx context.Context, id string) (*model.RoleGrant, error) {
	const q = `SELECT ` + grantColumns + `
		FROM role_grants
		WHERE id = $1`
	g, err := scanGrant(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// ListByUser returns the user's grants, newest first.
func (r *RoleGrantPostgres) ListByUser(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	const q = `SELECT ` + grantColumns + `
		FROM role_grants
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// ListByFarm returns FINCA grants linked to farmID through their metadata.
func (r *RoleGrantPostgres) ListByFarm(ctx context.Context, farmID string) ([]model.RoleGrant, error) {
	const q = `SELECT ` + grantColumns + `
		FROM role_grants
		WHERE role = 'FINCA' AND metadata->>'farm_id' = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// ListPending returns pending grants. An empty role lists every role.
func (r *RoleGrantPostgres) ListPending(ctx context.Context, role model.Role, pq repository.PageQuery) (*repository.PageResult[model.RoleGrant], error) {
	pq = clampPage(pq)

	const qCount = `SELECT COUNT(*) FROM role_grants
		WHERE status = 'PENDING' AND ($1 = '' OR role = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(role)).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + grantColumns + `
		FROM role_grants
		WHERE status = 'PENDING' AND ($1 = '' OR role = $1)
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, string(role), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanGrants(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.RoleGrant]{Items: items, Total: total}, nil
}

// Decide resolves a PENDING grant. A rejection reason is merged into the
// metadata document so the rest of the metadata survives the decision.
func (r *RoleGrantPostgres) Decide(ctx context.Context, id string, d model.GrantDecision) (*model.RoleGrant, error) {
	const q = `
		UPDATE role_grants
		SET status = $2,
		    decided_by = $3,
		    metadata = CASE WHEN $4 = '' THEN metadata
		                    ELSE metadata || jsonb_build_object('rejection_reason', $4::text) END,
		    updated_at = $5
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + grantColumns

	g, err := scanGrant(r.db.QueryRowContext(ctx, q, id, string(d.Status), d.DecidedBy, d.Reason, d.At))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, repository.ErrStaleState
}

func scanGrant(row rowScanner) (*model.RoleGrant, error) {
	var (
		g            model.RoleGrant
		role, status string
		meta         []byte
	)
	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&role,
		&status,
		&meta,
		&g.DecidedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.Role = model.Role(role)
	g.Status = model.Status(status)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &g.Metadata); err != nil {
			return nil, err
		}
	}
	return &g, nil
}

func scanGrants(rows *sql.Rows) ([]model.RoleGrant, error) {
	items := make([]model.RoleGrant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
