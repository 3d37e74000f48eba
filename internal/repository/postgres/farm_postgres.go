package postgres

import (
	"context"
	"database/sql"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

const farmColumns = `id, legal_name, tag, tax_id, contact_name, contact_email, contact_phone,
		active, created_at, updated_at`

// FarmPostgres is a PostgreSQL implementation of repository.FarmRepository.
type FarmPostgres struct {
	db *sql.DB
}

// NewFarmPostgres creates a new FarmPostgres repository.
func NewFarmPostgres(db *sql.DB) *FarmPostgres {
	return &FarmPostgres{db: db}
}

var _ repository.FarmRepository = (*FarmPostgres)(nil)

func (r *FarmPostgres) Create(ctx context.Context, f *model.Farm) (*model.Farm, error) {
	const q = `
		INSERT INTO farms (id, legal_name, tag, tax_id, contact_name, contact_email, contact_phone,
			active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + farmColumns

	out, err := scanFarm(r.db.QueryRowContext(ctx, q,
		f.ID,
		f.LegalName,
		f.Tag,
		f.TaxID,
		f.ContactName,
		f.ContactEmail,
		f.ContactPhone,
		f.Active,
		f.CreatedAt,
		f.UpdatedAt,
	))
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *FarmPostgres) FindByID(ctx context.Context, id string) (*model.Farm, error) {
	const q = `SELECT ` + farmColumns + `
		FROM farms
		WHERE id = $1`
	f, err := scanFarm(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

func (r *FarmPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Farm], error) {
	pq = clampPage(pq)

	const qCount = `SELECT COUNT(*) FROM farms`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + farmColumns + `
		FROM farms
		ORDER BY legal_name ASC, id ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Farm, 0)
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Farm]{Items: items, Total: total}, nil
}

func (r *FarmPostgres) Update(ctx context.Context, f *model.Farm) (*model.Farm, error) {
	const q = `
		UPDATE farms
		SET legal_name = $2,
		    tag = $3,
		    tax_id = $4,
		    contact_name = $5,
		    contact_email = $6,
		    contact_phone = $7,
		    active = $8,
		    updated_at = $9
		WHERE id = $1
		RETURNING ` + farmColumns

	out, err := scanFarm(r.db.QueryRowContext(ctx, q,
		f.ID,
		f.LegalName,
		f.Tag,
		f.TaxID,
		f.ContactName,
		f.ContactEmail,
		f.ContactPhone,
		f.Active,
		f.UpdatedAt,
	))
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func scanFarm(row rowScanner) (*model.Farm, error) {
	var f model.Farm
	if err := row.Scan(
		&f.ID,
		&f.LegalName,
		&f.Tag,
		&f.TaxID,
		&f.ContactName,
		&f.ContactEmail,
		&f.ContactPhone,
		&f.Active,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}
