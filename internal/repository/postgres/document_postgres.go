package postgres

import (
	"context"
	"database/sql"
	"errors"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

const documentColumns = `id, seq, farm_id, document_type_id, file_path, file_name, file_size,
		file_content_type, status, comment, reviewer_id, submitted_at, reviewed_at, note`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, farm_id, document_type_id, file_path, file_name, file_size,
			file_content_type, status, note, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + documentColumns

	var (
		path, name, ct sql.NullString
		size           sql.NullInt64
	)
	if doc.File != nil {
		path = nullString(doc.File.Path)
		name = nullString(doc.File.OriginalName)
		ct = nullString(doc.File.ContentType)
		size = sql.NullInt64{Int64: doc.File.Size, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.FarmID,
		doc.DocumentTypeID,
		path,
		name,
		size,
		ct,
		string(doc.Status),
		doc.Note,
		doc.SubmittedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// ListByFarm returns every document of the farm in submission order.
func (r *DocumentPostgres) ListByFarm(ctx context.Context, farmID string) ([]model.Document, error) {
	const q = `SELECT ` + documentColumns + `
		FROM documents
		WHERE farm_id = $1
		ORDER BY submitted_at ASC, seq ASC`
	rows, err := r.db.QueryContext(ctx, q, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// LatestFor returns the newest document for the pair; seq breaks timestamp ties.
func (r *DocumentPostgres) LatestFor(ctx context.Context, farmID string, typeID int) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + `
		FROM documents
		WHERE farm_id = $1 AND document_type_id = $2
		ORDER BY submitted_at DESC, seq DESC
		LIMIT 1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, farmID, typeID))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// ListPending returns pending documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListPending(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	pq = clampPage(pq)

	const qCount = `SELECT COUNT(*) FROM documents WHERE status = 'PENDING'`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + documentColumns + `
		FROM documents
		WHERE status = 'PENDING'
		ORDER BY submitted_at ASC, seq ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Review moves a PENDING document to its reviewed state and records the
// reviewer's comment, empty or not. The status predicate in the WHERE clause
// makes concurrent reviews of one document mutually exclusive.
func (r *DocumentPostgres) Review(ctx context.Context, id string, rv repository.DocumentReview) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET status = $2,
		    comment = $3,
		    reviewer_id = $4,
		    reviewed_at = $5
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + documentColumns

	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, string(rv.Status), rv.Comment, rv.ReviewerID, rv.At))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, repository.ErrStaleState
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d              model.Document
		path, name, ct sql.NullString
		size           sql.NullInt64
		status         string
		reviewedAt     sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.Seq,
		&d.FarmID,
		&d.DocumentTypeID,
		&path,
		&name,
		&size,
		&ct,
		&status,
		&d.Comment,
		&d.ReviewerID,
		&d.SubmittedAt,
		&reviewedAt,
		&d.Note,
	); err != nil {
		return nil, err
	}
	d.Status = model.Status(status)
	if path.Valid {
		d.File = &model.FileRef{
			Path:         path.String,
			OriginalName: name.String,
			Size:         size.Int64,
			ContentType:  ct.String,
		}
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		d.ReviewedAt = &t
	}
	return &d, nil
}

func scanDocuments(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
