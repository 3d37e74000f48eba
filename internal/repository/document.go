package repository

import (
	"context"
	"time"

	"verifyapi/internal/model"
)

// DocumentReview is the write applied when a pending document is reviewed.
type DocumentReview struct {
	Status     model.Status
	Comment    string
	ReviewerID string
	At         time.Time
}

// DocumentRepository defines data access for farm documents.
// Persistence only; rows are never deleted.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row,
	// including the store-assigned Seq.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByFarm returns every document of a farm, oldest first.
	ListByFarm(ctx context.Context, farmID string) ([]model.Document, error)

	// LatestFor returns the newest document for the (farm, type) pair or ErrNotFound.
	LatestFor(ctx context.Context, farmID string, typeID int) (*model.Document, error)

	// ListPending returns the review queue, oldest submission first.
	ListPending(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Review applies r only if the document is still PENDING.
	// It returns ErrNotFound if the row is missing and ErrStaleState if it
	// was already reviewed.
	Review(ctx context.Context, id string, r DocumentReview) (*model.Document, error)
}
