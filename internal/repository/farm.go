package repository

import (
	"context"

	"verifyapi/internal/model"
)

// FarmRepository defines data access for farms. Farms are never deleted.
type FarmRepository interface {
	// Create inserts a farm. Duplicate tag or tax ID yields ErrConflict.
	Create(ctx context.Context, f *model.Farm) (*model.Farm, error)

	// FindByID returns a farm by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Farm, error)

	// List returns farms ordered by legal name.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Farm], error)

	// Update overwrites the mutable fields of an existing farm.
	Update(ctx context.Context, f *model.Farm) (*model.Farm, error)
}
