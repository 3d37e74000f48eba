package repository

import (
	"context"

	"verifyapi/internal/model"
)

// RoleGrantRepository defines data access for role grants.
type RoleGrantRepository interface {
	// Create inserts a PENDING grant. It returns ErrConflict when the user
	// already holds a PENDING grant for the same role.
	Create(ctx context.Context, g *model.RoleGrant) (*model.RoleGrant, error)

	// FindByID returns a grant by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.RoleGrant, error)

	// ListByUser returns a user's grant history, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.RoleGrant, error)

	// ListByFarm returns the FINCA grants whose metadata links farmID, newest first.
	ListByFarm(ctx context.Context, farmID string) ([]model.RoleGrant, error)

	// ListPending returns pending grants, optionally restricted to one role
	// (empty role means all), oldest first.
	ListPending(ctx context.Context, role model.Role, pq PageQuery) (*PageResult[model.RoleGrant], error)

	// Decide applies d only if the grant is still PENDING.
	// It returns ErrNotFound or ErrStaleState like DocumentRepository.Review.
	Decide(ctx context.Context, id string, d model.GrantDecision) (*model.RoleGrant, error)
}
