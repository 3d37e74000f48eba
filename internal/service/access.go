package service

import (
	"context"
	"fmt"

	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

// farmAccess decides who may act on a farm's records: administrators and the
// user behind the farm's PENDING or APPROVED FINCA grant.
type farmAccess struct {
	grants repository.RoleGrantRepository
}

// check returns nil when the acting user may perform action on farmID.
func (a farmAccess) check(ctx context.Context, farmID, action string) error {
	actor, ok := identity.FromContext(ctx)
	if !ok {
		return unauthenticated()
	}
	if actor.IsAdmin() {
		return nil
	}
	grants, err := a.grants.ListByFarm(ctx, farmID)
	if err != nil {
		return fmt.Errorf("load farm grants: %w", err)
	}
	if manages(grants, actor.UserID) {
		return nil
	}
	return forbidden("only administrators or the farm's applicant may " + action)
}

// manages reports whether a FINCA grant for farmID held by userID, pending or
// approved, appears in grants.
func manages(grants []model.RoleGrant, userID string) bool {
	for _, g := range grants {
		if g.UserID == userID && g.Status != model.StatusRejected {
			return true
		}
	}
	return false
}

// canReadGrant lets administrators read any grant and users their own.
func canReadGrant(ctx context.Context, g *model.RoleGrant) error {
	actor, ok := identity.FromContext(ctx)
	if !ok {
		return unauthenticated()
	}
	if actor.IsAdmin() || actor.UserID == g.UserID {
		return nil
	}
	return forbidden("only administrators may read another user's grants")
}
