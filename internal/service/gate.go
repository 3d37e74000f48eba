package service

import (
	"context"
)

// Gate couples FINCA grant approval to farm document completeness. It holds
// no state; every call evaluates afresh.
type Gate struct {
	completeness CompletenessService
}

func NewGate(c CompletenessService) *Gate {
	return &Gate{completeness: c}
}

// CanApproveFinca reports whether farmID is currently complete.
func (g *Gate) CanApproveFinca(ctx context.Context, farmID string) (bool, error) {
	c, err := g.completeness.Evaluate(ctx, farmID)
	if err != nil {
		return false, err
	}
	return c.Complete, nil
}

// Check returns nil when farmID is complete and a PreconditionFailed error
// listing the outstanding mandatory types otherwise.
func (g *Gate) Check(ctx context.Context, farmID string) error {
	c, err := g.completeness.Evaluate(ctx, farmID)
	if err != nil {
		return err
	}
	if !c.Complete {
		return preconditionFailed(farmID, c.PendingTypes)
	}
	return nil
}
