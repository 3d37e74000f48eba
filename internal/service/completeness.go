package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verifyapi/internal/catalog"
	"verifyapi/internal/model"
	"verifyapi/internal/repository"
	"verifyapi/internal/verification"
)

// CompletenessService answers whether a farm has an approved latest document
// for every mandatory type.
type CompletenessService interface {
	// Evaluate re-reads the catalog and the farm's documents on every call.
	// It never mutates state. Administrators and the farm's applicant may
	// call it.
	Evaluate(ctx context.Context, farmID string) (*model.Completeness, error)
}

type completenessService struct {
	docs    repository.DocumentRepository
	farms   repository.FarmRepository
	catalog catalog.Provider
	access  farmAccess
}

func NewCompletenessService(docs repository.DocumentRepository, farms repository.FarmRepository, grants repository.RoleGrantRepository, cat catalog.Provider) CompletenessService {
	return &completenessService{docs: docs, farms: farms, catalog: cat, access: farmAccess{grants: grants}}
}

func (s *completenessService) Evaluate(ctx context.Context, farmID string) (_ *model.Completeness, err error) {
	ctx, span := tracer.Start(ctx, "CompletenessService.Evaluate",
		trace.WithAttributes(attribute.String("farm.id", farmID)))
	defer func() { finish(span, err) }()

	if farmID == "" {
		return nil, invalidInput("farm", "", "farm id is required")
	}
	if err := s.access.check(ctx, farmID, "read its completeness"); err != nil {
		return nil, err
	}
	if _, err := s.farms.FindByID(ctx, farmID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("farm", farmID)
		}
		return nil, fmt.Errorf("load farm: %w", err)
	}

	types, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	docs, err := s.docs.ListByFarm(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	c := verification.Evaluate(farmID, types, docs)
	span.SetAttributes(
		attribute.Bool("completeness.complete", c.Complete),
		attribute.Int("completeness.pending", len(c.PendingTypes)),
	)
	return &c, nil
}
