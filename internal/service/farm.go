package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

type FarmInput struct {
	LegalName    string `json:"legal_name"`
	Tag          string `json:"tag"`
	TaxID        string `json:"tax_id"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

type FarmListResult struct {
	Items []model.Farm `json:"data"`
	Total int          `json:"total"`
}

// FarmService is the farm registry the verification workflow refers to.
type FarmService interface {
	Create(ctx context.Context, in FarmInput) (*model.Farm, error)
	Get(ctx context.Context, id string) (*model.Farm, error)
	// Update applies a partial change. Administrators and the farm's FINCA
	// applicant or holder may update.
	Update(ctx context.Context, id string, patch model.FarmPatch) (*model.Farm, error)
	List(ctx context.Context, limit, offset int) (*FarmListResult, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Farm, error)
}

type farmService struct {
	repo   repository.FarmRepository
	grants repository.RoleGrantRepository
	options
}

func NewFarmService(repo repository.FarmRepository, grants repository.RoleGrantRepository, opts ...Option) FarmService {
	return &farmService{repo: repo, grants: grants, options: buildOptions(opts)}
}

func (s *farmService) Create(ctx context.Context, in FarmInput) (*model.Farm, error) {
	if _, ok := identity.FromContext(ctx); !ok {
		return nil, unauthenticated()
	}
	now := s.now()
	f := &model.Farm{
		ID:           uuid.NewString(),
		LegalName:    strings.TrimSpace(in.LegalName),
		Tag:          strings.ToUpper(strings.TrimSpace(in.Tag)),
		TaxID:        strings.TrimSpace(in.TaxID),
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateFarm(f); err != nil {
		return nil, err
	}

	out, err := s.repo.Create(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict("farm", f.Tag, "tag or tax id already registered", err)
		}
		return nil, fmt.Errorf("save farm: %w", err)
	}
	s.log(ctx).Info("farm registered", zap.String("farm_id", out.ID), zap.String("tag", out.Tag))
	return out, nil
}

func validateFarm(f *model.Farm) error {
	switch {
	case f.LegalName == "":
		return invalidInput("farm", f.ID, "legal_name is required")
	case f.Tag == "":
		return invalidInput("farm", f.ID, "tag is required")
	case f.TaxID == "":
		return invalidInput("farm", f.ID, "tax_id is required")
	}
	return nil
}

func (s *farmService) Get(ctx context.Context, id string) (*model.Farm, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("farm", id)
		}
		return nil, err
	}
	return f, nil
}

func (s *farmService) Update(ctx context.Context, id string, patch model.FarmPatch) (*model.Farm, error) {
	if _, ok := identity.FromContext(ctx); !ok {
		return nil, unauthenticated()
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := (farmAccess{grants: s.grants}).check(ctx, id, "update it"); err != nil {
		return nil, err
	}

	patch.Apply(f)
	f.LegalName = strings.TrimSpace(f.LegalName)
	f.Tag = strings.ToUpper(strings.TrimSpace(f.Tag))
	f.TaxID = strings.TrimSpace(f.TaxID)
	if err := validateFarm(f); err != nil {
		return nil, err
	}
	f.UpdatedAt = s.now()
	return s.save(ctx, f)
}

func (s *farmService) List(ctx context.Context, limit, offset int) (*FarmListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FarmListResult{Items: res.Items, Total: res.Total}, nil
}

// SetActive toggles the farm's active flag. Inactive farms cannot open new
// FINCA requests; existing grants and documents are left untouched.
func (s *farmService) SetActive(ctx context.Context, id string, active bool) (*model.Farm, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Active == active {
		return f, nil
	}
	f.Active = active
	f.UpdatedAt = s.now()
	out, err := s.save(ctx, f)
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("farm active flag changed", zap.String("farm_id", id), zap.Bool("active", active))
	return out, nil
}

func (s *farmService) save(ctx context.Context, f *model.Farm) (*model.Farm, error) {
	out, err := s.repo.Update(ctx, f)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return nil, conflict("farm", f.ID, "tag or tax id already registered", err)
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("farm", f.ID)
	case err != nil:
		return nil, fmt.Errorf("update farm: %w", err)
	}
	return out, nil
}
