package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/notify"
	"verifyapi/internal/repository"
)

// RoleGrantListResult is the service-level DTO for paginated grants.
type RoleGrantListResult struct {
	Items []model.RoleGrant `json:"data"`
	Total int               `json:"total"`
}

// SweepResult reports one automated pass over pending FINCA grants.
type SweepResult struct {
	Approved []model.RoleGrant `json:"approved"`
	Blocked  []BlockedGrant    `json:"blocked"`
}

// BlockedGrant is a FINCA grant the gate kept PENDING.
type BlockedGrant struct {
	Grant        model.RoleGrant     `json:"grant"`
	PendingTypes []model.PendingType `json:"pending_types"`
}

// RoleService runs the role assignment state machine. FINCA approvals pass
// through the verification gate immediately before the write.
type RoleService interface {
	// RequestRole opens a PENDING grant. A user holds at most one PENDING
	// grant per role.
	RequestRole(ctx context.Context, userID string, role model.Role, md model.GrantMetadata) (*model.RoleGrant, error)
	Approve(ctx context.Context, id string) (*model.RoleGrant, error)
	// Reject is permitted from PENDING regardless of completeness.
	Reject(ctx context.Context, id, reason string) (*model.RoleGrant, error)

	// Get returns a grant to its holder or an administrator.
	Get(ctx context.Context, id string) (*model.RoleGrant, error)
	ListByUser(ctx context.Context, userID string) ([]model.RoleGrant, error)
	ListPending(ctx context.Context, role model.Role, limit, offset int) (*RoleGrantListResult, error)

	// Sweep approves every pending FINCA grant whose farm is complete.
	Sweep(ctx context.Context) (*SweepResult, error)
}

type roleService struct {
	repo  repository.RoleGrantRepository
	farms repository.FarmRepository
	gate  *Gate
	options
}

func NewRoleService(repo repository.RoleGrantRepository, farms repository.FarmRepository, gate *Gate, opts ...Option) RoleService {
	return &roleService{repo: repo, farms: farms, gate: gate, options: buildOptions(opts)}
}

func (s *roleService) RequestRole(ctx context.Context, userID string, role model.Role, md model.GrantMetadata) (_ *model.RoleGrant, err error) {
	ctx, span := tracer.Start(ctx, "RoleService.RequestRole", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("role", string(role)),
	))
	defer func() { finish(span, err) }()

	actor, ok := identity.FromContext(ctx)
	if !ok {
		return nil, unauthenticated()
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidInput("user", "", "user id is required")
	}
	if userID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden("a role may only be requested for yourself")
	}
	if !role.Valid() {
		return nil, invalidInput("role", string(role), "unknown role")
	}

	md.RejectionReason = ""
	md.FarmID = strings.TrimSpace(md.FarmID)
	if role == model.RoleFinca {
		if err := s.checkFarmFree(ctx, md.FarmID); err != nil {
			return nil, err
		}
	} else {
		md.FarmID = ""
	}

	now := s.now()
	g, err := s.repo.Create(ctx, &model.RoleGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Status:    model.StatusPending,
		Metadata:  md,
		CreatedAt: now,
		UpdatedAt: now,
	})
	switch {
	case errors.Is(err, repository.ErrFarmClaimed):
		return nil, conflict("farm", md.FarmID, "already linked to a live FINCA grant", err)
	case errors.Is(err, repository.ErrConflict):
		return nil, conflict("role_grant", userID, fmt.Sprintf("a %s request is already pending", role), err)
	case err != nil:
		return nil, fmt.Errorf("save role grant: %w", err)
	}

	s.metrics.GrantRequested(string(role))
	s.log(ctx).Info("role requested",
		zap.String("grant_id", g.ID),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("farm_id", md.FarmID),
	)
	return g, nil
}

// checkFarmFree requires an existing active farm with no other live FINCA
// grant. It gives a precise early answer; the store's uniqueness rule settles
// concurrent requests.
func (s *roleService) checkFarmFree(ctx context.Context, farmID string) error {
	if farmID == "" {
		return invalidInput("farm", "", "a FINCA request must name a farm")
	}
	farm, err := s.farms.FindByID(ctx, farmID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidInput("farm", farmID, "unknown farm")
		}
		return fmt.Errorf("load farm: %w", err)
	}
	if !farm.Active {
		return invalidInput("farm", farmID, "farm is inactive")
	}
	grants, err := s.repo.ListByFarm(ctx, farmID)
	if err != nil {
		return fmt.Errorf("load farm grants: %w", err)
	}
	for _, g := range grants {
		if g.Status != model.StatusRejected {
			return conflict("farm", farmID, fmt.Sprintf("already linked to %s grant %s", g.Status, g.ID), nil)
		}
	}
	return nil
}

func (s *roleService) Approve(ctx context.Context, id string) (_ *model.RoleGrant, err error) {
	ctx, span := tracer.Start(ctx, "RoleService.Approve",
		trace.WithAttributes(attribute.String("grant.id", id)))
	defer func() { finish(span, err) }()

	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.Role == model.RoleFinca {
		if err := s.gate.Check(ctx, g.Metadata.FarmID); err != nil {
			if errors.Is(err, ErrPreconditionFailed) {
				s.metrics.GateDenied()
				s.log(ctx).Info("approval blocked by gate",
					zap.String("grant_id", id),
					zap.String("farm_id", g.Metadata.FarmID),
				)
			}
			return nil, err
		}
	}

	return s.decide(ctx, g, model.GrantDecision{
		Status:    model.StatusApproved,
		DecidedBy: actor.UserID,
		At:        s.now(),
	})
}

func (s *roleService) Reject(ctx context.Context, id, reason string) (_ *model.RoleGrant, err error) {
	ctx, span := tracer.Start(ctx, "RoleService.Reject",
		trace.WithAttributes(attribute.String("grant.id", id)))
	defer func() { finish(span, err) }()

	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, g, model.GrantDecision{
		Status:    model.StatusRejected,
		DecidedBy: actor.UserID,
		Reason:    strings.TrimSpace(reason),
		At:        s.now(),
	})
}

func (s *roleService) pending(ctx context.Context, id string) (*model.RoleGrant, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("role_grant", id)
		}
		return nil, fmt.Errorf("load role grant: %w", err)
	}
	if g.Status != model.StatusPending {
		return nil, invalidTransition("role_grant", id, g.Status)
	}
	return g, nil
}

func (s *roleService) decide(ctx context.Context, g *model.RoleGrant, d model.GrantDecision) (*model.RoleGrant, error) {
	out, err := s.repo.Decide(ctx, g.ID, d)
	switch {
	case errors.Is(err, repository.ErrStaleState):
		return nil, invalidTransition("role_grant", g.ID, "")
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("role_grant", g.ID)
	case err != nil:
		return nil, fmt.Errorf("decide role grant: %w", err)
	}

	s.metrics.GrantDecided(string(out.Role), string(out.Status))
	s.log(ctx).Info("role grant decided",
		zap.String("grant_id", out.ID),
		zap.String("role", string(out.Role)),
		zap.String("status", string(out.Status)),
		zap.String("decided_by", d.DecidedBy),
	)

	ev := notify.RoleGrantApproved
	if out.Status == model.StatusRejected {
		ev = notify.RoleGrantRejected
	}
	s.emit(ctx, notify.Event{
		Type:     ev,
		EntityID: out.ID,
		FarmID:   out.Metadata.FarmID,
		UserID:   out.UserID,
		ActorID:  d.DecidedBy,
		Comment:  out.Metadata.RejectionReason,
		At:       d.At,
		Attrs:    map[string]string{"role": string(out.Role)},
	})
	return out, nil
}

func (s *roleService) Get(ctx context.Context, id string) (*model.RoleGrant, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("role_grant", id)
		}
		return nil, err
	}
	if err := canReadGrant(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListByUser returns a user's grant history. Users see their own history;
// administrators see anyone's.
func (s *roleService) ListByUser(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	actor, ok := identity.FromContext(ctx)
	if !ok {
		return nil, unauthenticated()
	}
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("user", "", "user id is required")
	}
	if userID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden("only administrators may read another user's grants")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *roleService) ListPending(ctx context.Context, role model.Role, limit, offset int) (*RoleGrantListResult, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, invalidInput("role", string(role), "unknown role")
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.ListPending(ctx, role, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RoleGrantListResult{Items: res.Items, Total: res.Total}, nil
}

const sweepBatch = 100

func (s *roleService) Sweep(ctx context.Context) (_ *SweepResult, err error) {
	ctx, span := tracer.Start(ctx, "RoleService.Sweep")
	defer func() { finish(span, err) }()

	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	// Collect first: approvals shrink the pending set and would shift pages.
	var queue []model.RoleGrant
	for offset := 0; ; offset += sweepBatch {
		res, err := s.repo.ListPending(ctx, model.RoleFinca, repository.PageQuery{Limit: sweepBatch, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list pending grants: %w", err)
		}
		queue = append(queue, res.Items...)
		if len(res.Items) < sweepBatch {
			break
		}
	}

	out := &SweepResult{Approved: []model.RoleGrant{}, Blocked: []BlockedGrant{}}
	for _, g := range queue {
		approved, err := s.Approve(ctx, g.ID)
		var se *Error
		switch {
		case err == nil:
			out.Approved = append(out.Approved, *approved)
		case errors.As(err, &se) && se.Kind == KindPreconditionFailed:
			out.Blocked = append(out.Blocked, BlockedGrant{Grant: g, PendingTypes: se.PendingTypes})
		case errors.Is(err, ErrInvalidTransition):
			// decided by someone else since the listing
		case errors.Is(err, ErrNotFound):
			s.log(ctx).Warn("pending grant references a missing farm",
				zap.String("grant_id", g.ID), zap.String("farm_id", g.Metadata.FarmID))
		default:
			return out, fmt.Errorf("sweep grant %s: %w", g.ID, err)
		}
	}

	s.log(ctx).Info("sweep finished",
		zap.Int("approved", len(out.Approved)),
		zap.Int("blocked", len(out.Blocked)),
	)
	return out, nil
}
