package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

type MockRoleGrantRepository struct {
	mock.Mock
}

var _ repository.RoleGrantRepository = (*MockRoleGrantRepository)(nil)

func (m *MockRoleGrantRepository) Create(ctx context.Context, g *model.RoleGrant) (*model.RoleGrant, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}

func (m *MockRoleGrantRepository) FindByID(ctx context.Context, id string) (*model.RoleGrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}

func (m *MockRoleGrantRepository) ListByUser(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleGrant), args.Error(1)
}

func (m *MockRoleGrantRepository) ListByFarm(ctx context.Context, farmID string) ([]model.RoleGrant, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleGrant), args.Error(1)
}

func (m *MockRoleGrantRepository) ListPending(ctx context.Context, role model.Role, pq repository.PageQuery) (*repository.PageResult[model.RoleGrant], error) {
	args := m.Called(ctx, role, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.RoleGrant]), args.Error(1)
}

func (m *MockRoleGrantRepository) Decide(ctx context.Context, id string, d model.GrantDecision) (*model.RoleGrant, error) {
	args := m.Called(ctx, id, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}
