package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

type MockRoleService struct {
	mock.Mock
}

var _ service.RoleService = (*MockRoleService)(nil)

func (m *MockRoleService) RequestRole(ctx context.Context, userID string, role model.Role, md model.GrantMetadata) (*model.RoleGrant, error) {
	args := m.Called(ctx, userID, role, md)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}

func (m *MockRoleService) Approve(ctx context.Context, id string) (*model.RoleGrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}

func (m *MockRoleService) Reject(ctx context.Context, id, reason string) (*model.RoleGrant, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}

func (m *MockRoleService) Get(ctx context.Context, id string) (*model.RoleGrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleGrant), args.Error(1)
}

func (m *MockRoleService) ListByUser(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleGrant), args.Error(1)
}

func (m *MockRoleService) ListPending(ctx context.Context, role model.Role, limit, offset int) (*service.RoleGrantListResult, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RoleGrantListResult), args.Error(1)
}

func (m *MockRoleService) Sweep(ctx context.Context) (*service.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SweepResult), args.Error(1)
}
