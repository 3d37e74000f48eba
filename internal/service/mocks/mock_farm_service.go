package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

type MockFarmService struct {
	mock.Mock
}

var _ service.FarmService = (*MockFarmService)(nil)

func (m *MockFarmService) Create(ctx context.Context, in service.FarmInput) (*model.Farm, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}

func (m *MockFarmService) Get(ctx context.Context, id string) (*model.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}

func (m *MockFarmService) Update(ctx context.Context, id string, patch model.FarmPatch) (*model.Farm, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}

func (m *MockFarmService) List(ctx context.Context, limit, offset int) (*service.FarmListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FarmListResult), args.Error(1)
}

func (m *MockFarmService) SetActive(ctx context.Context, id string, active bool) (*model.Farm, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}
