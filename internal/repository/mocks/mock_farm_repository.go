package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

type MockFarmRepository struct {
	mock.Mock
}

var _ repository.FarmRepository = (*MockFarmRepository)(nil)

func (m *MockFarmRepository) Create(ctx context.Context, f *model.Farm) (*model.Farm, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}

func (m *MockFarmRepository) FindByID(ctx context.Context, id string) (*model.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}

func (m *MockFarmRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Farm], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Farm]), args.Error(1)
}

func (m *MockFarmRepository) Update(ctx context.Context, f *model.Farm) (*model.Farm, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farm), args.Error(1)
}
