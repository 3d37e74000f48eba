package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

type MockCompletenessService struct {
	mock.Mock
}

var _ service.CompletenessService = (*MockCompletenessService)(nil)

func (m *MockCompletenessService) Evaluate(ctx context.Context, farmID string) (*model.Completeness, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Completeness), args.Error(1)
}
