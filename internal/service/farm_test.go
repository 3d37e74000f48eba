package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
	repoMocks "verifyapi/internal/repository/mocks"
)

func ptr[T any](v T) *T { return &v }

func TestFarmService_Create(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		in       FarmInput
		wantKind Kind
	}{
		{
			name: "happy path",
			ctx:  userCtx("user-1"),
			in:   FarmInput{LegalName: " Flores del Campo SAS ", Tag: "fdc", TaxID: "900123"},
		},
		{name: "no actor", ctx: context.Background(), in: FarmInput{LegalName: "x", Tag: "x", TaxID: "x"}, wantKind: KindUnauthenticated},
		{name: "missing legal name", ctx: adminCtx(), in: FarmInput{Tag: "x", TaxID: "x"}, wantKind: KindInvalidInput},
		{name: "missing tag", ctx: adminCtx(), in: FarmInput{LegalName: "x", TaxID: "x"}, wantKind: KindInvalidInput},
		{name: "missing tax id", ctx: adminCtx(), in: FarmInput{LegalName: "x", Tag: "x"}, wantKind: KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkflow(t)

			f, err := w.farmSvc.Create(tt.ctx, tt.in)

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, f.ID)
			assert.Equal(t, "Flores del Campo SAS", f.LegalName)
			assert.Equal(t, "FDC", f.Tag)
			assert.True(t, f.Active)
			assert.Equal(t, fixedNow, f.CreatedAt)
		})
	}
}

func TestFarmService_CreateDuplicate(t *testing.T) {
	w := newWorkflow(t)
	ctx := adminCtx()
	_, err := w.farmSvc.Create(ctx, FarmInput{LegalName: "A", Tag: "AAA", TaxID: "1"})
	require.NoError(t, err)

	_, err = w.farmSvc.Create(ctx, FarmInput{LegalName: "B", Tag: "aaa", TaxID: "2"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = w.farmSvc.Create(ctx, FarmInput{LegalName: "C", Tag: "CCC", TaxID: "1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFarmService_Update(t *testing.T) {
	w := newWorkflow(t)
	w.farm(t, "farm-1", true)
	_, err := w.roles.RequestRole(userCtx("owner"), "owner", model.RoleFinca, model.GrantMetadata{FarmID: "farm-1"})
	require.NoError(t, err)

	f, err := w.farmSvc.Update(userCtx("owner"), "farm-1", model.FarmPatch{ContactEmail: ptr("ops@farm.co")})
	require.NoError(t, err)
	assert.Equal(t, "ops@farm.co", f.ContactEmail)
	assert.Equal(t, "Farm farm-1", f.LegalName)

	_, err = w.farmSvc.Update(userCtx("stranger"), "farm-1", model.FarmPatch{ContactEmail: ptr("x@y.z")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = w.farmSvc.Update(adminCtx(), "farm-1", model.FarmPatch{LegalName: ptr("  ")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = w.farmSvc.Update(adminCtx(), "ghost", model.FarmPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFarmService_SetActive(t *testing.T) {
	w := newWorkflow(t)
	w.farm(t, "farm-1", true)

	_, err := w.farmSvc.SetActive(userCtx("user-1"), "farm-1", false)
	assert.ErrorIs(t, err, ErrForbidden)

	f, err := w.farmSvc.SetActive(adminCtx(), "farm-1", false)
	require.NoError(t, err)
	assert.False(t, f.Active)

	_, err = w.roles.RequestRole(userCtx("user-1"), "user-1", model.RoleFinca, model.GrantMetadata{FarmID: "farm-1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFarmService_List(t *testing.T) {
	repo := new(repoMocks.MockFarmRepository)
	repo.On("List", mock.Anything, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.Farm]{Items: []model.Farm{{ID: "a"}}, Total: 1}, nil).Once()
	repo.On("List", mock.Anything, repository.PageQuery{Limit: 3, Offset: 6}).
		Return(nil, errors.New("db fail")).Once()
	svc := NewFarmService(repo, nil)

	res, err := svc.List(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	_, err = svc.List(context.Background(), 3, 6)
	assert.EqualError(t, err, "db fail")
	repo.AssertExpectations(t)
}
