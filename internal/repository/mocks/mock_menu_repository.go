package mocks

import (
	"context"

	"menuscan/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) Create(ctx context.Context, menu *model.Menu) (*model.Menu, error) {
	args := m.Called(ctx, menu)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Menu), args.Error(1)
}

func (m *MockMenuRepository) CreateNutrition(ctx context.Context, n *model.Nutrition) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockMenuRepository) LinkRecipe(ctx context.Context, link *model.MenuRecipe) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockMenuRepository) ListByDocument(ctx context.Context, documentID string) ([]model.Menu, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Menu), args.Error(1)
}

func (m *MockMenuRepository) FindNutrition(ctx context.Context, menuID string) (*model.Nutrition, error) {
	args := m.Called(ctx, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Nutrition), args.Error(1)
}
