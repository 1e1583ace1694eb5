package mocks

import (
	"context"

	"menuscan/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) GetOrCreate(ctx context.Context, r *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) ListByMenu(ctx context.Context, menuID string) ([]model.MenuCourse, error) {
	args := m.Called(ctx, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuCourse), args.Error(1)
}
