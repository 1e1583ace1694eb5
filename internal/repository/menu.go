package repository

import (
	"context"

	"menuscan/internal/model"
)

// MenuRepository defines data access for extracted menus and their
// nutrition facts and recipe links.
type MenuRepository interface {
	// Create inserts a new menu row and returns it with its generated ID.
	Create(ctx context.Context, m *model.Menu) (*model.Menu, error)

	// CreateNutrition inserts the 1:1 nutrition row of a menu.
	CreateNutrition(ctx context.Context, n *model.Nutrition) error

	// LinkRecipe ties a menu to a recipe at a course-type slot.
	LinkRecipe(ctx context.Context, link *model.MenuRecipe) error

	// ListByDocument returns all menus extracted from one document.
	ListByDocument(ctx context.Context, documentID string) ([]model.Menu, error)

	// FindNutrition returns the nutrition row of a menu.
	FindNutrition(ctx context.Context, menuID string) (*model.Nutrition, error)
}
