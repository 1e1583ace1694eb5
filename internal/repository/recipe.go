package repository

import (
	"context"

	"menuscan/internal/model"
)

// RecipeRepository defines data access for deduplicated recipes.
type RecipeRepository interface {
	// GetOrCreate resolves a recipe by its (name, type) key, inserting it on
	// first sight. The insert ignores conflicts on the key's unique
	// constraint, so concurrent callers racing on the same key converge on a
	// single row and later ingredient/preparation text is discarded
	// (first-writer-wins).
	GetOrCreate(ctx context.Context, r *model.Recipe) (*model.Recipe, error)

	// ListByMenu returns the resolved recipes of a menu, one per filled
	// course slot.
	ListByMenu(ctx context.Context, menuID string) ([]model.MenuCourse, error)
}
