package postgres

import (
	"context"
	"database/sql"

	"menuscan/internal/model"
	"menuscan/internal/repository"
)

// RecipePostgres is a PostgreSQL implementation of repository.RecipeRepository.
type RecipePostgres struct {
	db *sql.DB
}

// NewRecipePostgres creates a new RecipePostgres repository.
func NewRecipePostgres(db *sql.DB) *RecipePostgres {
	return &RecipePostgres{db: db}
}

var _ repository.RecipeRepository = (*RecipePostgres)(nil)

// GetOrCreate inserts the recipe, ignoring the insert when its (name, type)
// key already exists, then reads the surviving row back. The unique
// constraint makes this safe under concurrent writers: whoever inserts first
// wins and the other caller sees the existing row with its original text.
func (r *RecipePostgres) GetOrCreate(ctx context.Context, rec *model.Recipe) (*model.Recipe, error) {
	const qInsert = `
		INSERT INTO recipes (id, name, type, ingredients_text, preparation_text)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name, type) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, qInsert,
		rec.ID,
		rec.Name,
		rec.Type,
		rec.IngredientsText,
		rec.PreparationText,
	); err != nil {
		return nil, err
	}

	const qSelect = `
		SELECT id, name, type, ingredients_text, preparation_text
		FROM recipes
		WHERE name = $1 AND type = $2
	`
	row := r.db.QueryRowContext(ctx, qSelect, rec.Name, rec.Type)
	var out model.Recipe
	if err := row.Scan(&out.ID, &out.Name, &out.Type, &out.IngredientsText, &out.PreparationText); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByMenu returns the recipes linked to a menu, one per filled course slot,
// in starter/main/drink order.
func (r *RecipePostgres) ListByMenu(ctx context.Context, menuID string) ([]model.MenuCourse, error) {
	const q = `
		SELECT mr.type, rc.id, rc.name, rc.type, rc.ingredients_text, rc.preparation_text
		FROM menu_recipes mr
		JOIN recipes rc ON rc.id = mr.recipe_id
		WHERE mr.menu_id = $1
		ORDER BY CASE mr.type WHEN 'starter' THEN 0 WHEN 'main' THEN 1 ELSE 2 END
	`
	rows, err := r.db.QueryContext(ctx, q, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MenuCourse, 0)
	for rows.Next() {
		var mc model.MenuCourse
		if err := rows.Scan(
			&mc.Type,
			&mc.Recipe.ID,
			&mc.Recipe.Name,
			&mc.Recipe.Type,
			&mc.Recipe.IngredientsText,
			&mc.Recipe.PreparationText,
		); err != nil {
			return nil, err
		}
		items = append(items, mc)
	}
	return items, rows.Err()
}
