package postgres

import (
	"context"
	"database/sql"

	"menuscan/internal/model"
	"menuscan/internal/repository"
)

// MenuPostgres is a PostgreSQL implementation of repository.MenuRepository.
type MenuPostgres struct {
	db *sql.DB
}

// NewMenuPostgres creates a new MenuPostgres repository.
func NewMenuPostgres(db *sql.DB) *MenuPostgres {
	return &MenuPostgres{db: db}
}

var _ repository.MenuRepository = (*MenuPostgres)(nil)

// Create inserts a new menu row and returns the stored record.
func (r *MenuPostgres) Create(ctx context.Context, m *model.Menu) (*model.Menu, error) {
	const q = `
		INSERT INTO menus (id, document_id, menu_index, name, fruit, image_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, document_id, menu_index, name, fruit, COALESCE(image_url, '')
	`
	row := r.db.QueryRowContext(ctx, q, m.ID, m.DocumentID, m.Index, m.Name, m.Fruit, m.ImageURL)
	var out model.Menu
	if err := row.Scan(&out.ID, &out.DocumentID, &out.Index, &out.Name, &out.Fruit, &out.ImageURL); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNutrition inserts the nutrition row belonging to a menu.
func (r *MenuPostgres) CreateNutrition(ctx context.Context, n *model.Nutrition) error {
	const q = `
		INSERT INTO menu_nutrition (menu_id, energy_kcal, protein_g, carbs_g, iron_mg, vitamin_a_ug, zinc_mg)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		n.MenuID,
		n.EnergyKcal,
		n.ProteinG,
		n.CarbsG,
		n.IronMg,
		n.VitaminAUg,
		n.ZincMg,
	)
	return err
}

// LinkRecipe inserts a menu-recipe association for one course slot.
func (r *MenuPostgres) LinkRecipe(ctx context.Context, link *model.MenuRecipe) error {
	const q = `INSERT INTO menu_recipes (menu_id, recipe_id, type) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, link.MenuID, link.RecipeID, link.Type)
	return err
}

// ListByDocument returns all menus of one document in extraction order.
func (r *MenuPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.Menu, error) {
	const q = `
		SELECT id, document_id, menu_index, name, fruit, COALESCE(image_url, '')
		FROM menus
		WHERE document_id = $1
		ORDER BY menu_index
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Menu, 0)
	for rows.Next() {
		var m model.Menu
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.Index, &m.Name, &m.Fruit, &m.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// FindNutrition returns the nutrition row of a menu.
func (r *MenuPostgres) FindNutrition(ctx context.Context, menuID string) (*model.Nutrition, error) {
	const q = `
		SELECT menu_id, energy_kcal, protein_g, carbs_g, iron_mg, vitamin_a_ug, zinc_mg
		FROM menu_nutrition
		WHERE menu_id = $1
	`
	row := r.db.QueryRowContext(ctx, q, menuID)
	var n model.Nutrition
	if err := row.Scan(
		&n.MenuID,
		&n.EnergyKcal,
		&n.ProteinG,
		&n.CarbsG,
		&n.IronMg,
		&n.VitaminAUg,
		&n.ZincMg,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
