package postgres

import (
	"context"
	"database/sql"

	"menuscan/internal/model"
	"menuscan/internal/repository"
)

// DepartmentPostgres is a PostgreSQL implementation of repository.DepartmentRepository.
type DepartmentPostgres struct {
	db *sql.DB
}

// NewDepartmentPostgres creates a new DepartmentPostgres repository.
func NewDepartmentPostgres(db *sql.DB) *DepartmentPostgres {
	return &DepartmentPostgres{db: db}
}

var _ repository.DepartmentRepository = (*DepartmentPostgres)(nil)

// List returns all departments ordered by name.
func (r *DepartmentPostgres) List(ctx context.Context) ([]model.Department, error) {
	const q = `SELECT id, name, slug, created_at FROM departments ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Department, 0)
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// FindByID returns a department by its ID.
func (r *DepartmentPostgres) FindByID(ctx context.Context, id string) (*model.Department, error) {
	const q = `SELECT id, name, slug, created_at FROM departments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Slug, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
