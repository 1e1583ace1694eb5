package repository

import (
	"context"

	"menuscan/internal/model"
)

// DepartmentRepository defines read access to the seeded departments table.
type DepartmentRepository interface {
	// List returns all departments ordered by name.
	List(ctx context.Context) ([]model.Department, error)

	// FindByID returns a department by its ID.
	FindByID(ctx context.Context, id string) (*model.Department, error)
}
