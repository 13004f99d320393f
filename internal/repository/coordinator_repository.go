package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

// CoordinatorRepository reads the regional coordinator directory.
type CoordinatorRepository struct {
	db *sqlx.DB
}

// NewCoordinatorRepository creates the repository.
func NewCoordinatorRepository(db *sqlx.DB) *CoordinatorRepository {
	return &CoordinatorRepository{db: db}
}

// List returns coordinators, optionally filtered by region, ordered by region.
func (r *CoordinatorRepository) List(ctx context.Context, region string) ([]models.Coordinator, error) {
	query := `SELECT id, region, name, phone, email, created_at, updated_at FROM coordinators`
	args := []interface{}{}
	if region != "" {
		query += ` WHERE region = $1`
		args = append(args, region)
	}
	query += ` ORDER BY region ASC`

	var coordinators []models.Coordinator
	if err := r.db.SelectContext(ctx, &coordinators, query, args...); err != nil {
		return nil, fmt.Errorf("list coordinators: %w", err)
	}
	return coordinators, nil
}
