package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

const classColumns = "id, name, description, fee, is_active, is_public, category_id, created_at, updated_at"

// ClassRepository reads class catalog rows.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByIDs returns the classes matching ids ordered by id ascending. Unknown ids are skipped.
func (r *ClassRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	if len(ids) == 0 {
		return []models.Class{}, nil
	}
	clause, args := inClause("id", 1, ids)
	query := fmt.Sprintf("SELECT %s FROM classes WHERE %s ORDER BY id ASC", classColumns, clause)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("find classes by ids: %w", err)
	}
	return classes, nil
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}
