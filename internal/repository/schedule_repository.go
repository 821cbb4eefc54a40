package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// ScheduleRepository reads weekly class meeting times.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByClassIDs returns the flat slot rows of every class in ids.
func (r *ScheduleRepository) ListByClassIDs(ctx context.Context, classIDs []string) ([]models.ScheduleSlotRow, error) {
	if len(classIDs) == 0 {
		return []models.ScheduleSlotRow{}, nil
	}
	clause, args := inClause("class_id", 1, classIDs)
	query := fmt.Sprintf("SELECT id, class_id, day_of_week, start_time, end_time, location FROM class_schedules WHERE %s", clause)
	var rows []models.ScheduleSlotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules by classes: %w", err)
	}
	return rows, nil
}
