package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// TeacherAssignmentRepository reads teacher-class assignments.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// ListByClassIDs returns assignments for the given classes, main teachers first.
func (r *TeacherAssignmentRepository) ListByClassIDs(ctx context.Context, classIDs []string) ([]models.TeacherAssignment, error) {
	if len(classIDs) == 0 {
		return []models.TeacherAssignment{}, nil
	}
	clause, args := inClause("class_id", 1, classIDs)
	query := fmt.Sprintf("SELECT id, class_id, teacher_id, is_main FROM class_teachers WHERE %s ORDER BY class_id ASC, is_main DESC, id ASC", clause)
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher assignments by classes: %w", err)
	}
	return assignments, nil
}

// ListClassIDsByTeacherKeys returns the distinct classes assigned to any of the teacher keys.
func (r *TeacherAssignmentRepository) ListClassIDsByTeacherKeys(ctx context.Context, teacherKeys []string) ([]string, error) {
	if len(teacherKeys) == 0 {
		return []string{}, nil
	}
	clause, args := inClause("teacher_id", 1, teacherKeys)
	query := fmt.Sprintf("SELECT DISTINCT class_id FROM class_teachers WHERE %s ORDER BY class_id ASC", clause)
	var classIDs []string
	if err := r.db.SelectContext(ctx, &classIDs, query, args...); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classIDs, nil
}
