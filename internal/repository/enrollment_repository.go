package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

const enrollmentColumns = "id, student_id, class_id, status, enrolled_at, updated_at"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByClassIDs returns enrollments of the given classes, optionally restricted to statuses.
func (r *EnrollmentRepository) ListByClassIDs(ctx context.Context, classIDs []string, statuses []string) ([]models.Enrollment, error) {
	if len(classIDs) == 0 {
		return []models.Enrollment{}, nil
	}
	return r.listBy(ctx, "class_id", classIDs, statuses, "list enrollments by classes")
}

// ListByStudentKeys returns enrollments written under any of the student keys.
func (r *EnrollmentRepository) ListByStudentKeys(ctx context.Context, studentKeys []string, statuses []string) ([]models.Enrollment, error) {
	if len(studentKeys) == 0 {
		return []models.Enrollment{}, nil
	}
	return r.listBy(ctx, "student_id", studentKeys, statuses, "list enrollments by student")
}

func (r *EnrollmentRepository) listBy(ctx context.Context, column string, keys []string, statuses []string, op string) ([]models.Enrollment, error) {
	clause, args := inClause(column, 1, keys)
	if normalized := statusStrings(statuses); len(normalized) > 0 {
		statusClause, statusArgs := inClause("status", len(args)+1, normalized)
		clause += " AND " + statusClause
		args = append(args, statusArgs...)
	}
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE %s ORDER BY enrolled_at ASC, id ASC", enrollmentColumns, clause)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsActive checks whether any of the student keys already holds an
// enrollment in the class with one of the given statuses. No statuses means ACTIVE.
func (r *EnrollmentRepository) ExistsActive(ctx context.Context, studentKeys []string, classID string, statuses []string) (bool, error) {
	if len(studentKeys) == 0 {
		return false, nil
	}
	normalized := statusStrings(statuses)
	if len(normalized) == 0 {
		normalized = []string{string(models.EnrollmentStatusActive)}
	}
	statusClause, statusArgs := inClause("status", 2, normalized)
	keyClause, keyArgs := inClause("student_id", 2+len(statusArgs), studentKeys)
	query := fmt.Sprintf("SELECT 1 FROM enrollments WHERE class_id = $1 AND %s AND %s LIMIT 1", statusClause, keyClause)
	args := append([]interface{}{classID}, statusArgs...)
	args = append(args, keyArgs...)
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, student_id, class_id, status, enrolled_at, updated_at)
        VALUES (:id, :student_id, :class_id, :status, :enrolled_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus changes the lifecycle status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
