package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// PersonRepository reads teacher and student profile rows. Both tables carry a
// surrogate id and a shared account id.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs a PersonRepository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// ListByColumn returns profile rows whose key column matches any of keys.
func (r *PersonRepository) ListByColumn(ctx context.Context, table models.PersonTable, column models.PersonKeyColumn, keys []string) ([]models.PersonRow, error) {
	if len(keys) == 0 {
		return []models.PersonRow{}, nil
	}
	if err := checkPersonSource(table, column); err != nil {
		return nil, err
	}
	clause, args := inClause(string(column), 1, keys)
	query := fmt.Sprintf("SELECT id, user_id, full_name, email, phone FROM %s WHERE %s", table, clause)
	var rows []models.PersonRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", table, column, err)
	}
	return rows, nil
}

// FindByKey loads a single profile row by key column. It returns sql.ErrNoRows when absent.
func (r *PersonRepository) FindByKey(ctx context.Context, table models.PersonTable, column models.PersonKeyColumn, key string) (*models.PersonRow, error) {
	if err := checkPersonSource(table, column); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT id, user_id, full_name, email, phone FROM %s WHERE %s = $1 LIMIT 1", table, column)
	var row models.PersonRow
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by %s: %w", table, column, err)
	}
	return &row, nil
}

// table and column are interpolated into SQL, so only known identifiers pass.
func checkPersonSource(table models.PersonTable, column models.PersonKeyColumn) error {
	switch table {
	case models.PersonTableTeachers, models.PersonTableStudents:
	default:
		return fmt.Errorf("unknown person table %q", table)
	}
	switch column {
	case models.PersonKeyRowID, models.PersonKeyAccountID:
	default:
		return fmt.Errorf("unknown person key column %q", column)
	}
	return nil
}
