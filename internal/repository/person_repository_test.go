package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

var personRowColumns = []string{"id", "user_id", "full_name", "email", "phone"}

func TestPersonRepositoryListByColumn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	rows := sqlmock.NewRows(personRowColumns).
		AddRow("t-1", "user-1", "Budi", "budi@example.com", nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, full_name, email, phone FROM teachers WHERE user_id IN ($1,$2)")).
		WithArgs("user-1", "user-2").
		WillReturnRows(rows)

	people, err := repo.ListByColumn(context.Background(), models.PersonTableTeachers, models.PersonKeyAccountID, []string{"user-1", "user-2"})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "user-1", *people[0].AccountID)
	assert.Nil(t, people[0].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryFindByKeyNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, full_name, email, phone FROM students WHERE id = $1 LIMIT 1")).
		WithArgs("s-9").
		WillReturnRows(sqlmock.NewRows(personRowColumns))

	_, err := repo.FindByKey(context.Background(), models.PersonTableStudents, models.PersonKeyRowID, "s-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryRejectsUnknownIdentifiers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	_, err := repo.ListByColumn(context.Background(), models.PersonTable("users; DROP TABLE x"), models.PersonKeyRowID, []string{"1"})
	assert.Error(t, err)
	_, err = repo.FindByKey(context.Background(), models.PersonTableStudents, models.PersonKeyColumn("email"), "a@b.c")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
