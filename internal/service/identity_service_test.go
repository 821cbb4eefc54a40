package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type personCall struct {
	table  models.PersonTable
	column models.PersonKeyColumn
	keys   []string
}

type fakePersonRepo struct {
	rows    map[models.PersonTable][]models.PersonRow
	errOn   models.PersonKeyColumn
	findErr error
	calls   []personCall
}

func (f *fakePersonRepo) ListByColumn(_ context.Context, table models.PersonTable, column models.PersonKeyColumn, keys []string) ([]models.PersonRow, error) {
	f.calls = append(f.calls, personCall{table: table, column: column, keys: append([]string(nil), keys...)})
	if f.errOn != "" && f.errOn == column {
		return nil, errors.New("profile store down")
	}
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}
	var out []models.PersonRow
	for _, row := range f.rows[table] {
		if _, ok := wanted[columnValue(row, column)]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePersonRepo) FindByKey(_ context.Context, table models.PersonTable, column models.PersonKeyColumn, key string) (*models.PersonRow, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, row := range f.rows[table] {
		if columnValue(row, column) == key {
			row := row
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memoryCacheRepo struct {
	items map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

// DeleteByPattern supports trailing-star patterns only.
func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func teacherRows() []models.PersonRow {
	return []models.PersonRow{
		{RowID: "t-row-1", AccountID: strPtr("acct-1"), FullName: strPtr("Rina Putri"), Email: strPtr("rina@example.com"), Phone: strPtr("0811")},
		{RowID: "t-row-2", AccountID: nil, FullName: strPtr("Budi"), Email: nil, Phone: strPtr("")},
	}
}

func TestNormalizePersonCanonicalID(t *testing.T) {
	rows := teacherRows()

	teacher := NormalizePerson(models.PersonTableTeachers, rows[0])
	assert.Equal(t, "acct-1", teacher.ID)
	assert.Equal(t, "Rina Putri", teacher.FullName)

	noAccount := NormalizePerson(models.PersonTableTeachers, rows[1])
	assert.Equal(t, "t-row-2", noAccount.ID)
	assert.Equal(t, models.UnknownDisplayValue, noAccount.Email)
	assert.Equal(t, models.UnknownDisplayValue, noAccount.Phone)

	student := NormalizePerson(models.PersonTableStudents, models.PersonRow{RowID: "s-1", AccountID: strPtr("acct-9")})
	assert.Equal(t, "s-1", student.ID)
	assert.Equal(t, models.UnknownDisplayValue, student.FullName)
}

func TestIdentityServiceResolveFallsBackToAlternateColumn(t *testing.T) {
	repo := &fakePersonRepo{rows: map[models.PersonTable][]models.PersonRow{models.PersonTableTeachers: teacherRows()}}
	svc := NewIdentityService(repo, nil, zap.NewNop())

	people, err := svc.Resolve(context.Background(), models.PersonTableTeachers, []string{"acct-1", "t-row-2", "ghost", "acct-1"})
	require.NoError(t, err)

	require.Len(t, repo.calls, 2)
	assert.Equal(t, models.PersonKeyAccountID, repo.calls[0].column)
	assert.Equal(t, []string{"acct-1", "t-row-2", "ghost"}, repo.calls[0].keys)
	assert.Equal(t, models.PersonKeyRowID, repo.calls[1].column)
	assert.Equal(t, []string{"t-row-2", "ghost"}, repo.calls[1].keys)

	assert.Equal(t, "acct-1", people["acct-1"].ID)
	assert.Equal(t, "t-row-2", people["t-row-2"].ID)
	_, found := people["ghost"]
	assert.False(t, found)
}

func TestIdentityServiceResolveReturnsPartialOnFailure(t *testing.T) {
	repo := &fakePersonRepo{
		rows:  map[models.PersonTable][]models.PersonRow{models.PersonTableTeachers: teacherRows()},
		errOn: models.PersonKeyRowID,
	}
	svc := NewIdentityService(repo, nil, nil)

	people, err := svc.Resolve(context.Background(), models.PersonTableTeachers, []string{"acct-1", "t-row-2"})
	require.Error(t, err)
	assert.Contains(t, people, "acct-1")
	assert.NotContains(t, people, "t-row-2")
}

func TestIdentityServiceResolveUsesProfileCache(t *testing.T) {
	repo := &fakePersonRepo{rows: map[models.PersonTable][]models.PersonRow{models.PersonTableTeachers: teacherRows()}}
	cache := NewProfileCache(newMemoryCacheRepo(), NewMetricsService(), time.Minute, nil, true)
	svc := NewIdentityService(repo, cache, nil)

	_, err := svc.Resolve(context.Background(), models.PersonTableTeachers, []string{"acct-1"})
	require.NoError(t, err)
	people, err := svc.Resolve(context.Background(), models.PersonTableTeachers, []string{"acct-1"})
	require.NoError(t, err)

	assert.Len(t, repo.calls, 1)
	assert.Equal(t, "Rina Putri", people["acct-1"].FullName)
}

func TestIdentityServiceLookupAndAliases(t *testing.T) {
	repo := &fakePersonRepo{rows: map[models.PersonTable][]models.PersonRow{models.PersonTableTeachers: teacherRows()}}
	svc := NewIdentityService(repo, nil, nil)

	person, err := svc.Lookup(context.Background(), models.PersonTableTeachers, "t-row-1")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", person.Identity.ID)
	assert.ElementsMatch(t, []string{"t-row-1", "acct-1"}, person.Aliases)

	assert.Equal(t, []string{"acct-1", "t-row-1"}, svc.AliasKeys(context.Background(), models.PersonTableTeachers, "acct-1"))
	assert.Equal(t, []string{"ghost"}, svc.AliasKeys(context.Background(), models.PersonTableTeachers, "ghost"))

	_, err = svc.Lookup(context.Background(), models.PersonTableTeachers, "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPersonNotFound)
}

func TestIdentityServiceLookupStoreFailure(t *testing.T) {
	svc := NewIdentityService(&fakePersonRepo{findErr: errors.New("timeout")}, nil, nil)

	_, err := svc.Lookup(context.Background(), models.PersonTableStudents, "s-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"s-1"}, svc.AliasKeys(context.Background(), models.PersonTableStudents, "s-1"))
}

type aliasTable map[string][]string

func (a aliasTable) AliasKeys(_ context.Context, _ models.PersonTable, key string) []string {
	if aliases, ok := a[key]; ok {
		return aliases
	}
	return []string{key}
}

func TestFetchWithAliasFallback(t *testing.T) {
	var calls [][]string
	fetch := func(_ context.Context, keys []string) ([]string, error) {
		calls = append(calls, keys)
		if len(keys) > 1 {
			return []string{"class-1"}, nil
		}
		return nil, nil
	}

	got, err := fetchWithAliasFallback(context.Background(), aliasTable{"t-row-1": {"t-row-1", "acct-1"}}, models.PersonTableTeachers, "t-row-1", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"class-1"}, got)
	assert.Equal(t, [][]string{{"t-row-1"}, {"t-row-1", "acct-1"}}, calls)

	calls = nil
	got, err = fetchWithAliasFallback(context.Background(), aliasTable{}, models.PersonTableTeachers, "lonely", fetch)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, calls, 1)
}
