package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis unreachable")
}

func (failingCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis unreachable")
}

func (failingCacheRepo) DeleteByPattern(context.Context, string) error {
	return errors.New("redis unreachable")
}

var rina = models.PersonIdentity{ID: "acct-1", FullName: "Rina", Email: "rina@example.com", Phone: "0811"}

func TestProfileCacheDisabledIsMiss(t *testing.T) {
	var nilCache *ProfileCache
	_, hit := nilCache.Lookup(context.Background(), models.PersonTableTeachers, "acct-1")
	assert.False(t, hit)
	assert.NoError(t, nilCache.Flush(context.Background(), ""))

	repo := newMemoryCacheRepo()
	disabled := NewProfileCache(repo, nil, 0, nil, false)
	require.NoError(t, disabled.Remember(context.Background(), models.PersonTableTeachers, "acct-1", rina))
	assert.Empty(t, repo.items)
	_, hit = disabled.Lookup(context.Background(), models.PersonTableTeachers, "acct-1")
	assert.False(t, hit)
}

func TestProfileCacheKeysByTableAndKey(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemoryCacheRepo()
	cache := NewProfileCache(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	_, hit := cache.Lookup(ctx, models.PersonTableTeachers, "t-row-1")
	assert.False(t, hit)

	require.NoError(t, cache.Remember(ctx, models.PersonTableTeachers, "t-row-1", rina))
	require.NoError(t, cache.Remember(ctx, models.PersonTableTeachers, "acct-1", rina))
	require.NoError(t, cache.Remember(ctx, models.PersonTableStudents, "s-1", models.PersonIdentity{ID: "s-1", FullName: "Sari"}))
	assert.Contains(t, repo.items, "person:teachers:t-row-1")
	assert.Contains(t, repo.items, "person:teachers:acct-1")
	assert.Contains(t, repo.items, "person:students:s-1")

	got, hit := cache.Lookup(ctx, models.PersonTableTeachers, "t-row-1")
	require.True(t, hit)
	assert.Equal(t, rina, got)
	_, hit = cache.Lookup(ctx, models.PersonTableStudents, "t-row-1")
	assert.False(t, hit, "tables do not share entries")

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 1, snapshot.CacheHits)
	assert.EqualValues(t, 2, snapshot.CacheMisses)
}

func TestProfileCacheFlushByTable(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewProfileCache(repo, nil, 0, nil, true)
	ctx := context.Background()
	require.NoError(t, cache.Remember(ctx, models.PersonTableTeachers, "acct-1", rina))
	require.NoError(t, cache.Remember(ctx, models.PersonTableStudents, "s-1", models.PersonIdentity{ID: "s-1"}))

	require.NoError(t, cache.Flush(ctx, models.PersonTableTeachers))
	assert.NotContains(t, repo.items, "person:teachers:acct-1")
	assert.Contains(t, repo.items, "person:students:s-1")

	require.NoError(t, cache.Flush(ctx, ""))
	assert.Empty(t, repo.items)
}

func TestProfileCacheBackendErrors(t *testing.T) {
	cache := NewProfileCache(failingCacheRepo{}, nil, 0, nil, true)
	ctx := context.Background()

	_, hit := cache.Lookup(ctx, models.PersonTableTeachers, "acct-1")
	assert.False(t, hit, "read failures fall through to the store")
	assert.Error(t, cache.Remember(ctx, models.PersonTableTeachers, "acct-1", rina))
	err := cache.Flush(ctx, models.PersonTableStudents)
	require.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
}

func TestMetricsServiceConflictChecks(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveConflictCheck(3, false)
	metrics.ObserveConflictCheck(0, false)
	metrics.ObserveConflictCheck(0, true)
	metrics.RecordDegradedFetch("teachers")

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 3, snapshot.ConflictsDetected)
	assert.EqualValues(t, 1, snapshot.DegradedFetches)

	var nilMetrics *MetricsService
	assert.NotPanics(t, func() {
		nilMetrics.ObserveConflictCheck(1, false)
		nilMetrics.RecordDegradedFetch("schedules")
	})
}
