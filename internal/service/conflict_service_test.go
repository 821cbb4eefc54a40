package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type conflictFixture struct {
	schedules   *fakeScheduleFetcher
	enrollments *fakeEnrollmentReader
	classes     *fakeClassRepo
	identity    *fakeIdentity
	metrics     *MetricsService
	svc         *ConflictService
}

func newConflictFixture() *conflictFixture {
	f := &conflictFixture{
		schedules: &fakeScheduleFetcher{slots: map[string][]models.ScheduleSlot{
			"C": {testSlot("C", 1, "08:00", "09:30")},
			"X": {testSlot("X", 1, "09:00", "10:00")},
			"Y": {testSlot("Y", 1, "09:30", "10:30")},
		}},
		enrollments: &fakeEnrollmentReader{byStudent: map[string][]models.Enrollment{
			"s-1": {
				{ID: "e1", ClassID: "X", StudentKey: "s-1"},
				{ID: "e2", ClassID: "Y", StudentKey: "s-1"},
				{ID: "e3", ClassID: "C", StudentKey: "s-1"},
			},
		}},
		classes: &fakeClassRepo{classes: map[string]models.Class{
			"X": {ID: "X", Name: "Chemistry"},
		}},
		identity: &fakeIdentity{},
		metrics:  NewMetricsService(),
	}
	f.svc = NewConflictService(ConflictServiceParams{
		Schedules:   f.schedules,
		Enrollments: f.enrollments,
		Classes:     f.classes,
		Identity:    f.identity,
		Metrics:     f.metrics,
	})
	return f
}

func TestConflictServiceFindsOverlap(t *testing.T) {
	f := newConflictFixture()

	conflicts, err := f.svc.CheckEnrollmentConflicts(context.Background(), "C", "s-1")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "X", conflicts[0].CompetingClassID)
	assert.Equal(t, "Chemistry", conflicts[0].CompetingClassName)
	assert.Equal(t, []string{string(models.EnrollmentStatusActive)}, f.enrollments.statuses)
	assert.EqualValues(t, 1, f.metrics.Snapshot().ConflictsDetected)
}

func TestConflictServiceStudentKeyFallback(t *testing.T) {
	f := newConflictFixture()
	f.enrollments.byStudent = map[string][]models.Enrollment{
		"acct-7": {{ID: "e1", ClassID: "X", StudentKey: "acct-7"}},
	}
	f.identity.aliases = map[string][]string{"s-7": {"s-7", "acct-7"}}

	conflicts, err := f.svc.CheckEnrollmentConflicts(context.Background(), "C", "s-7")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, [][]string{{"s-7"}, {"s-7", "acct-7"}}, f.enrollments.studentKeys)
}

func TestConflictServiceShortCircuits(t *testing.T) {
	t.Run("candidate without slots", func(t *testing.T) {
		f := newConflictFixture()

		conflicts, err := f.svc.CheckEnrollmentConflicts(context.Background(), "EMPTY", "s-1")
		require.NoError(t, err)
		assert.NotNil(t, conflicts)
		assert.Empty(t, conflicts)
		assert.Len(t, f.schedules.calls, 1)
	})

	t.Run("no other active class", func(t *testing.T) {
		f := newConflictFixture()
		f.enrollments.byStudent = map[string][]models.Enrollment{"s-1": {{ID: "e3", ClassID: "C"}}}

		conflicts, err := f.svc.CheckEnrollmentConflicts(context.Background(), "C", "s-1")
		require.NoError(t, err)
		assert.Empty(t, conflicts)
		assert.Len(t, f.schedules.calls, 1)
	})
}

func TestConflictServiceFailures(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newConflictFixture()
		_, err := f.svc.CheckEnrollmentConflicts(context.Background(), "", "s-1")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("enrollments unavailable", func(t *testing.T) {
		f := newConflictFixture()
		f.enrollments.studentErr = errors.New("db down")
		_, err := f.svc.CheckEnrollmentConflicts(context.Background(), "C", "s-1")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
	})

	t.Run("competing schedules unavailable", func(t *testing.T) {
		f := newConflictFixture()
		scheduleErr := appErrors.Clone(appErrors.ErrScheduleUnavailable, "schedules down")
		f.schedules.errFor = map[string]error{"X": scheduleErr}
		_, err := f.svc.CheckEnrollmentConflicts(context.Background(), "C", "s-1")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrScheduleUnavailable.Code, appErrors.FromError(err).Code)
	})

	t.Run("class names unavailable keeps conflicts", func(t *testing.T) {
		f := newConflictFixture()
		f.classes.err = errors.New("catalog down")
		conflicts, err := f.svc.CheckEnrollmentConflicts(context.Background(), "C", "s-1")
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Empty(t, conflicts[0].CompetingClassName)
	})
}
