package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

// sideFetchConcurrency bounds per-class roster queries in flight.
const sideFetchConcurrency = 8

type classBatchReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Class, error)
}

type scheduleFetcher interface {
	FetchSchedulesForClasses(ctx context.Context, classIDs []string) (map[string][]models.ScheduleSlot, error)
}

type assignmentReader interface {
	ListByClassIDs(ctx context.Context, classIDs []string) ([]models.TeacherAssignment, error)
	ListClassIDsByTeacherKeys(ctx context.Context, teacherKeys []string) ([]string, error)
}

type classEnrollmentReader interface {
	ListByClassIDs(ctx context.Context, classIDs []string, statuses []string) ([]models.Enrollment, error)
}

type personResolver interface {
	aliasResolver
	Resolve(ctx context.Context, table models.PersonTable, keys []string) (map[string]models.PersonIdentity, error)
}

// RosterServiceParams groups constructor dependencies.
type RosterServiceParams struct {
	Classes        classBatchReader
	Schedules      scheduleFetcher
	Assignments    assignmentReader
	Enrollments    classEnrollmentReader
	Identity       personResolver
	Metrics        *MetricsService
	Logger         *zap.Logger
	ActiveStatuses []string
}

// RosterService builds enriched class views. The class fetch is mandatory;
// schedules, teachers and students are fetched concurrently and each degrades
// to an empty list on its own failure.
type RosterService struct {
	classes        classBatchReader
	schedules      scheduleFetcher
	assignments    assignmentReader
	enrollments    classEnrollmentReader
	identity       personResolver
	metrics        *MetricsService
	logger         *zap.Logger
	activeStatuses []string
}

// NewRosterService constructs the roster aggregator.
func NewRosterService(params RosterServiceParams) *RosterService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	statuses := params.ActiveStatuses
	if len(statuses) == 0 {
		statuses = []string{string(models.EnrollmentStatusActive)}
	}
	return &RosterService{
		classes:        params.Classes,
		schedules:      params.Schedules,
		assignments:    params.Assignments,
		enrollments:    params.Enrollments,
		identity:       params.Identity,
		metrics:        params.Metrics,
		logger:         logger,
		activeStatuses: statuses,
	}
}

// EnrichedClasses joins each requested class with its schedule and, when
// asked, its teachers and students. Classes keep the base fetch order.
// Unknown ids are omitted. An empty id list returns an empty result without
// touching the store.
func (s *RosterService) EnrichedClasses(ctx context.Context, classIDs []string, opts models.RosterOptions) (*models.RosterResult, error) {
	result := &models.RosterResult{Classes: []models.EnrichedClass{}}
	ids := uniqueStrings(classIDs)
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()
	classes, err := s.classes.FindByIDs(ctx, ids)
	s.metrics.ObserveDBQuery("classes_by_id", time.Since(start))
	if err != nil {
		s.logger.Error("fetch classes failed", zap.Strings("class_ids", ids), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstreamUnavailable)
	}
	if len(classes) == 0 {
		return result, nil
	}

	foundIDs := make([]string, 0, len(classes))
	for _, class := range classes {
		foundIDs = append(foundIDs, class.ID)
	}

	var (
		schedules    map[string][]models.ScheduleSlot
		teachers     map[string][]models.ClassTeacher
		students     map[string][]models.ClassStudent
		scheduleErr  error
		teacherFetch sideFetch
		studentFetch sideFetch
		group        errgroup.Group
	)
	group.Go(func() error {
		schedules, scheduleErr = s.schedules.FetchSchedulesForClasses(ctx, foundIDs)
		return nil
	})
	if opts.IncludeTeachers {
		group.Go(func() error {
			teachers, teacherFetch = s.loadTeachers(ctx, foundIDs)
			return nil
		})
	}
	if opts.IncludeStudents {
		group.Go(func() error {
			students, studentFetch = s.loadStudents(ctx, foundIDs)
			return nil
		})
	}
	_ = group.Wait()

	s.degrade(result, models.DimensionSchedules, foundIDs, scheduleErr)
	s.degrade(result, models.DimensionTeachers, teacherFetch.failed, teacherFetch.err)
	s.degrade(result, models.DimensionTeacherProfiles, foundIDs, teacherFetch.profileErr)
	s.degrade(result, models.DimensionStudents, studentFetch.failed, studentFetch.err)
	s.degrade(result, models.DimensionStudentProfiles, foundIDs, studentFetch.profileErr)

	for _, class := range classes {
		view := models.EnrichedClass{
			Class:     class,
			Schedules: schedules[class.ID],
			Teachers:  teachers[class.ID],
			Students:  students[class.ID],
		}
		if view.Schedules == nil {
			view.Schedules = []models.ScheduleSlot{}
		}
		if view.Teachers == nil {
			view.Teachers = []models.ClassTeacher{}
		}
		if view.Students == nil {
			view.Students = []models.ClassStudent{}
		}
		result.Classes = append(result.Classes, view)
	}
	return result, nil
}

// ClassIDsForTeacher lists the classes a teacher is assigned to. Assignment
// rows may carry either teacher key, so an empty result is retried with the
// teacher's alias keys.
func (s *RosterService) ClassIDsForTeacher(ctx context.Context, teacherKey string) ([]string, error) {
	teacherKey = strings.TrimSpace(teacherKey)
	if teacherKey == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher key is required")
	}
	ids, err := fetchWithAliasFallback(ctx, s.identity, models.PersonTableTeachers, teacherKey, s.assignments.ListClassIDsByTeacherKeys)
	if err != nil {
		s.logger.Error("fetch teacher classes failed", zap.String("teacher_key", teacherKey), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstreamUnavailable)
	}
	return uniqueStrings(ids), nil
}

// TeacherClasses returns the enriched classes of one teacher.
func (s *RosterService) TeacherClasses(ctx context.Context, teacherKey string, opts models.RosterOptions) (*models.RosterResult, error) {
	ids, err := s.ClassIDsForTeacher(ctx, teacherKey)
	if err != nil {
		return nil, err
	}
	return s.EnrichedClasses(ctx, ids, opts)
}

func (s *RosterService) degrade(result *models.RosterResult, dimension string, classIDs []string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("roster side-fetch degraded",
		zap.String("dimension", dimension),
		zap.Strings("class_ids", classIDs),
		zap.Error(err))
	s.metrics.RecordDegradedFetch(dimension)
	result.Degraded = append(result.Degraded, dimension)
}

// sideFetch reports how a per-class roster dimension settled. failed and err
// cover the row fetch; profileErr is set when people were rendered as unknown
// because their profiles could not be loaded.
type sideFetch struct {
	failed     []string
	err        error
	profileErr error
}

// loadTeachers fetches assignments class by class so one failing class
// leaves the others intact.
func (s *RosterService) loadTeachers(ctx context.Context, classIDs []string) (map[string][]models.ClassTeacher, sideFetch) {
	byClass, failed, err := fetchPerClass(ctx, classIDs, func(ctx context.Context, classID string) ([]models.TeacherAssignment, error) {
		return s.assignments.ListByClassIDs(ctx, []string{classID})
	})

	keys := make([]string, 0, len(byClass))
	for _, assignments := range byClass {
		for _, assignment := range assignments {
			keys = append(keys, assignment.TeacherKey)
		}
	}
	people, profileErr := s.resolve(ctx, models.PersonTableTeachers, keys)

	grouped := make(map[string][]models.ClassTeacher, len(byClass))
	for classID, assignments := range byClass {
		teachers := make([]models.ClassTeacher, 0, len(assignments))
		seen := make(map[string]int, len(assignments))
		for _, assignment := range assignments {
			identity := lookupIdentity(people, assignment.TeacherKey)
			// The same teacher may be assigned under both keys; keep one entry.
			if idx, dup := seen[identity.ID]; dup {
				teachers[idx].IsPrimary = teachers[idx].IsPrimary || assignment.IsPrimary
				continue
			}
			seen[identity.ID] = len(teachers)
			teachers = append(teachers, models.ClassTeacher{PersonIdentity: identity, IsPrimary: assignment.IsPrimary})
		}
		grouped[classID] = teachers
	}
	return grouped, sideFetch{failed: failed, err: err, profileErr: profileErr}
}

func (s *RosterService) loadStudents(ctx context.Context, classIDs []string) (map[string][]models.ClassStudent, sideFetch) {
	byClass, failed, err := fetchPerClass(ctx, classIDs, func(ctx context.Context, classID string) ([]models.Enrollment, error) {
		return s.enrollments.ListByClassIDs(ctx, []string{classID}, s.activeStatuses)
	})

	keys := make([]string, 0, len(byClass))
	for _, enrollments := range byClass {
		for _, enrollment := range enrollments {
			keys = append(keys, enrollment.StudentKey)
		}
	}
	people, profileErr := s.resolve(ctx, models.PersonTableStudents, keys)

	grouped := make(map[string][]models.ClassStudent, len(byClass))
	for classID, enrollments := range byClass {
		students := make([]models.ClassStudent, 0, len(enrollments))
		seen := make(map[string]struct{}, len(enrollments))
		for _, enrollment := range enrollments {
			identity := lookupIdentity(people, enrollment.StudentKey)
			if _, dup := seen[identity.ID]; dup {
				continue
			}
			seen[identity.ID] = struct{}{}
			students = append(students, models.ClassStudent{
				PersonIdentity: identity,
				EnrollmentID:   enrollment.ID,
				Status:         enrollment.Status,
				EnrolledAt:     enrollment.EnrolledAt,
			})
		}
		grouped[classID] = students
	}
	return grouped, sideFetch{failed: failed, err: err, profileErr: profileErr}
}

// fetchPerClass runs fetch for every class concurrently and lets each call
// settle on its own. Rows are keyed by the class they were fetched for.
func fetchPerClass[T any](ctx context.Context, classIDs []string, fetch func(context.Context, string) ([]T, error)) (map[string][]T, []string, error) {
	rows := make(map[string][]T, len(classIDs))
	var (
		mu       sync.Mutex
		failed   []string
		firstErr error
		group    errgroup.Group
	)
	group.SetLimit(sideFetchConcurrency)
	for _, classID := range classIDs {
		classID := classID
		group.Go(func() error {
			items, err := fetch(ctx, classID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, classID)
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			rows[classID] = items
			return nil
		})
	}
	_ = group.Wait()
	sort.Strings(failed)
	return rows, failed, firstErr
}

// resolve never empties the dimension: people it cannot load are rendered as
// unknown and the lookup error is handed back for reporting.
func (s *RosterService) resolve(ctx context.Context, table models.PersonTable, keys []string) (map[string]models.PersonIdentity, error) {
	if len(keys) == 0 {
		return map[string]models.PersonIdentity{}, nil
	}
	start := time.Now()
	people, err := s.identity.Resolve(ctx, table, keys)
	s.metrics.ObserveDBQuery(string(table)+"_profiles", time.Since(start))
	if people == nil {
		people = map[string]models.PersonIdentity{}
	}
	return people, err
}

func lookupIdentity(people map[string]models.PersonIdentity, key string) models.PersonIdentity {
	if identity, ok := people[strings.TrimSpace(key)]; ok {
		return identity
	}
	return UnknownPerson(key)
}
