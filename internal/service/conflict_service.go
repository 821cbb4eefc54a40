package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type studentEnrollmentReader interface {
	ListByStudentKeys(ctx context.Context, studentKeys []string, statuses []string) ([]models.Enrollment, error)
}

// ConflictServiceParams groups constructor dependencies.
type ConflictServiceParams struct {
	Schedules      scheduleFetcher
	Enrollments    studentEnrollmentReader
	Classes        classBatchReader
	Identity       aliasResolver
	Metrics        *MetricsService
	Logger         *zap.Logger
	ActiveStatuses []string
}

// ConflictService checks whether enrolling a student in a class would overlap
// with the classes the student is already actively enrolled in.
type ConflictService struct {
	schedules      scheduleFetcher
	enrollments    studentEnrollmentReader
	classes        classBatchReader
	identity       aliasResolver
	metrics        *MetricsService
	logger         *zap.Logger
	activeStatuses []string
}

// NewConflictService constructs a ConflictService.
func NewConflictService(params ConflictServiceParams) *ConflictService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	statuses := params.ActiveStatuses
	if len(statuses) == 0 {
		statuses = []string{string(models.EnrollmentStatusActive)}
	}
	return &ConflictService{
		schedules:      params.Schedules,
		enrollments:    params.Enrollments,
		classes:        params.Classes,
		identity:       params.Identity,
		metrics:        params.Metrics,
		logger:         logger,
		activeStatuses: statuses,
	}
}

// CheckEnrollmentConflicts returns every overlapping slot pair between the
// candidate class and the student's other active classes. The result is empty
// when the candidate has no slots or the student has no other active class.
// Any fetch failure is returned; the caller decides whether conflicts block.
func (s *ConflictService) CheckEnrollmentConflicts(ctx context.Context, candidateClassID, studentID string) ([]models.OverlapConflict, error) {
	candidateClassID = strings.TrimSpace(candidateClassID)
	studentID = strings.TrimSpace(studentID)
	if candidateClassID == "" || studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id and student id are required")
	}

	var (
		candidate     map[string][]models.ScheduleSlot
		enrollments   []models.Enrollment
		candidateErr  error
		enrollmentErr error
		group         errgroup.Group
	)
	group.Go(func() error {
		candidate, candidateErr = s.schedules.FetchSchedulesForClasses(ctx, []string{candidateClassID})
		return nil
	})
	group.Go(func() error {
		enrollments, enrollmentErr = fetchWithAliasFallback(ctx, s.identity, models.PersonTableStudents, studentID,
			func(ctx context.Context, keys []string) ([]models.Enrollment, error) {
				return s.enrollments.ListByStudentKeys(ctx, keys, s.activeStatuses)
			})
		return nil
	})
	_ = group.Wait()

	if candidateErr != nil {
		s.metrics.ObserveConflictCheck(0, true)
		return nil, candidateErr
	}
	if enrollmentErr != nil {
		s.metrics.ObserveConflictCheck(0, true)
		s.logger.Error("fetch student enrollments failed", zap.String("student_id", studentID), zap.Error(enrollmentErr))
		return nil, appErrors.Wrap(enrollmentErr, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}

	candidateSlots := candidate[candidateClassID]
	if len(candidateSlots) == 0 {
		s.metrics.ObserveConflictCheck(0, false)
		return []models.OverlapConflict{}, nil
	}

	otherIDs := make([]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.ClassID != candidateClassID {
			otherIDs = append(otherIDs, enrollment.ClassID)
		}
	}
	otherIDs = uniqueStrings(otherIDs)
	if len(otherIDs) == 0 {
		s.metrics.ObserveConflictCheck(0, false)
		return []models.OverlapConflict{}, nil
	}

	others, err := s.schedules.FetchSchedulesForClasses(ctx, otherIDs)
	if err != nil {
		s.metrics.ObserveConflictCheck(0, true)
		return nil, err
	}
	active := make([]models.ClassSchedule, 0, len(otherIDs))
	for _, id := range otherIDs {
		active = append(active, models.ClassSchedule{ClassID: id, Slots: others[id]})
	}

	conflicts := DetectConflicts(candidateClassID, candidateSlots, active)
	if len(conflicts) > 0 {
		s.attachClassNames(ctx, conflicts)
	}
	s.metrics.ObserveConflictCheck(len(conflicts), false)
	return conflicts, nil
}

// attachClassNames labels competing classes. Failure leaves ids as labels.
func (s *ConflictService) attachClassNames(ctx context.Context, conflicts []models.OverlapConflict) {
	if s.classes == nil {
		return
	}
	ids := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		ids = append(ids, conflict.CompetingClassID)
	}
	classes, err := s.classes.FindByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		s.logger.Warn("competing class names unavailable", zap.Error(err))
		return
	}
	names := make(map[string]string, len(classes))
	for _, class := range classes {
		names[class.ID] = class.Name
	}
	for i := range conflicts {
		conflicts[i].CompetingClassName = names[conflicts[i].CompetingClassID]
	}
}
