package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ExistsActive(ctx context.Context, studentKeys []string, classID string, statuses []string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type personLookup interface {
	Lookup(ctx context.Context, table models.PersonTable, key string) (*models.ResolvedPerson, error)
}

type conflictChecker interface {
	CheckEnrollmentConflicts(ctx context.Context, candidateClassID, studentID string) ([]models.OverlapConflict, error)
}

// EnrollStudentRequest describes enrollment creation request.
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
}

// UpdateEnrollmentStatusRequest ends or cancels an active enrollment.
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required,oneof=ENDED CANCELLED"`
}

// EnrollmentResult is a created enrollment with its advisory conflict warning.
// ConflictCheckFailed is set when conflicts could not be determined.
type EnrollmentResult struct {
	Enrollment          *models.Enrollment       `json:"enrollment"`
	Conflicts           []models.OverlapConflict `json:"conflicts"`
	Warning             dto.ConflictWarning      `json:"warning"`
	ConflictCheckFailed bool                     `json:"conflict_check_failed"`
}

// EnrollmentServiceParams groups constructor dependencies. ActiveStatuses
// block duplicate enrollments and are the statuses that may be ended or
// cancelled; empty means ACTIVE only.
type EnrollmentServiceParams struct {
	Repo           enrollmentRepository
	Classes        classReader
	Students       personLookup
	Conflicts      conflictChecker
	Formatter      *ScheduleFormatter
	Validator      *validator.Validate
	Logger         *zap.Logger
	PreviewLimit   int
	ActiveStatuses []string
}

// EnrollmentService orchestrates enrollment workflows. Schedule conflicts are
// advisory: they are reported with the new enrollment, never block it.
type EnrollmentService struct {
	repo         enrollmentRepository
	classes      classReader
	students     personLookup
	conflicts    conflictChecker
	formatter    *ScheduleFormatter
	validator    *validator.Validate
	logger       *zap.Logger
	previewLimit int
	active       map[models.EnrollmentStatus]struct{}
	now          func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(params EnrollmentServiceParams) *EnrollmentService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	formatter := params.Formatter
	if formatter == nil {
		formatter = NewScheduleFormatter("en")
	}
	return &EnrollmentService{
		repo:         params.Repo,
		classes:      params.Classes,
		students:     params.Students,
		conflicts:    params.Conflicts,
		formatter:    formatter,
		validator:    validate,
		logger:       logger,
		previewLimit: params.PreviewLimit,
		active:       statusSet(params.ActiveStatuses),
		now:          time.Now,
	}
}

// Enroll registers a student to a class. The student may be referenced by
// either key; the enrollment is written under the canonical student id.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollStudentRequest) (*EnrollmentResult, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.ClassID = strings.TrimSpace(req.ClassID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !class.Active {
		return nil, appErrors.Clone(appErrors.ErrClassInactive, "")
	}
	student, err := s.students.Lookup(ctx, models.PersonTableStudents, req.StudentID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsActive(ctx, student.Aliases, req.ClassID, s.activeStatuses())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}

	result := &EnrollmentResult{Conflicts: []models.OverlapConflict{}}
	conflicts, err := s.conflicts.CheckEnrollmentConflicts(ctx, req.ClassID, student.Identity.ID)
	if err != nil {
		s.logger.Warn("conflict check failed, enrolling without it",
			zap.String("student_id", student.Identity.ID),
			zap.String("class_id", req.ClassID),
			zap.Error(err))
		result.ConflictCheckFailed = true
	} else {
		result.Conflicts = conflicts
	}

	enrollment := &models.Enrollment{
		StudentKey: student.Identity.ID,
		ClassID:    req.ClassID,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	result.Enrollment = enrollment
	result.Warning = s.formatter.ConflictWarning(result.Conflicts, s.previewLimit)
	return result, nil
}

// UpdateStatus ends or cancels an enrollment in one of the active statuses.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id string, req UpdateEnrollmentStatusRequest) (*models.Enrollment, error) {
	req.Status = models.EnrollmentStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment status")
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if _, ok := s.active[enrollment.Status]; !ok {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentNotActive, "")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	enrollment.Status = req.Status
	enrollment.UpdatedAt = s.now().UTC()
	return enrollment, nil
}

func (s *EnrollmentService) activeStatuses() []string {
	out := make([]string, 0, len(s.active))
	for status := range s.active {
		out = append(out, string(status))
	}
	sort.Strings(out)
	return out
}

// statusSet normalises configured statuses. An empty list means ACTIVE only.
func statusSet(statuses []string) map[models.EnrollmentStatus]struct{} {
	set := make(map[models.EnrollmentStatus]struct{}, len(statuses)+1)
	for _, status := range statuses {
		if trimmed := strings.ToUpper(strings.TrimSpace(status)); trimmed != "" {
			set[models.EnrollmentStatus(trimmed)] = struct{}{}
		}
	}
	if len(set) == 0 {
		set[models.EnrollmentStatusActive] = struct{}{}
	}
	return set
}
