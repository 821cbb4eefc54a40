package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, req service.EnrollStudentRequest) (*service.EnrollmentResult, error)
	UpdateStatus(ctx context.Context, id string, req service.UpdateEnrollmentStatusRequest) (*models.Enrollment, error)
}

type conflictService interface {
	CheckEnrollmentConflicts(ctx context.Context, candidateClassID, studentID string) ([]models.OverlapConflict, error)
}

type conflictFormatter interface {
	SummarizeConflicts(conflicts []models.OverlapConflict) []string
	ConflictWarning(conflicts []models.OverlapConflict, limit int) dto.ConflictWarning
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments  enrollmentService
	conflicts    conflictService
	formatter    conflictFormatter
	previewLimit int
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(enrollments enrollmentService, conflicts conflictService, formatter conflictFormatter, previewLimit int) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, conflicts: conflicts, formatter: formatter, previewLimit: previewLimit}
}

// CheckConflicts godoc
// @Summary Check enrollment schedule conflicts
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Student and candidate class"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /enrollments/conflicts [post]
func (h *EnrollmentHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"), middleware.ResponseMeta(c))
		return
	}
	conflicts, err := h.conflicts.CheckEnrollmentConflicts(c.Request.Context(), req.ClassID, req.StudentID)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, dto.ConflictCheckResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
		Messages:     h.formatter.SummarizeConflicts(conflicts),
		Warning:      h.formatter.ConflictWarning(conflicts, h.previewLimit),
	}, nil, middleware.ResponseMeta(c))
}

// Create godoc
// @Summary Enroll student
// @Description Conflicts are advisory and returned with the created enrollment.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"), middleware.ResponseMeta(c))
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	response.Created(c, result, middleware.ResponseMeta(c))
}

// UpdateStatus godoc
// @Summary End or cancel an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/status [patch]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"), middleware.ResponseMeta(c))
		return
	}
	enrollment, err := h.enrollments.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil, middleware.ResponseMeta(c))
}
