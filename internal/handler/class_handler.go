package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type rosterService interface {
	EnrichedClasses(ctx context.Context, classIDs []string, opts models.RosterOptions) (*models.RosterResult, error)
	TeacherClasses(ctx context.Context, teacherKey string, opts models.RosterOptions) (*models.RosterResult, error)
}

type rosterExporter interface {
	ExportClassRoster(ctx context.Context, classID, format string) (*service.RosterExport, error)
}

// ClassHandler serves enriched class views and roster exports.
type ClassHandler struct {
	roster   rosterService
	exporter rosterExporter
}

// NewClassHandler constructs a class handler.
func NewClassHandler(roster rosterService, exporter rosterExporter) *ClassHandler {
	return &ClassHandler{roster: roster, exporter: exporter}
}

// Enriched godoc
// @Summary Enriched classes
// @Description Classes joined with schedules and optionally teachers and students. Dimensions served empty after a failed fetch are listed in meta.degraded.
// @Tags Classes
// @Produce json
// @Param ids query string true "Comma separated class IDs"
// @Param include_students query bool false "Include active students"
// @Param include_teachers query bool false "Include assigned teachers"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /classes/enriched [get]
func (h *ClassHandler) Enriched(c *gin.Context) {
	opts, err := rosterOptionsFromQuery(c)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	result, err := h.roster.EnrichedClasses(c.Request.Context(), splitIDs(c.QueryArray("ids")), opts)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	middleware.SetDegraded(c, result.Degraded)
	response.JSON(c, http.StatusOK, result.Classes, nil, middleware.ResponseMeta(c))
}

// TeacherClasses godoc
// @Summary Classes of a teacher
// @Description Accepts either the teacher row id or the shared account id.
// @Tags Classes
// @Produce json
// @Param key path string true "Teacher key"
// @Param include_students query bool false "Include active students"
// @Param include_teachers query bool false "Include assigned teachers"
// @Success 200 {object} response.Envelope
// @Router /teachers/{key}/classes [get]
func (h *ClassHandler) TeacherClasses(c *gin.Context) {
	opts, err := rosterOptionsFromQuery(c)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	result, err := h.roster.TeacherClasses(c.Request.Context(), c.Param("key"), opts)
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	middleware.SetDegraded(c, result.Degraded)
	response.JSON(c, http.StatusOK, result.Classes, nil, middleware.ResponseMeta(c))
}

// ExportRoster godoc
// @Summary Export class roster
// @Tags Classes
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /classes/{id}/roster/export [get]
func (h *ClassHandler) ExportRoster(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal, middleware.ResponseMeta(c))
		return
	}
	out, err := h.exporter.ExportClassRoster(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	if len(out.Degraded) > 0 {
		c.Header("X-Roster-Degraded", strings.Join(out.Degraded, ","))
	}
	response.Attachment(c, out.Filename, out.ContentType, out.Payload)
}

func rosterOptionsFromQuery(c *gin.Context) (models.RosterOptions, error) {
	students, err := queryBool(c, "include_students")
	if err != nil {
		return models.RosterOptions{}, err
	}
	teachers, err := queryBool(c, "include_teachers")
	if err != nil {
		return models.RosterOptions{}, err
	}
	return models.RosterOptions{IncludeStudents: students, IncludeTeachers: teachers}, nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, key+" must be a boolean")
	}
	return value, nil
}

// splitIDs accepts both repeated and comma separated query values.
func splitIDs(values []string) []string {
	ids := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}
	return ids
}
