package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type scheduleService interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error)
	Summary(ctx context.Context, classID string) (string, error)
}

// ScheduleHandler manages schedule endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// ListByClass godoc
// @Summary Weekly slots of a class
// @Tags Schedules
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule [get]
func (h *ScheduleHandler) ListByClass(c *gin.Context) {
	slots, err := h.service.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, slots, nil, middleware.ResponseMeta(c))
}

// Summary godoc
// @Summary Weekly schedule summary of a class
// @Tags Schedules
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule/summary [get]
func (h *ScheduleHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"class_id": c.Param("id"), "summary": summary}, nil, middleware.ResponseMeta(c))
}
