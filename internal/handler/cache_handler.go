package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
	"github.com/noah-isme/tutor-schedule-api/pkg/response"
)

type profileFlusher interface {
	Flush(ctx context.Context, table models.PersonTable) error
}

// CacheHandler manages the person profile cache.
type CacheHandler struct {
	cache profileFlusher
}

// NewCacheHandler constructs the handler.
func NewCacheHandler(cache profileFlusher) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// FlushProfiles godoc
// @Summary Flush cached person profiles
// @Tags Cache
// @Param table query string false "teachers or students; empty flushes both"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /cache/profiles [delete]
func (h *CacheHandler) FlushProfiles(c *gin.Context) {
	table := models.PersonTable(strings.ToLower(strings.TrimSpace(c.Query("table"))))
	switch table {
	case "", models.PersonTableTeachers, models.PersonTableStudents:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "table must be teachers or students"), middleware.ResponseMeta(c))
		return
	}
	if err := h.cache.Flush(c.Request.Context(), table); err != nil {
		response.Error(c, err, middleware.ResponseMeta(c))
		return
	}
	response.NoContent(c)
}
