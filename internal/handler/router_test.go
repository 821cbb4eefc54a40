package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
)

type fakeScheduleSrv struct {
	slots   []models.ScheduleSlot
	summary string
}

func (f *fakeScheduleSrv) ListByClass(context.Context, string) ([]models.ScheduleSlot, error) {
	return f.slots, nil
}

func (f *fakeScheduleSrv) Summary(context.Context, string) (string, error) {
	return f.summary, nil
}

type fakeFlusher struct {
	tables []models.PersonTable
	err    error
}

func (f *fakeFlusher) Flush(_ context.Context, table models.PersonTable) error {
	f.tables = append(f.tables, table)
	return f.err
}

func TestRegisterRoutesMountsAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &fakeRosterSrv{result: &models.RosterResult{Classes: []models.EnrichedClass{}}}
	cache := &fakeFlusher{}
	r := gin.New()
	RegisterRoutes(r, "/api/v1", Handlers{
		Classes:     NewClassHandler(roster, roster),
		Schedules:   NewScheduleHandler(&fakeScheduleSrv{summary: "Monday: 08:00-09:00"}),
		Enrollments: NewEnrollmentHandler(&fakeEnrollmentSrv{}, &fakeConflictSrv{}, service.NewScheduleFormatter("en"), 3),
		Metrics:     NewMetricsHandler(service.NewMetricsService(), nil),
		Cache:       NewCacheHandler(cache),
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{method: http.MethodGet, path: "/health", status: http.StatusOK},
		{method: http.MethodGet, path: "/ready", status: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/classes/enriched?ids=A", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/classes/A/schedule", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/classes/A/schedule/summary", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/teachers/t-1/classes", status: http.StatusOK},
		{method: http.MethodDelete, path: "/api/v1/cache/profiles", status: http.StatusNoContent},
		{method: http.MethodGet, path: "/api/v1/unknown", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	assert.Equal(t, []models.PersonTable{""}, cache.tables)
}

func TestCacheHandlerFlushFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/cache/profiles", nil)

	NewCacheHandler(&fakeFlusher{err: errors.New("redis down")}).FlushProfiles(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCacheHandlerFlushByTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := &fakeFlusher{}
	r := gin.New()
	r.DELETE("/cache/profiles", NewCacheHandler(cache).FlushProfiles)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cache/profiles?table=Students", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []models.PersonTable{models.PersonTableStudents}, cache.tables)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cache/profiles?table=classes", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)
	assert.Len(t, cache.tables, 1)
}

func TestRegisterRoutesStampsProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &fakeRosterSrv{result: &models.RosterResult{Classes: []models.EnrichedClass{}}}
	enrollments := &fakeEnrollmentSrv{
		result:  &service.EnrollmentResult{Enrollment: &models.Enrollment{ID: "e-1", Status: models.EnrollmentStatusActive}},
		updated: &models.Enrollment{ID: "e-1", Status: models.EnrollmentStatusCancelled},
	}
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	RegisterRoutes(r, "/api/v1", Handlers{
		Classes:     NewClassHandler(roster, roster),
		Schedules:   NewScheduleHandler(&fakeScheduleSrv{summary: "Monday: 08:00-09:00"}),
		Enrollments: NewEnrollmentHandler(enrollments, &fakeConflictSrv{}, service.NewScheduleFormatter("en"), 3),
		Metrics:     NewMetricsHandler(service.NewMetricsService(), nil),
		Cache:       NewCacheHandler(&fakeFlusher{}),
	})

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{method: http.MethodGet, path: "/metrics/summary", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/classes/enriched?ids=A", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/classes/A/schedule", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/classes/A/schedule/summary", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/enrollments/conflicts", body: `{"student_id":"s-1","class_id":"C"}`, status: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/enrollments", body: `{"student_id":"s-1","class_id":"C"}`, status: http.StatusCreated},
		{method: http.MethodPatch, path: "/api/v1/enrollments/e-1/status", body: `{"status":"CANCELLED"}`, status: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/enrollments", body: `{`, status: http.StatusBadRequest},
		{method: http.MethodDelete, path: "/api/v1/cache/profiles?table=rooms", status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			envelope := decodeEnvelope(t, rec)
			assert.Contains(t, envelope.Meta, "processing_time_ms")
		})
	}
}
