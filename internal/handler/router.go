package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Classes     *ClassHandler
	Schedules   *ScheduleHandler
	Enrollments *EnrollmentHandler
	Metrics     *MetricsHandler
	Cache       *CacheHandler
}

// RegisterRoutes mounts health checks and metrics at the root and the API under prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/metrics/summary", h.Metrics.Summary)

	api := r.Group(prefix)

	classes := api.Group("/classes")
	classes.GET("/enriched", h.Classes.Enriched)
	classes.GET("/:id/schedule", h.Schedules.ListByClass)
	classes.GET("/:id/schedule/summary", h.Schedules.Summary)
	classes.GET("/:id/roster/export", h.Classes.ExportRoster)

	api.GET("/teachers/:key/classes", h.Classes.TeacherClasses)

	enrollments := api.Group("/enrollments")
	enrollments.POST("", h.Enrollments.Create)
	enrollments.POST("/conflicts", h.Enrollments.CheckConflicts)
	enrollments.PATCH("/:id/status", h.Enrollments.UpdateStatus)

	if h.Cache != nil {
		api.DELETE("/cache/profiles", h.Cache.FlushProfiles)
	}
}
