package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-schedule-api/api/swagger"
	"github.com/noah-isme/tutor-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tutor-schedule-api/internal/middleware"
	"github.com/noah-isme/tutor-schedule-api/internal/repository"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
	"github.com/noah-isme/tutor-schedule-api/pkg/cache"
	"github.com/noah-isme/tutor-schedule-api/pkg/config"
	"github.com/noah-isme/tutor-schedule-api/pkg/database"
	"github.com/noah-isme/tutor-schedule-api/pkg/export"
	"github.com/noah-isme/tutor-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-schedule-api/pkg/middleware/requestid"
)

// @title Tutor Schedule API
// @version 1.0.0
// @description Class rosters, weekly schedules and enrollment conflict checks for the tutoring center.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	var redisClient *redis.Client
	if cfg.ProfileCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		profileCache := repository.NewCacheRepository(redisClient, "tutor-schedule", logr)
		defer profileCache.Close()
		cacheRepo = profileCache
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	profiles := service.NewProfileCache(cacheRepo, metricsSvc, cfg.ProfileCache.TTL, logr, cfg.ProfileCache.Enabled)

	classRepo := repository.NewClassRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	personRepo := repository.NewPersonRepository(db)

	validate := validator.New()
	formatter := service.NewScheduleFormatter(cfg.Schedule.Locale)

	identitySvc := service.NewIdentityService(personRepo, profiles, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, formatter, metricsSvc, logr)
	rosterSvc := service.NewRosterService(service.RosterServiceParams{
		Classes:        classRepo,
		Schedules:      scheduleSvc,
		Assignments:    assignmentRepo,
		Enrollments:    enrollmentRepo,
		Identity:       identitySvc,
		Metrics:        metricsSvc,
		Logger:         logr,
		ActiveStatuses: cfg.Enrollment.ActiveStatuses,
	})
	conflictSvc := service.NewConflictService(service.ConflictServiceParams{
		Schedules:      scheduleSvc,
		Enrollments:    enrollmentRepo,
		Classes:        classRepo,
		Identity:       identitySvc,
		Metrics:        metricsSvc,
		Logger:         logr,
		ActiveStatuses: cfg.Enrollment.ActiveStatuses,
	})
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceParams{
		Repo:           enrollmentRepo,
		Classes:        classRepo,
		Students:       identitySvc,
		Conflicts:      conflictSvc,
		Formatter:      formatter,
		Validator:      validate,
		Logger:         logr,
		PreviewLimit:   cfg.Schedule.ConflictPreviewLimit,
		ActiveStatuses: cfg.Enrollment.ActiveStatuses,
	})
	exportSvc := service.NewExportService(rosterSvc, formatter, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	handlers := handler.Handlers{
		Classes:     handler.NewClassHandler(rosterSvc, exportSvc),
		Schedules:   handler.NewScheduleHandler(scheduleSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc, conflictSvc, formatter, cfg.Schedule.ConflictPreviewLimit),
		Metrics:     handler.NewMetricsHandler(metricsSvc, readiness),
	}
	if profiles.Enabled() {
		handlers.Cache = handler.NewCacheHandler(profiles)
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Warn("http shutdown error", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "profile_cache", profiles.Enabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
