package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/feedback-api/api/swagger"
	"github.com/noah-isme/feedback-api/internal/handler"
	"github.com/noah-isme/feedback-api/internal/middleware"
	"github.com/noah-isme/feedback-api/internal/models"
	"github.com/noah-isme/feedback-api/internal/repository"
	"github.com/noah-isme/feedback-api/internal/service"
	"github.com/noah-isme/feedback-api/pkg/cache"
	"github.com/noah-isme/feedback-api/pkg/config"
	"github.com/noah-isme/feedback-api/pkg/database"
	"github.com/noah-isme/feedback-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/feedback-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/feedback-api/pkg/middleware/requestid"
	"github.com/noah-isme/feedback-api/pkg/storage"
)

// @title Student Feedback API
// @version 1.0.0
// @description Roster and feedback persistence service
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schemaRepo := repository.NewSchemaRepository(db)
	adminHash := service.HashPassword(cfg.Bootstrap.AdminPassword)
	if err := schemaRepo.Init(initCtx, cfg.Bootstrap.AdminUsername, adminHash); err != nil {
		logr.Sugar().Fatalw("failed to initialize schema", "error", err)
	}

	adminRepo := repository.NewAdminRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(adminRepo, teacherRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	rosterSvc := service.NewRosterService(studentRepo, logr)

	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	feedbackSvc := service.NewFeedbackService(feedbackRepo, studentRepo, cacheRepo, cfg.Feedback.CacheTTL, metricsSvc, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, feedbackSvc, nil, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		var archive *storage.Archive
		if cfg.Exports.ArchiveDir != "" {
			archive, err = storage.NewArchive(cfg.Exports.ArchiveDir, cfg.Exports.ArchiveTTL)
			if err != nil {
				logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
			}
		}
		exportSvc = service.NewExportService(feedbackSvc, archive, cfg.Exports.MaxRecords, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc, teacherSvc, rosterSvc, exportSvc, cfg.Feedback)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Expose())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/admin/login", authHandler.AdminLogin)
	api.POST("/auth/teacher/login", authHandler.TeacherLogin)

	api.GET("/teachers/:id", feedbackHandler.GetTeacher)
	api.GET("/teachers/:id/students/:sid", feedbackHandler.GetStudent)
	api.GET("/teachers/:id/has-submitted-today", feedbackHandler.HasSubmittedToday)
	api.POST("/teachers/:id/feedback", feedbackHandler.Submit)

	teacherRoutes := api.Group("")
	teacherRoutes.Use(middleware.JWT(authSvc), middleware.RequireRole(models.RoleTeacher))
	teacherRoutes.GET("/roster", rosterHandler.List)
	teacherRoutes.POST("/roster", rosterHandler.Add)
	teacherRoutes.GET("/roster/:sid", rosterHandler.Get)
	teacherRoutes.DELETE("/roster/:sid", rosterHandler.Delete)
	teacherRoutes.GET("/feedback", feedbackHandler.ListOwn)

	adminRoutes := api.Group("/admin")
	adminRoutes.Use(middleware.JWT(authSvc), middleware.RequireRole(models.RoleAdmin))
	adminRoutes.GET("/teachers", teacherHandler.List)
	adminRoutes.POST("/teachers", teacherHandler.Create)
	adminRoutes.GET("/teachers/:id", teacherHandler.Get)
	adminRoutes.DELETE("/teachers/:id", teacherHandler.Delete)
	adminRoutes.GET("/feedback", feedbackHandler.ListAll)
	adminRoutes.GET("/feedback/export", feedbackHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
