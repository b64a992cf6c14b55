package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tahasaad555/campus-admin-api/api/swagger"
	"github.com/tahasaad555/campus-admin-api/internal/handler"
	"github.com/tahasaad555/campus-admin-api/internal/middleware"
	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/repository"
	"github.com/tahasaad555/campus-admin-api/internal/service"
	"github.com/tahasaad555/campus-admin-api/pkg/cache"
	"github.com/tahasaad555/campus-admin-api/pkg/config"
	"github.com/tahasaad555/campus-admin-api/pkg/database"
	"github.com/tahasaad555/campus-admin-api/pkg/logger"
	corsmiddleware "github.com/tahasaad555/campus-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tahasaad555/campus-admin-api/pkg/middleware/requestid"
)

// @title Campus Admin API
// @version 1.0.0
// @description Room, class group and timetable administration with conflict pre-checking
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	groupRepo := repository.NewClassGroupRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "campus-admin-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	conflictSvc := service.NewConflictService(groupRepo, userRepo, validate, logr)
	groupSvc := service.NewClassGroupService(groupRepo, userRepo, conflictSvc, cacheRepo, validate, logr)
	reservationSvc := service.NewReservationService(reservationRepo, roomRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	reportSvc := service.NewReportService(reportRepo, groupRepo, dashboardRepo, reservationRepo, logr, service.ReportServiceConfig{
		WorkerConcurrency: cfg.Reports.WorkerConcurrency,
		WorkerRetries:     cfg.Reports.WorkerRetries,
		RetentionTTL:      cfg.Reports.RetentionTTL,
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if cfg.Reports.Enabled {
		reportSvc.Start(rootCtx)
		defer reportSvc.Stop()
		go purgeExpiredReports(rootCtx, reportSvc, logr)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	groupHandler := handler.NewClassGroupHandler(groupSvc, conflictSvc, metricsSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	users := authed.Group("/users")
	users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	users.POST("", middleware.RequireRoles(models.RoleAdmin), userHandler.Create)
	users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Update)
	users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)

	rooms := authed.Group("/rooms")
	rooms.GET("", roomHandler.List)
	rooms.GET("/:id", roomHandler.Get)
	rooms.POST("", middleware.RequireRoles(models.RoleAdmin), roomHandler.Create)
	rooms.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), roomHandler.Update)
	rooms.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), roomHandler.Delete)

	groups := authed.Group("/class-groups")
	groups.GET("", groupHandler.List)
	groups.GET("/:id", groupHandler.Get)
	groups.POST("", middleware.RequireRoles(models.RoleAdmin), groupHandler.Create)
	groups.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), groupHandler.Update)
	groups.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), groupHandler.Delete)
	groups.PUT("/:id/students", middleware.RequireRoles(models.RoleAdmin), groupHandler.SetStudents)
	groups.GET("/:id/timetable", groupHandler.GetTimetable)
	groups.PUT("/:id/timetable", middleware.RequireRoles(models.RoleAdmin), groupHandler.ReplaceTimetable)
	groups.POST("/:id/check-conflicts", middleware.RequireRoles(models.RoleAdmin), groupHandler.CheckConflicts)

	reservations := authed.Group("/reservations")
	reservations.GET("", reservationHandler.List)
	reservations.GET("/:id", reservationHandler.Get)
	reservations.POST("", reservationHandler.Create)
	reservations.PATCH("/:id/status", reservationHandler.UpdateStatus)

	if cfg.Reports.Enabled {
		reports := authed.Group("/reports")
		reports.POST("", reportHandler.Enqueue)
		reports.GET("", reportHandler.ListMine)
		reports.GET("/:id", reportHandler.Get)
		reports.GET("/:id/download", reportHandler.Download)
	}

	if cfg.Dashboard.Enabled {
		authed.GET("/dashboard/summary", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Summary)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	rootCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}

// purgeExpiredReports trims finished report jobs past their retention window.
func purgeExpiredReports(ctx context.Context, reports *service.ReportService, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := reports.PurgeExpired(ctx)
			if err != nil {
				logr.Warn("report purge failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				logr.Info("purged expired reports", zap.Int64("count", purged))
			}
		}
	}
}
