package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	internalhandler "github.com/kadeface/ai-class-scheduling/internal/handler"
	internalmiddleware "github.com/kadeface/ai-class-scheduling/internal/middleware"
	"github.com/kadeface/ai-class-scheduling/internal/repository"
	"github.com/kadeface/ai-class-scheduling/internal/scheduling"
	"github.com/kadeface/ai-class-scheduling/internal/service"
	"github.com/kadeface/ai-class-scheduling/pkg/cache"
	"github.com/kadeface/ai-class-scheduling/pkg/config"
	"github.com/kadeface/ai-class-scheduling/pkg/database"
	"github.com/kadeface/ai-class-scheduling/pkg/logger"
	corsmiddleware "github.com/kadeface/ai-class-scheduling/pkg/middleware/cors"
	reqidmiddleware "github.com/kadeface/ai-class-scheduling/pkg/middleware/requestid"
)

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

	metricsSvc := service.NewMetricsService()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var cacheSvc *service.CacheService
	if redisClient, redisErr := cache.NewRedis(cfg.Redis); redisErr != nil {
		logr.Sugar().Warnw("redis unavailable, timetable cache disabled", "error", redisErr)
	} else {
		defer redisClient.Close()
		cacheSvc = service.NewCacheService(redisClient, cfg.Scheduler.CacheTTL, logr)
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	engine := scheduling.NewEngine(logr)
	scheduleSvc := service.NewScheduleService(
		engine,
		scheduleRepo,
		cacheSvc,
		metricsSvc,
		nil,
		logr,
		service.ScheduleServiceConfig{
			ProposalTTL:   cfg.Scheduler.ProposalTTL,
			AsyncWorkers:  cfg.Scheduler.AsyncWorkers,
			MaxIterations: cfg.Scheduler.MaxIterations,
			TimeLimit:     cfg.Scheduler.TimeLimit,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduleSvc.StartWorkers(ctx)
	defer scheduleSvc.StopWorkers()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	healthHandler := internalhandler.NewHealthHandler(metricsSvc)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Health)
	r.GET("/metrics", healthHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(internalmiddleware.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}))

	if cfg.Scheduler.Enabled {
		scheduleHandler := internalhandler.NewScheduleHandler(scheduleSvc)
		schedules := api.Group("/schedule")
		schedules.POST("/generate", scheduleHandler.Generate)
		schedules.GET("/proposals/:id", scheduleHandler.Proposal)
		schedules.POST("/save", scheduleHandler.Save)
		schedules.GET("", scheduleHandler.List)
		schedules.GET("/export", scheduleHandler.Export)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
