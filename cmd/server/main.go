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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/stanleysydney/anonsafety-api/api/swagger"
	"github.com/stanleysydney/anonsafety-api/internal/handler"
	"github.com/stanleysydney/anonsafety-api/internal/middleware"
	"github.com/stanleysydney/anonsafety-api/internal/realtime"
	"github.com/stanleysydney/anonsafety-api/internal/repository"
	"github.com/stanleysydney/anonsafety-api/internal/service"
	"github.com/stanleysydney/anonsafety-api/pkg/cache"
	"github.com/stanleysydney/anonsafety-api/pkg/config"
	"github.com/stanleysydney/anonsafety-api/pkg/database"
	"github.com/stanleysydney/anonsafety-api/pkg/logger"
	"github.com/stanleysydney/anonsafety-api/pkg/mailer"
	corsmiddleware "github.com/stanleysydney/anonsafety-api/pkg/middleware/cors"
	reqidmiddleware "github.com/stanleysydney/anonsafety-api/pkg/middleware/requestid"
	"github.com/stanleysydney/anonsafety-api/pkg/storage"
)

// @title AnonSafety API
// @version 1.0.0
// @description Anonymous incident reporting with a realtime community feed
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres unavailable", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis unavailable", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("uploads storage unavailable", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Live feed: local hub, bridged across instances when Redis is on.
	hub := realtime.NewHub(cfg.Feed.SubscriberQueue, logr)
	hub.SetObserver(metricsSvc)
	var publisher realtime.Publisher = hub
	if redisClient != nil {
		bridge := realtime.NewRedisBridge(hub, redisClient, cfg.Feed.RedisChannel, logr)
		publisher = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logr.Warn("feed bridge stopped", zap.Error(err))
			}
		}()
	}

	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)
	coordinatorRepo := repository.NewCoordinatorRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	var notifier *service.NotificationService
	if cfg.Notifications.Enabled {
		smtp := mailer.NewSMTPMailer(cfg.Notifications.SMTPHost, cfg.Notifications.SMTPPort,
			cfg.Notifications.SMTPUser, cfg.Notifications.SMTPPass, cfg.Notifications.FromAddress)
		notifier = service.NewNotificationService(userRepo, smtp,
			cfg.Notifications.Workers, cfg.Notifications.MaxRetries, logr)
		notifier.Start(ctx)
		defer notifier.Stop()
	}

	reportSvc := service.NewReportService(reportRepo, cacheRepo, uploads, publisher, notifierOrNil(notifier), validate, logr, service.ReportServiceConfig{
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
		PublicPath:       cfg.Uploads.PublicPath,
		CacheTTL:         cfg.Feed.CacheTTL,
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
	})
	coordinatorSvc := service.NewCoordinatorService(coordinatorRepo, logr)

	reportHandler := handler.NewReportHandler(reportSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	coordinatorHandler := handler.NewCoordinatorHandler(coordinatorSvc)
	wsHandler := realtime.NewWSHandler(hub, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/ws", wsHandler.Serve)
	r.Static(cfg.Uploads.PublicPath, uploads.Dir())

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

		api.GET("/reports", reportHandler.List)
		api.POST("/reports", middleware.OptionalJWT(authSvc), reportHandler.Create)
		api.GET("/reports/export", middleware.JWT(authSvc), reportHandler.Export)
		api.GET("/reports/:id", reportHandler.Get)
		api.PUT("/reports/:id/like", reportHandler.Like)
		api.PUT("/reports/:id/comment", middleware.OptionalJWT(authSvc), reportHandler.Comment)

		api.GET("/coordinators", coordinatorHandler.List)
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

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}

// notifierOrNil keeps the typed-nil pointer out of the service's interface
// field when alerts are disabled.
func notifierOrNil(n *service.NotificationService) service.AlertNotifier {
	if n == nil {
		return nil
	}
	return n
}
