package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/cardioshield/predictor/docs"
	"github.com/cardioshield/predictor/internal/classifier"
	"github.com/cardioshield/predictor/internal/config"
	"github.com/cardioshield/predictor/internal/database"
	"github.com/cardioshield/predictor/internal/handlers"
	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/metrics"
	"github.com/cardioshield/predictor/internal/middleware"
	"github.com/cardioshield/predictor/internal/repositories"
	"github.com/cardioshield/predictor/internal/services"
	"github.com/cardioshield/predictor/internal/templates"
)

// @title CardioShield Predictor API
// @version 1.0
// @description Heart disease prediction with Random Forest and SVM models.
// @BasePath /
// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization
// @description Admin JWT obtained via POST /admin/auth/request. Format: Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	app, err := newApp(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", logger.Error(err))
	}
	defer app.close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", logger.String("port", cfg.Port), logger.String("model_dir", cfg.Models.Directory))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down server", logger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}

// app holds the wired components that need to be stopped on shutdown
type app struct {
	router  *gin.Engine
	watcher *classifier.Watcher
	cleanup *services.CleanupService
	db      *gorm.DB
	log     logger.Logger
}

func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{log: log}

	telemetry := metrics.NewProvider()

	// Load models; a missing or broken artifact only disables its own slot
	registry := classifier.NewRegistry(
		cfg.Models.Directory,
		classifier.DefaultSlots,
		log,
		classifier.WithReloadHook(telemetry.ObserveModelStatus),
		classifier.WithRetryInterval(cfg.Models.RetryInterval),
	)

	if cfg.Models.Watch {
		watcher, err := classifier.NewWatcher(registry, cfg.Models.WatchDebounce, log)
		if err == nil {
			if err = watcher.Start(context.Background()); err != nil {
				watcher.Stop()
			}
		}
		if err != nil {
			log.Warn("Model directory watch disabled", logger.String("dir", cfg.Models.Directory), logger.Error(err))
		} else {
			a.watcher = watcher
		}
	}

	renderer, err := templates.NewTemplateRenderer()
	if err != nil {
		a.close()
		return nil, err
	}

	predictionOpts := []services.PredictionOption{services.WithMetrics(telemetry)}

	var (
		historyService *services.HistoryService
		adminService   *services.AdminAuthService
		tokenRepo      *repositories.AdminTokenRepository
	)

	if cfg.HistoryActive() || cfg.AdminActive() {
		db, err := database.InitDB(database.DefaultConfig(cfg.Database.Path), log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.db = db

		if cfg.HistoryActive() {
			historyService, err = services.NewHistoryService(repositories.NewPredictionRepository(db), cfg.History.EncryptionKey, telemetry, log)
			if err != nil {
				a.close()
				return nil, err
			}
			predictionOpts = append(predictionOpts, services.WithHistory(historyService))
		}

		if cfg.AdminActive() {
			emailService, err := services.NewEmailService(context.Background(), &services.EmailConfig{
				FromEmail: cfg.Email.FromEmail,
				Region:    cfg.Email.Region,
			}, renderer, log)
			if err != nil {
				a.close()
				return nil, err
			}

			tokenRepo = repositories.NewAdminTokenRepository(db)
			adminService, err = services.NewAdminAuthService(tokenRepo, emailService, &services.AdminAuthConfig{
				JWTSecret:  cfg.Admin.JWTSecret,
				AdminEmail: cfg.Admin.Email,
			}, telemetry, log)
			if err != nil {
				a.close()
				return nil, err
			}
		}
	} else {
		log.Info("History and admin endpoints disabled")
	}

	predictionService, err := services.NewPredictionService(registry, log, predictionOpts...)
	if err != nil {
		a.close()
		return nil, err
	}

	// Interfaces stay untyped nil for disabled features
	var (
		tokenCleaner  services.ExpiredTokenCleaner
		historyPruner services.HistoryPruner
	)
	if tokenRepo != nil {
		tokenCleaner = tokenRepo
	}
	if historyService != nil {
		historyPruner = historyService
	}
	if tokenCleaner != nil || historyPruner != nil {
		a.cleanup = services.NewCleanupService(tokenCleaner, historyPruner, services.CleanupConfig{
			Retention: time.Duration(cfg.History.RetentionDays) * 24 * time.Hour,
			Interval:  cfg.History.CleanupInterval,
		}, log)
		a.cleanup.Start()
	}

	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.RecoveryMiddleware(log),
	)

	// Register health check endpoint
	var checks []handlers.HealthCheck
	if db := a.db; db != nil {
		checks = append(checks, handlers.HealthCheck{
			Name:  "database",
			Check: func() error { return database.Ping(db) },
		})
	}
	router.GET("/ping", handlers.NewPingHandler(registry, checks...))

	// Form and API submissions share one limiter
	limitPredictions := middleware.RateLimitMiddleware(cfg.PredictRateLimit, cfg.PredictRateLimit)

	// Prediction form
	pageHandler := handlers.NewPageHandler(predictionService, registry, renderer, log)
	router.GET("/", pageHandler.Show)
	router.POST("/", limitPredictions, pageHandler.Submit)

	predictionHandler := handlers.NewPredictionHandler(predictionService, registry)
	api := router.Group("/api/v1")
	{
		api.GET("/models", predictionHandler.ListModels)
		api.POST("/predict", limitPredictions, predictionHandler.Predict)
	}

	router.GET("/metrics", gin.WrapH(telemetry.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if adminService != nil {
		adminAuthHandler := handlers.NewAdminAuthHandler(adminService)
		router.POST("/admin/auth/request", adminAuthHandler.RequestToken)

		admin := router.Group("/admin", middleware.AdminAuthMiddleware(adminService))
		{
			maintenanceHandler := handlers.NewMaintenanceHandler(a.cleanup, registry)
			admin.POST("/models/reload", maintenanceHandler.ReloadModels)
			admin.POST("/maintenance/cleanup", maintenanceHandler.Cleanup)

			if historyService != nil {
				historyHandler := handlers.NewHistoryHandler(historyService)
				admin.GET("/predictions", historyHandler.List)
				admin.GET("/predictions/stats", historyHandler.Stats)
				admin.GET("/predictions/:id", historyHandler.Get)
			}
		}
	}

	a.router = router
	return a, nil
}

// close stops background work before the database goes away
func (a *app) close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Error("Failed to close database", logger.Error(err))
		}
	}
}
