package main

//go:generate go run github.com/swaggo/swag/cmd/swag init -g main.go -d ./,../../internal/http/handler,../../internal/domain -o ../../docs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuncrm/crm-api/docs"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/cache"
	"github.com/tuncrm/crm-api/internal/config"
	"github.com/tuncrm/crm-api/internal/database"
	"github.com/tuncrm/crm-api/internal/events"
	"github.com/tuncrm/crm-api/internal/http/handler"
	"github.com/tuncrm/crm-api/internal/http/middleware"
	"github.com/tuncrm/crm-api/internal/http/router"
	"github.com/tuncrm/crm-api/internal/jobs"
	"github.com/tuncrm/crm-api/internal/logger"
	"github.com/tuncrm/crm-api/internal/notify"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/service"
	"github.com/tuncrm/crm-api/internal/storage"
	"go.uber.org/zap"
)

// @title TunCRM API
// @version 1.0
// @description Customer relationship management API: companies, opportunities, activities, tasks and sales reports

// @contact.name TunCRM
// @contact.email destek@tuncrm.local

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	// In development secrets come from the environment; elsewhere from Azure Key Vault
	if err := config.ResolveSecrets(ctx, cfg, log); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		log.Info("Schema migrated")
	}

	listCache, err := cache.New(ctx, &cfg.Cache, log)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	publisher, err := events.NewPublisher(&cfg.Events, log)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	archive, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		// exports still work without archiving
		log.Warn("Storage unavailable, export archiving disabled", zap.Error(err))
		archive = nil
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	lists := service.NewListCache(listCache, cfg.Cache.InvalidateOnWrite, log)
	tokens := auth.NewTokenManager(&cfg.Security)

	companyService := service.NewCompanyService(companyRepo, lists, log)
	opportunityService := service.NewOpportunityService(opportunityRepo, companyRepo, userRepo, publisher, lists, log)
	activityService := service.NewActivityService(activityRepo, companyRepo, opportunityRepo, userRepo, lists, log)
	userService := service.NewUserService(userRepo, log)
	taskService := service.NewTaskService(taskRepo, userRepo, companyRepo, opportunityRepo, log)
	dashboardService := service.NewDashboardService(companyRepo, opportunityRepo, activityRepo, taskRepo, log)
	authService := service.NewAuthService(userRepo, userService, tokens, log)
	exportService := service.NewExportService(companyRepo, opportunityRepo, activityRepo, archive, log)

	notifier := notify.Fanout{notify.NewLogNotifier(log), notify.NewEventNotifier(publisher)}
	notificationService := service.NewNotificationService(
		taskRepo, opportunityRepo, activityRepo, userRepo,
		notifier, cfg.Notifications.StaleOpportunityAge(), log,
	)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, router.Handlers{
		Health:      handler.NewHealthHandler(db, log),
		Auth:        handler.NewAuthHandler(authService, log),
		Company:     handler.NewCompanyHandler(companyService, log),
		Opportunity: handler.NewOpportunityHandler(opportunityService, log),
		Activity:    handler.NewActivityHandler(activityService, log),
		User:        handler.NewUserHandler(userService, taskService, log),
		Task:        handler.NewTaskHandler(taskService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
		Export:      handler.NewExportHandler(exportService, log),
	})

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Notifications.Enabled {
		scheduler = jobs.NewScheduler(log)
		job := jobs.NewNotificationJob(notificationService, log, cfg.Notifications.TimeoutDuration())
		if err := job.Register(scheduler, cfg.Notifications.Schedule); err != nil {
			return fmt.Errorf("failed to register notification job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started",
			zap.String("schedule", cfg.Notifications.Schedule),
			zap.Duration("stale_after", cfg.Notifications.StaleOpportunityAge()),
		)
	} else {
		log.Info("Notification sweep disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
