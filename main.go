// Package main provides the main entry point for the Campus Hub backend
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campushq/campus-hub/app/handlers"
	"github.com/campushq/campus-hub/app/middleware"
	"github.com/campushq/campus-hub/app/router"
	"github.com/campushq/campus-hub/app/scheduler"
	"github.com/campushq/campus-hub/app/services"
	"github.com/campushq/campus-hub/app/tasks"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.AppConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Campus Hub application...")

	// Load configuration
	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeLogger builds the structured logger from logging configuration
func initializeLogger(cfg config.LoggingConfig) (*utils.Logger, error) {
	opts := utils.LoggerOptions{
		Level:      cfg.Level,
		MaxSizeMB:  cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		opts.FilePath = cfg.FilePath
	}
	return utils.NewLogger(opts)
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg config.EmailConfig) services.NotificationService {
	var emailProvider services.EmailProvider

	switch cfg.Provider {
	case "smtp":
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Password,
			cfg.FromEmail,
			cfg.FromName,
			cfg.UseSTARTTLS,
			cfg.Timeout,
		)
	default:
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(emailProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.AppConfig) (*Application, error) {
	var stopFuncs []func()

	logger, err := initializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	stopFuncs = append(stopFuncs, func() { _ = logger.Sync() })

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	majorRepo := repository.NewMajorRepository(db)
	sessionRepo := repository.NewMemberSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewLinkVisitRepository(db)
	pollRepo := repository.NewPollRepository(db)
	clubRepo := repository.NewClubRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize services
	notificationService := initializeNotificationService(cfg.Email)

	storage, err := services.NewLocalFileStorage(cfg.Storage.Root, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Log that services are initialized
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Background task dispatcher
	dispatcher := tasks.NewDispatcher(cfg.Tasks, logger)
	stopFuncs = append(stopFuncs, dispatcher.Stop)

	// Initialize flows
	signupFlow := businessflow.NewSignupFlow(
		memberRepo,
		majorRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		notificationService,
		cfg.School,
		db,
	)

	loginFlow := businessflow.NewLoginFlow(
		memberRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		db,
	)

	profileFlow := businessflow.NewProfileFlow(
		memberRepo,
		majorRepo,
		sessionRepo,
		auditRepo,
		db,
	)

	linkFlow := businessflow.NewLinkFlow(
		linkRepo,
		visitRepo,
		auditRepo,
		dispatcher,
		storage,
		cfg.School,
		&cfg.Cache,
		rc,
		db,
	)

	pollFlow := businessflow.NewPollFlow(
		pollRepo,
		clubRepo,
		auditRepo,
		&cfg.Cache,
		rc,
		db,
	)

	clubFlow := businessflow.NewClubFlow(
		clubRepo,
		auditRepo,
		storage,
		db,
	)

	eventFlow := businessflow.NewEventFlow(
		eventRepo,
		clubRepo,
		auditRepo,
		db,
	)

	majorFlow := businessflow.NewMajorFlow(
		majorRepo,
		memberRepo,
		auditRepo,
		db,
	)

	// Initialize handlers
	routerHandlers := router.Handlers{
		Auth:     handlers.NewAuthHandler(signupFlow, loginFlow),
		Profile:  handlers.NewProfileHandler(profileFlow),
		Link:     handlers.NewLinkHandler(linkFlow),
		Redirect: handlers.NewLinkRedirectHandler(linkFlow),
		Poll:     handlers.NewPollHandler(pollFlow),
		Club:     handlers.NewClubHandler(clubFlow),
		Event:    handlers.NewEventHandler(eventFlow),
		Major:    handlers.NewMajorHandler(majorFlow),
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(cfg, routerHandlers, authMiddleware)

	if cfg.Scheduler.EventRemindersEnabled {
		sched := scheduler.NewEventReminderScheduler(eventRepo, notificationService, cfg.Scheduler)
		stopScheduler := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
