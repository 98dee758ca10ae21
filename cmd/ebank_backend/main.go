package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/adapters/messaging/rabbitmq"
	"github.com/SscSPs/ebank_backoffice/internal/adapters/rates"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/core/services"
	"github.com/SscSPs/ebank_backoffice/internal/handlers"
	"github.com/SscSPs/ebank_backoffice/internal/jobs"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/SscSPs/ebank_backoffice/internal/platform/config"
	"github.com/SscSPs/ebank_backoffice/internal/repositories/database/pgsql"
	"github.com/SscSPs/ebank_backoffice/internal/utils"
	"github.com/SscSPs/ebank_backoffice/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title E-Bank Back-Office API
// @version 1.0
// @description Ledger, transaction and crypto wallet back-office for MAD accounts.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var rateProvider portssvc.RateProvider = rates.NewHTTPProvider(rates.HTTPProviderConfig{
		BinanceBaseURL: cfg.BinanceBaseURL,
		FxBaseURL:      cfg.FxBaseURL,
		Timeout:        cfg.RateProviderTimeout,
	}, logger)
	if redisClient != nil {
		rateProvider = rates.NewCachedProvider(rateProvider, redisClient, cfg.RateCacheTTL, logger)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos, rateProvider)

	if err := container.Settings.InitializeDefaults(ctx); err != nil {
		logger.Error("Failed to seed default settings", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.BootstrapAdminUsername != "" && cfg.BootstrapAdminPassword != "" {
		if err := container.User.BootstrapAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			logger.Error("Failed to bootstrap admin", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// --- Background workers ---
	var publisher rabbitmq.Publisher = &rabbitmq.FallbackPublisher{Logger: logger}
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events will only reach the inbox", slog.String("error", err.Error()))
		} else {
			publisher = producer
		}
	}
	defer publisher.Close()

	dispatcher := jobs.NewOutboxDispatcher(repos.OutboxRepo, container.Notification, publisher, logger,
		jobs.WithBatchSize(cfg.OutboxBatchSize),
		jobs.WithPollInterval(cfg.OutboxPollInterval),
	)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(workerCtx)
	}()

	scheduler := jobs.NewScheduler(jobs.NewJobs(container.Notification, container.Rates, logger), logger, jobs.Schedules{
		NotificationCleanup: cfg.NotificationCleanupSchedule,
		RateWarmup:          cfg.RateWarmupSchedule,
	})
	scheduler.Start()

	// --- HTTP server ---
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loginLimiter, err := middleware.NewLimiter(cfg.LoginRateLimit, "login", redisClient)
	if err != nil {
		logger.Error("Invalid LOGIN_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	apiLimiter, err := middleware.NewLimiter(cfg.APIRateLimit, "api", redisClient)
	if err != nil {
		logger.Error("Invalid API_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	routeOpts := handlers.RouteOptions{
		LoginRateLimit: middleware.RateLimit(loginLimiter),
		APIRateLimit:   middleware.RateLimit(apiLimiter),
		Posthog:        posthogClient,
	}
	if cfg.EnableDBCheck {
		routeOpts.DB = dbPool
	}
	handlers.RegisterRoutes(r, cfg, container, routeOpts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", slog.String("error", err.Error()))
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Scheduled jobs did not finish before shutdown deadline")
	}

	cancelWorkers()
	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		logger.Warn("Outbox dispatcher did not stop before shutdown deadline")
	}
	logger.Info("Shutdown complete")
}
