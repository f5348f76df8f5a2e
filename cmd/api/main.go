// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/ucsd-tech/sigi-backend/internal/admin"
	"github.com/ucsd-tech/sigi-backend/internal/auth"
	"github.com/ucsd-tech/sigi-backend/internal/authz"
	"github.com/ucsd-tech/sigi-backend/internal/config"
	"github.com/ucsd-tech/sigi-backend/internal/core"
	"github.com/ucsd-tech/sigi-backend/internal/evaluation"
	"github.com/ucsd-tech/sigi-backend/internal/health"
	"github.com/ucsd-tech/sigi-backend/internal/middleware"
	"github.com/ucsd-tech/sigi-backend/internal/notification"
	"github.com/ucsd-tech/sigi-backend/internal/project"
	"github.com/ucsd-tech/sigi-backend/internal/publication"
	"github.com/ucsd-tech/sigi-backend/internal/report"
	"github.com/ucsd-tech/sigi-backend/internal/request"
	"github.com/ucsd-tech/sigi-backend/internal/server"
	"github.com/ucsd-tech/sigi-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	if err := core.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis, cfg.App)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	rules := authz.DefaultRules()
	mailer := auth.NewSlogMailer(logger)

	sessionRepo := auth.NewRepository(db.DB)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, sessionRepo, rules, logger)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(userSvc, sessionRepo, jwtManager, mailer, cfg, logger)
	authHandler := auth.NewHandler(authSvc)

	projectRepo := project.NewRepository(db.DB)
	projectSvc := project.NewService(projectRepo, rules)
	projectHandler := project.NewHandler(projectSvc)

	evaluationRepo := evaluation.NewRepository(db.DB)
	evaluationSvc := evaluation.NewService(evaluationRepo, projectRepo, db, rules)
	evaluationHandler := evaluation.NewHandler(evaluationSvc)

	publicationRepo := publication.NewRepository(db.DB)
	publicationSvc := publication.NewService(publicationRepo, projectRepo, rules)
	publicationHandler := publication.NewHandler(publicationSvc)

	notificationRepo := notification.NewRepository(db.DB)
	notificationSvc := notification.NewService(notificationRepo, rules)
	notificationHandler := notification.NewHandler(notificationSvc)

	requestRepo := request.NewRepository(db.DB)
	requestSvc := request.NewService(requestRepo, projectRepo, rules, notificationSvc)
	requestHandler := request.NewHandler(requestSvc)

	reportRepo := report.NewRepository(db.DB)
	reportSvc := report.NewService(reportRepo)
	reportHandler := report.NewHandler(reportSvc)

	healthHandler := health.NewHandler(cfg.App.Version)
	healthHandler.AddDependency("database", db)
	healthHandler.AddDependency("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		EntityCounts: admin.NewEntityCounter(db.DB),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	if telemetry != nil {
		router.Use(middleware.Tracing(telemetry.Tracer, otel.GetTextMapPropagator()))
	}
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager, authSvc)
	adminOnly := middleware.RequireAdministrador

	// Credential endpoints get a stricter per-IP budget than the
	// global limiter.
	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.LoginRequests,
			cfg.RateLimit.LoginBurst,
		),
		FailOpen: true,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter)
		userHandler.RegisterRoutes(r, authenticator, adminOnly)
		projectHandler.RegisterRoutes(r, authenticator)
		evaluationHandler.RegisterRoutes(r, authenticator)
		publicationHandler.RegisterRoutes(r, authenticator)
		requestHandler.RegisterRoutes(r, authenticator, adminOnly)
		notificationHandler.RegisterRoutes(r, authenticator, adminOnly)
		reportHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
