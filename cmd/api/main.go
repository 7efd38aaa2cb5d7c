// GlowDesk | 2026
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
	goredis "github.com/redis/go-redis/v9"

	"github.com/glowdesk/api/internal/admin"
	"github.com/glowdesk/api/internal/auth"
	"github.com/glowdesk/api/internal/client"
	"github.com/glowdesk/api/internal/config"
	"github.com/glowdesk/api/internal/core"
	"github.com/glowdesk/api/internal/health"
	"github.com/glowdesk/api/internal/middleware"
	"github.com/glowdesk/api/internal/otp"
	"github.com/glowdesk/api/internal/server"
	"github.com/glowdesk/api/internal/tenant"
	"github.com/glowdesk/api/internal/user"
)

const (
	drainDelay = 5 * time.Second

	// Expired refresh tokens are kept for a day of forensics, then swept.
	tokenSweepInterval = time.Hour
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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	// Redis is optional. Without it the service still authenticates: rate
	// limiting falls back to per-instance buckets and tenant lookups go
	// straight to Postgres.
	var (
		rdb         *core.Redis
		redisClient *goredis.Client
	)
	if cfg.Redis.URL != "" {
		rdb, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it",
				"error", err,
			)
		} else {
			redisClient = rdb.Client
			logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
		}
	} else {
		logger.Info("redis not configured, running without cache")
	}

	cache := core.NewCache(redisClient)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	tenantRepo := tenant.NewRepository(db.DB)
	tenantSvc := tenant.NewService(tenantRepo, cache)
	tenantHandler := tenant.NewHandler(tenantSvc)
	registrar := tenant.NewRegistrar(db.DB)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	clientRepo := client.NewRepository(db.DB)
	clientSvc := client.NewService(clientRepo)

	otpRepo := otp.NewRepository(db.DB)
	otpSvc := otp.NewService(
		otpRepo,
		otp.NewLogSender(logger),
		logger,
		cfg.OTP.CodeTTL,
		cfg.OTP.SweepInterval,
	)
	otpSvc.StartSweeper(ctx)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		registrar,
		userSvc,
		tenantSvc,
		clientSvc,
		otpSvc,
	)
	authSvc.StartSweeper(ctx, tokenSweepInterval, logger)
	authHandler := auth.NewHandler(authSvc)

	var redisChecker health.Checker
	if rdb != nil {
		redisChecker = rdb
	}
	healthHandler := health.NewHandler(db, redisChecker)

	adminCfg := admin.HandlerConfig{
		DB:      db.DB,
		DBStats: db.Stats,
		DBPing:  db.Ping,
	}
	if rdb != nil {
		adminCfg.RedisStats = rdb.PoolStats
		adminCfg.RedisPing = rdb.Ping
	}
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)

	authFailures := middleware.NewAuthFailureLimiter(
		redisClient,
		middleware.PerWindow(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow),
		cfg.IsProduction(),
	)

	router.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authFailures.Handler)
			authHandler.RegisterRoutes(r, authenticator)
		})

		tenantHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(
			r,
			authenticator,
			middleware.RequireSuperadmin,
		)
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

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
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
