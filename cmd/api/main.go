// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/airline-directory/internal/admin"
	"github.com/carterperez-dev/airline-directory/internal/auth"
	"github.com/carterperez-dev/airline-directory/internal/blog"
	"github.com/carterperez-dev/airline-directory/internal/config"
	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/health"
	"github.com/carterperez-dev/airline-directory/internal/mailer"
	"github.com/carterperez-dev/airline-directory/internal/metrics"
	"github.com/carterperez-dev/airline-directory/internal/middleware"
	"github.com/carterperez-dev/airline-directory/internal/office"
	"github.com/carterperez-dev/airline-directory/internal/server"
	"github.com/carterperez-dev/airline-directory/internal/user"
)

const (
	drainDelay      = 5 * time.Second
	loginPerMinute  = 10
	uploadURLPrefix = "/uploads/"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool("generate-keys", false, "write a new ES256 key pair to the configured jwt paths and exit")
	flag.Parse()

	if *generateKeys {
		if err := writeKeys(*configPath); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

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

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

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

	tracing, err := core.NewTracing(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
			"sample_rate", cfg.Otel.SampleRate,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis, cfg.App.Name)
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

	appMetrics := metrics.New()

	var mail mailer.Sender = mailer.NewLogSender(logger)
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPSender(cfg.SMTP)
		logger.Info("smtp mailer configured", "host", cfg.SMTP.Host)
	} else {
		logger.Warn("smtp host not set, invitation mails are logged only")
	}

	userSvc := user.NewService(user.NewRepository(db.DB), user.ServiceConfig{
		Mailer:      mail,
		Invitations: appMetrics,
		LoginURL:    cfg.Frontend.LoginURL(),
		Logger:      logger,
	})
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(jwtManager, userSvc, auth.NewRedisBlacklist(redis.Client), logger)
	authHandler := auth.NewHandler(authSvc, auth.CookieConfig{
		Name:   cfg.JWT.CookieName,
		Secure: cfg.IsProduction(),
	})

	officeSvc := office.NewService(office.NewRepository(db.DB), office.ServiceConfig{
		Recorder: appMetrics,
		Logger:   logger,
	})
	officeHandler := office.NewHandler(officeSvc)

	blogSvc := blog.NewService(blog.NewRepository(db.DB), blog.ServiceConfig{
		Authors:  userSvc,
		Recorder: appMetrics,
		Logger:   logger,
	})
	blogHandler := blog.NewHandler(blogSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Queues: map[string]admin.PendingCounter{
			"offices": officeSvc,
			"blogs":   blogSvc,
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics(appMetrics))
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:    middleware.LimitFromConfig(cfg.RateLimit),
			FailOpen: true,
			Logger:   logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	if cfg.Metrics.Enabled {
		router.Method(http.MethodGet, cfg.Metrics.Path, appMetrics.Handler())
	}

	if cfg.Uploads.Dir != "" {
		router.Handle(uploadURLPrefix+"*", http.StripPrefix(
			uploadURLPrefix,
			http.FileServer(http.Dir(cfg.Uploads.Dir)),
		))
	}

	authenticator := middleware.Authenticator(authSvc, cfg.JWT.CookieName)
	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Prefix:   "ratelimit:login",
		Limit:    redis_rate.PerMinute(loginPerMinute),
		FailOpen: false,
		Logger:   logger,
	}).Handler

	authHandler.RegisterRoutes(router, authenticator, loginLimiter)

	router.Route("/api", func(r chi.Router) {
		userHandler.RegisterRoutes(r, authenticator)
		officeHandler.RegisterRoutes(r, authenticator)
		blogHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator)
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

	if err := tracing.Shutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
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

func writeKeys(configPath string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return err
	}

	slog.Info("jwt key pair written",
		"private_key", cfg.JWT.PrivateKeyPath,
		"public_key", cfg.JWT.PublicKeyPath,
	)
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
