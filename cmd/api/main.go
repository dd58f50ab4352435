// Package main is the entrypoint for the Todo API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/cache"
	"github.com/todoapi/todoapi/internal/config"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/repository"
	"github.com/todoapi/todoapi/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		secrets := []string{cfg.MongoURI, cfg.DatabaseURL}
		logger.Error("failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", sanitizeError(err, secrets...)),
		)
		return fmt.Errorf("open %s store", cfg.StoreDriver)
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = store.Close(context.Background())
			return fmt.Errorf("connect to redis")
		}
		logger.Info("connected to Redis")
	} else {
		logger.Info("Redis not configured, session cache and rate limiting disabled")
	}

	var recorder *metrics.InMemoryRecorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewInMemory()
	}

	router := setupRouter(routerDeps{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Cache:    cacheClient,
		Hasher:   auth.NewPasswordHasher(cfg.BcryptCost),
		Tokens:   auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL),
		Recorder: recorder,
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("store", store.Close)
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"store", cfg.StoreDriver,
		"env", cfg.AppEnv,
	)

	return srv.Run(ctx)
}

// openStore connects the configured backend. Postgres schemas are migrated
// before the pool is opened.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return repository.NewMongo(ctx, cfg.MongoURI)
	case config.StorePostgres:
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		return repository.NewPostgres(ctx, cfg.DatabaseURL)
	case config.StoreMemory:
		return repository.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError strips connection strings and inline passwords from err.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
