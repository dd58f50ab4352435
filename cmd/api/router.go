package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/cache"
	"github.com/todoapi/todoapi/internal/config"
	"github.com/todoapi/todoapi/internal/handler"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/repository"
	"github.com/todoapi/todoapi/internal/service"
)

// routerDeps collects everything setupRouter wires together.
// Cache and Recorder may be nil.
type routerDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    repository.Store
	Cache    *cache.Cache
	Hasher   *auth.PasswordHasher
	Tokens   *auth.TokenCodec
	Recorder *metrics.InMemoryRecorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	cfg := d.Config

	// Interfaces are only assigned when the concrete value is set.
	var (
		sessionCache service.SessionCache
		limiter      middleware.IPRateLimiter
		cacheHealth  handler.HealthChecker
		recorder     metrics.Recorder = metrics.NewNoop()
	)
	if d.Cache != nil {
		sessionCache = d.Cache
		limiter = d.Cache
		cacheHealth = d.Cache
	}
	if d.Recorder != nil {
		recorder = d.Recorder
	}

	users := service.NewUserService(service.UserServiceConfig{
		Store:        d.Store,
		Hasher:       d.Hasher,
		Tokens:       d.Tokens,
		Cache:        sessionCache,
		CacheTTL:     cfg.SessionCacheTTL,
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      recorder,
		Logger:       d.Logger,
	})
	todos := service.NewTodoService(d.Store, cfg.StoreTimeout, recorder)

	h := handler.New(cfg.StoreDriver)
	healthHandler := handler.NewHealthHandler(d.Store, cacheHealth)
	userHandler := handler.NewUserHandler(users, d.Logger)
	todoHandler := handler.NewTodoHandler(todos, d.Logger)

	requireSession := middleware.Auth(middleware.AuthConfig{
		Logger:        d.Logger,
		Authenticator: users,
		Metrics:       recorder,
	})

	rateLimit := func(bucket string) func(next http.Handler) http.Handler {
		return middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  d.Logger,
			Limiter: limiter,
			Enabled: cfg.RateLimitAuthEnabled,
			Bucket:  bucket,
			RPS:     cfg.RateLimitAuthRPS,
			Burst:   cfg.RateLimitAuthBurst,
		})
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.CORS(corsCfg))

	// Health and info endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/", h.Hello)
	if d.Recorder != nil {
		r.Get("/metrics", handler.NewMetricsHandler(d.Recorder).Metrics)
	}

	r.Route("/users", func(r chi.Router) {
		r.With(rateLimit("signup")).Post("/", userHandler.Signup)
		r.With(rateLimit("login")).Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/me", userHandler.Me)
			r.Delete("/me/token", userHandler.Logout)
		})
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/", todoHandler.Create)
		r.Get("/", todoHandler.List)
		r.Get("/{id}", todoHandler.Get)
		r.Patch("/{id}", todoHandler.Update)
		r.Delete("/{id}", todoHandler.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
