// Package server wires configuration, storage, the HR backend client and the
// HTTP surface into a runnable application.
package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrimport/internal/domain/audit"
	"hrimport/internal/domain/imports"
	"hrimport/internal/domain/users"
	"hrimport/internal/hrapi"
	"hrimport/internal/platform/config"
	"hrimport/internal/platform/db"
	"hrimport/internal/platform/email"
	authhandler "hrimport/internal/transport/http/handlers/auth"
	importshandler "hrimport/internal/transport/http/handlers/imports"
	"hrimport/internal/transport/http/middleware"
)

const tokenTTL = 12 * time.Hour

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New builds the application from loaded configuration. The caller owns the
// pool's lifetime.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	auditSvc := audit.New(pool)
	backend := hrapi.New(cfg.HRAPIBaseURL, cfg.HRAPIToken, cfg.HRAPITimeout)
	importService := imports.NewService(backend, imports.NewStore(pool), auditSvc, cfg.OrganizationID, cfg.SessionTTL)
	importService.StartJanitor(ctx)

	return &App{
		Config: cfg,
		DB:     pool,
		Router: buildRouter(cfg, pool, auditSvc, importService),
	}, nil
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool, auditSvc *audit.Service, importService *imports.Service) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxUploadBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(users.NewStore(pool), auditSvc, cfg.JWTSecret, tokenTTL)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))
			authHandler.RegisterPublicRoutes(r)
		})
		authHandler.RegisterProtectedRoutes(r)

		importsHandler := importshandler.NewHandler(importService, middleware.NewIdempotencyStore(pool)).
			WithEmail(email.New(cfg), cfg.EmailFrom)
		importsHandler.RegisterRoutes(r)
	})

	return router
}

// Run loads configuration, builds the app and serves it until SIGINT or
// SIGTERM, then drains in-flight requests.
func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.DB.Close()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
