// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/olegiv/olabel-go/internal/analytics"
	"github.com/olegiv/olabel-go/internal/auth"
	"github.com/olegiv/olabel-go/internal/cache"
	"github.com/olegiv/olabel-go/internal/config"
	"github.com/olegiv/olabel-go/internal/geoip"
	"github.com/olegiv/olabel-go/internal/handler/api"
	"github.com/olegiv/olabel-go/internal/logging"
	"github.com/olegiv/olabel-go/internal/middleware"
	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/scheduler"
	"github.com/olegiv/olabel-go/internal/store"
	"github.com/olegiv/olabel-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// requestTimeout bounds every handler.
const requestTimeout = 30 * time.Second

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "olabel - record label site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_STORAGE          sql|memory (default: sql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_DATABASE_URL     SQLite path or postgres:// URL (default: ./data/olabel.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_DO_SEED          Create the bootstrap admin from OLABEL_ADMIN_USERNAME/PASSWORD\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_REDIS_URL        Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLABEL_GEOIP_DB_PATH    GeoLite2-Country database (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(buildInfo().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("error closing storage", "error", err)
		}
	}()

	policy := auth.DefaultPolicy()
	policy.BcryptCost = cfg.BcryptCost
	authService := auth.NewService(st, policy, auth.WithLogger(logger))

	ctx := context.Background()
	if err := seed(ctx, cfg, st, authService); err != nil {
		return err
	}

	cacheCfg := cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	}
	c, backend, err := cache.New(cacheCfg)
	if err != nil {
		slog.Warn("Redis unavailable, using memory cache", "error", err)
		cacheCfg.RedisURL = ""
		if c, backend, err = cache.New(cacheCfg); err != nil {
			return fmt.Errorf("initializing cache: %w", err)
		}
	}
	defer func() { _ = c.Close() }()
	slog.Info("cache initialized", "backend", backend)

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("GeoIP database unavailable, countries will not be recorded", "error", err)
	}
	defer func() { _ = geo.Close() }()
	if geo.Enabled() {
		slog.Info("GeoIP lookup enabled", "path", cfg.GeoIPDBPath)
	}

	loginLimiter := middleware.NewIPRateLimiter(middleware.DefaultIPRateLimitConfig())

	sched := scheduler.New(logger, time.Minute)
	if err := registerJobs(sched, cfg, authService, geo, loginLimiter); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	h := api.New(api.Config{
		Store:          st,
		Auth:           authService,
		Cache:          c,
		CacheTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		Enricher:       analytics.NewEnricher(geo),
		SiteURL:        cfg.SiteURL,
		DisallowRobots: !cfg.IsProduction(),
		Development:    cfg.IsDevelopment(),
		Version:        buildInfo(),
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Metrics)
	r.Use(middleware.Timeout(requestTimeout))
	h.Mount(r, loginLimiter)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openStorage returns the memory store or a migrated SQL store.
func openStorage(cfg *config.Config) (store.Storage, error) {
	if cfg.Storage == store.KindMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		return store.NewMemory(), nil
	}

	db, dialect, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	slog.Info("running database migrations", "dialect", dialect)
	if err := store.Migrate(db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")
	return store.NewSQL(db, dialect), nil
}

func seed(ctx context.Context, cfg *config.Config, st store.Storage, svc *auth.Service) error {
	if cfg.DoSeed {
		hash, err := svc.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if _, err := store.SeedAdmin(ctx, st, cfg.AdminUsername, hash); err != nil {
			return fmt.Errorf("seeding admin user: %w", err)
		}
	}

	if cfg.DemoSeed {
		if err := store.SeedDemo(ctx, st); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	if _, err := st.InitRadioSettings(ctx, model.RadioSettings{StreamURL: cfg.RadioStreamURL}); err != nil {
		return fmt.Errorf("initializing radio settings: %w", err)
	}
	return nil
}

func registerJobs(s *scheduler.Scheduler, cfg *config.Config, svc *auth.Service, geo *geoip.Lookup, limiter *middleware.IPRateLimiter) error {
	if err := s.Add("session-sweep", cfg.SessionSweepSchedule, func(ctx context.Context) error {
		n, err := svc.SweepExpiredSessions(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("expired sessions removed", "count", n)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.Add("login-limiter-prune", "@every 10m", func(context.Context) error {
		limiter.Prune()
		return nil
	}); err != nil {
		return err
	}

	if cfg.GeoIPEnabled() {
		if err := s.Add("geoip-reload", "@daily", func(context.Context) error {
			return geo.Reload()
		}); err != nil {
			return err
		}
	}
	return nil
}
