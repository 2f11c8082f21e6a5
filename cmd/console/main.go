package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/georgemunganga/stockdesk/internal/config"
	"github.com/georgemunganga/stockdesk/internal/modules/analytics"
	"github.com/georgemunganga/stockdesk/internal/modules/auth"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/guard"
	"github.com/georgemunganga/stockdesk/internal/modules/inventory"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
	"github.com/georgemunganga/stockdesk/internal/modules/supplier"
	"github.com/georgemunganga/stockdesk/internal/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	// ── Session store ───────────────────────────────────────
	repo, closeRepo, err := sessionRepository(cfg, logger)
	if err != nil {
		logger.Error("opening session store", "backend", cfg.SessionBackend, "error", err)
		os.Exit(1)
	}
	defer closeRepo()
	sessions := session.NewService(repo, logger)

	api := gateway.NewClient(cfg.APIBaseURL, cfg.ImageBaseURL, cfg.APITimeout, logger)
	router, err := newRouter(cfg, sessions, api, logger)
	if err != nil {
		logger.Error("building router", "error", err)
		os.Exit(1)
	}

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("stockdesk console starting", "addr", srv.Addr, "api", cfg.APIBaseURL, "login", guard.LoginPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newRouter(cfg *config.Config, sessions session.Service, api *gateway.Client, logger *slog.Logger) (http.Handler, error) {
	// ── Shared web plumbing ─────────────────────────────────
	console := web.NewConsole(web.NewCookieStore(cfg.SessionSecret, cfg.CookieSecure), sessions, logger)
	renderer, err := web.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Sign-in & landing ───────────────────────────────────
	auth.NewHandler(auth.NewService(api, sessions), console, renderer, logger).RegisterRoutes(router)

	// ── Admin: inventory & analytics ────────────────────────
	inventory.NewHandler(
		func(token string) inventory.API { return api.WithToken(token) },
		console, renderer, cfg.PageSize, logger,
	).RegisterRoutes(router)

	analytics.NewHandler(
		analytics.NewService(),
		func(token string) analytics.API { return api.WithToken(token) },
		console, renderer, logger,
	).RegisterRoutes(router)

	// ── Supplier ────────────────────────────────────────────
	supplier.NewHandler(
		func(token string) supplier.API { return api.WithToken(token) },
		console, renderer, cfg.PageSize, logger,
	).RegisterRoutes(router)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
	return router, nil
}

func sessionRepository(cfg *config.Config, logger *slog.Logger) (session.Repository, func(), error) {
	if cfg.SessionBackend != config.BackendPostgres {
		return session.NewMemoryRepository(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := session.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	sealer, err := session.NewSealer(cfg.SessionSecret)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("successfully connected to the session database")
	return session.NewPostgresRepository(db, sealer), func() { db.Close() }, nil
}
