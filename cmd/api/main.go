// Package main is the entry point for the AI travel planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/Hodaren2022/aitravel-backend/internal/ai"
	"github.com/Hodaren2022/aitravel-backend/internal/config"
	"github.com/Hodaren2022/aitravel-backend/internal/handler"
	"github.com/Hodaren2022/aitravel-backend/internal/middleware"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
	"github.com/Hodaren2022/aitravel-backend/internal/service"
	"github.com/Hodaren2022/aitravel-backend/migrations"
)

// maxRequestBody caps request bodies at 1 MiB; chat messages and import
// documents both fit comfortably below this.
const maxRequestBody = 1 << 20

// appVersion is stamped into export documents.
const appVersion = "2.0.0"

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	// With DATABASE_URL set, data lives in the Postgres documents table and
	// migrations run at startup. Without it the server falls back to the
	// in-memory store, which is fine for development but loses everything on
	// restart.
	var kv repo.KV
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		if err := migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		kv = repo.NewPgKV(pool)
		slog.Info("database connection established")
	} else {
		kv = repo.NewMemoryKV()
		slog.Warn("DATABASE_URL not set; using in-memory storage")
	}

	stores := repo.NewStores(kv)

	// --- Services ---------------------------------------------------------
	client := ai.NewClient(ai.Config{
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.GeminiModel,
		APIKey:  cfg.GeminiAPIKey,
		Logger:  logger,
	})

	modifier := service.NewModifier(stores, logger)
	assistant, err := service.NewAssistant(context.Background(), stores, modifier, logger)
	if err != nil {
		slog.Error("failed to load conversation history", "error", err)
		os.Exit(1)
	}

	snapshots := service.NewSnapshotBuilder(stores)
	chat := service.NewChatService(snapshots, client, service.NewKeywordExtractor(), assistant, logger)
	categorizer := service.NewCategorizer(client, logger)
	trips := service.NewTripService(stores, logger)
	exporter := service.NewExportService(stores, logger, appVersion)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxRequestBody))

	server := handler.NewServer(chat, client, categorizer, client, assistant, trips, exporter)
	server.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout is generous because a chat turn waits on the AI
	// upstream through retries.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending migrations using the embedded SQL files.
// goose needs a database/sql handle, so it gets its own short-lived
// connection via the pgx stdlib driver.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
