// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Folio HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration (.env + environment variables).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/folio/internal/api"
	"github.com/taibuivan/folio/internal/core/audio"
	"github.com/taibuivan/folio/internal/core/book"
	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/core/hierarchy"
	"github.com/taibuivan/folio/internal/core/section"
	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/media"
	"github.com/taibuivan/folio/internal/platform/migration"
	pgstore "github.com/taibuivan/folio/internal/platform/postgres"
	redisstore "github.com/taibuivan/folio/internal/platform/redis"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/internal/users/account"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("api_keys", len(cfg.AuthorizedAPIKeys)),
	)

	// Root context lives for the whole process; the rate limiter janitor stops with it.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// A 30s startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & shared collaborators ────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	policy := media.NewPolicy(cfg.MaxImageSizeMB, cfg.MaxAudioSizeMB, cfg.SupportedImageTypes, cfg.SupportedAudioTypes)
	transactions := pgstore.NewTxManager(pool, log)
	draftLocks := redisstore.NewLocker(rdb, constants.RedisPrefixDraftLock, cfg.DraftLockTTL)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	accountService := account.NewService(account.NewPostgresRepository(pool), tokens, cfg.TokenTTL, log)
	bookService := book.NewService(book.NewPostgresRepository(pool), log)
	chapterService := chapter.NewService(chapter.NewRepository(pool), log)
	sectionService := section.NewService(section.NewPostgresRepository(pool), policy, log)
	audioService := audio.NewService(audio.NewPostgresRepository(pool), policy, log)
	engine := hierarchy.NewEngine(hierarchy.NewPostgresStore(pool), transactions, draftLocks, policy, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Domains: []api.RouteRegistrar{
			account.NewHandler(accountService),
			book.NewHandler(bookService),
			chapter.NewHandler(chapterService),
			section.NewHandler(sectionService),
			audio.NewHandler(audioService),
			hierarchy.NewHandler(engine),
		},
	}

	server := api.NewServer(rootCtx, cfg, log, tokens, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
