// Command server boots the storefront API.
//
// Startup order:
//  1. Load .env (best effort) and the environment-backed configuration.
//  2. Configure global logging (level, optional pretty console output).
//  3. Open SQLite, migrate the options table, and seed the configured
//     store defaults (stored options always win over the environment).
//  4. Materialize and validate the store profile.
//  5. Initialize OpenTelemetry tracing (no-op unless OTEL_ENABLED).
//  6. Build the Gin engine, mount the dispatch engine, and serve until
//     SIGINT/SIGTERM, then drain with a bounded shutdown window.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-store-api/internal/config"
	httpapi "github.com/tbourn/go-store-api/internal/http"
	"github.com/tbourn/go-store-api/internal/observability"
	"github.com/tbourn/go-store-api/internal/repo"
	"github.com/tbourn/go-store-api/internal/sysutil"
)

// shutdownGrace bounds how long in-flight requests get to finish on exit.
const shutdownGrace = 10 * time.Second

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate options table")
	}

	ctx := context.Background()
	if err := repo.SeedDefaults(ctx, db, cfg.StoreProfileDefaults()); err != nil {
		log.Fatal().Err(err).Msg("seed store defaults")
	}
	profile, err := repo.LoadStoreProfile(ctx, db, cfg.StoreProfile())
	if err != nil {
		log.Fatal().Err(err).Msg("load store profile")
	}
	if err := profile.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid store profile")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, cfg.StoreVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracing")
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, profile, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("api_version", cfg.APIVersion).
			Str("store", profile.Name).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Block until a termination signal, then drain.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
