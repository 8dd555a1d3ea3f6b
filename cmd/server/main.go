// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"kulibrary/internal/config"
	"kulibrary/internal/domain"
	"kulibrary/internal/server"
	"kulibrary/internal/store/memory"
	"kulibrary/internal/store/postgres"
	"kulibrary/internal/telemetry"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "kulibrary").Logger()

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := telemetry.Init(ctx, "kulibrary", cfg.TracingEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("tracing disabled: exporter init failed")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("tracer shutdown")
				}
			}()
			logger.Info().Str("endpoint", cfg.TracingEndpoint).Msg("tracing initialized")
		}
	}

	var st domain.Store
	switch cfg.StoreDriver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		st = postgres.New(db)
		logger.Info().Msg("connected to postgres")
	case "memory":
		st = memory.New()
		logger.Info().Msg("using in-memory store")
	}

	srv := server.New(cfg, logger, st)

	if cfg.StoreDriver == "memory" && cfg.DemoSeed {
		if err := srv.Seed(ctx); err != nil {
			logger.Fatal().Err(err).Msg("demo seed failed")
		}
		logger.Info().Msg("demo fixtures loaded")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-shutdownCtx.Done()
	logger.Info().Msg("shutdown signal received")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}
