package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"fasplanners/internal/config"
	"fasplanners/internal/database"
	"fasplanners/internal/notify"
	"fasplanners/internal/services"
	"fasplanners/internal/storage"
	"fasplanners/internal/store"
	"fasplanners/internal/transport"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 60 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 60 * time.Second
	statsInterval   = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	config.SetupLogger(&cfg.App)

	log.Info().
		Str("version", cfg.App.Version).
		Bool("debug", cfg.App.Debug).
		Str("host", cfg.App.Host).
		Str("port", cfg.App.Port).
		Msg("Starting " + cfg.App.Name)

	log.Info().Msg("Initializing database connection...")
	if err := database.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		log.Info().Msg("Closing database connections...")
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Initializing services...")
	images, err := storage.New(ctx, cfg.Storage, cfg.Submission.MaxImageBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image storage")
	}
	notifier, err := notify.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notifications")
	}

	eventSvc := services.NewEventRequestService(store.NewGormStore(database.GetDB()), services.Options{
		Images:   images,
		Notifier: notifier,
		Limits:   cfg.Submission,
	})
	healthSvc := services.NewHealthService(cfg.App.Name, cfg.App.Version, func(context.Context) error {
		return database.HealthCheck()
	})

	log.Info().Msg("Mounting HTTP handlers...")
	handler := transport.NewHandler(cfg, transport.NewEndpoints(eventSvc, healthSvc))

	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     stdlog.New(log.Logger.With().Str("component", "http").Logger(), "", 0),
	}

	go reportDBStats(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		log.Fatal().Err(err).Msg("Server failed to start")
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal. Starting graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Msg("Shutdown timeout exceeded, forcing close...")
			httpServer.Close()
		}
	}

	log.Info().Msg("Waiting for pending notifications...")
	eventSvc.Wait()

	log.Info().Msg("Server shutdown complete")
}

// reportDBStats refreshes the connection pool gauges until ctx ends
func reportDBStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := database.GetStats(); err != nil {
				log.Warn().Str("component", "database").Err(err).Msg("Failed to read connection stats")
			}
		}
	}
}
