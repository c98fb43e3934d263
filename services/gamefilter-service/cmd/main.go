package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/app"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/config"
	"github.com/vasapolrittideah/gamefilter-api/shared/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logger.New(logger.Config{}, "gamefilter-service")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Log, "gamefilter-service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize app")
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}

	log.Info().Msg("gamefilter-service stopped cleanly")
}
