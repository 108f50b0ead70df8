package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/config"
	"github.com/ayla-solutions/mail-classification-api/internal/bootstrap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	app, cleanup, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer cleanup()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Dur("timeout", shutdownTimeout).Msg("shutting down")

		done := make(chan error, 1)
		go func() {
			done <- app.Fiber.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Error().Err(err).Msg("error shutting down server")
			} else {
				log.Info().Msg("server shut down gracefully")
			}
		case <-time.After(shutdownTimeout):
			log.Warn().Msg("shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting server")
	if err := app.Fiber.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
