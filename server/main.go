// Command server runs the sealed-bid clearing service over TCP or vsock.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudx-io/draftauction/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Msgf("Invalid configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Msgf("Invalid log level %q: %v", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	var archive RunArchive
	if cfg.ArchivePath != "" {
		runStore, err := store.Open(cfg.ArchivePath)
		if err != nil {
			log.Fatal().Msgf("Failed to open run archive: %v", err)
		}
		defer func() {
			if err := runStore.Close(); err != nil {
				log.Error().Msgf("Failed to close run archive: %v", err)
			}
		}()
		archive = runStore
		log.Info().Msgf("Archiving runs to %s", cfg.ArchivePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewServer(cfg, archive)
	listener, err := server.Listen()
	if err != nil {
		log.Fatal().Msgf("%v", err)
	}
	if err := server.Serve(ctx, listener); err != nil {
		log.Error().Msgf("Server stopped: %v", err)
	}
	log.Info().Msg("Clearing server shut down")
}
