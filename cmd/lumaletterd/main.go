package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jpineda/lumaletter/internal/config"
	"github.com/jpineda/lumaletter/internal/ingest"
	"github.com/jpineda/lumaletter/internal/newsletter"
	"github.com/jpineda/lumaletter/internal/server"
)

var cfgFile = flag.String("config", "", "Path to config file (toml)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	ing, err := ingest.NewFromConfig(cfg.Ingest, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initializing ingestion")
	}

	// Newsletter generation is optional for the server; without an AI key
	// only the /events endpoint is usable.
	var renderer *newsletter.Renderer
	if cfg.AI.APIKey != "" {
		client, err := newsletter.NewOpenAIClient(cfg.AI, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("initializing AI client")
		}
		renderer = newsletter.NewRenderer(client, logger)
	} else {
		logger.Warn().Msg("no AI API key configured; /newsletter disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg.Server, ing, renderer, logger).ListenAndServe(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
