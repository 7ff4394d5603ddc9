package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/costadelinmigrante/news-importer/internal/app"
	"github.com/costadelinmigrante/news-importer/internal/config"
	"github.com/costadelinmigrante/news-importer/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "importer start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	log.InfoObj("importer starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importer, err := app.NewImporter(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize importer", "error", err.Error())
		return err
	}

	if err := importer.Run(ctx); err != nil {
		return fmt.Errorf("importer run: %w", err)
	}

	return nil
}
