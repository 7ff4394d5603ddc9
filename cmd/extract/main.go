// Command extract runs the import pipeline once for a single URL and prints
// the extracted article as JSON. Useful for trying out extraction rules
// without standing up the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"flag"
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
		fmt.Fprintf(os.Stderr, "extract failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	summary := flag.Bool("summary", false, "produce a lightweight page summary instead of a full import")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: extract [-summary] <url>")
	}
	url := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipe, err := app.NewPipeline(cfg, log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *summary {
		return enc.Encode(pipe.Summarize(ctx, url))
	}

	article, err := pipe.Import(ctx, url)
	if err != nil {
		return fmt.Errorf("import %s: %w", url, err)
	}
	return enc.Encode(article)
}
