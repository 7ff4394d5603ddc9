package app

import (
	"context"
	"fmt"

	"github.com/costadelinmigrante/news-importer/internal/config"
	"github.com/costadelinmigrante/news-importer/internal/extract"
	"github.com/costadelinmigrante/news-importer/internal/fetch"
	"github.com/costadelinmigrante/news-importer/internal/logger"
	"github.com/costadelinmigrante/news-importer/internal/pipeline"
	"github.com/costadelinmigrante/news-importer/internal/rewrite"
	"github.com/costadelinmigrante/news-importer/internal/server"
	"github.com/costadelinmigrante/news-importer/internal/storage"
	"github.com/costadelinmigrante/news-importer/pkg/httpclient"
	"github.com/costadelinmigrante/news-importer/pkg/publishers"
)

// Importer bundles the wired import pipeline, draft store, publisher fanout
// and HTTP API.
type Importer struct {
	cfg    *config.Config
	log    logger.Logger
	store  storage.Store
	fanout *publishers.Fanout
	pipe   *pipeline.Service
	srv    *server.Server
}

// NewImporter builds the full service from configuration.
func NewImporter(ctx context.Context, cfg *config.Config, log logger.Logger) (*Importer, error) {
	log = logger.Ensure(log)

	pipe, err := NewPipeline(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SourceTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	srv := server.New(pipe, store, fanout, log, server.Options{
		BatchMaxURLs:     cfg.BatchMaxURLs,
		BatchConcurrency: cfg.BatchConcurrency,
	})

	return &Importer{
		cfg:    cfg,
		log:    log,
		store:  store,
		fanout: fanout,
		pipe:   pipe,
		srv:    srv,
	}, nil
}

// NewPipeline wires the fetch, extract and optional rewrite stages.
func NewPipeline(cfg *config.Config, log logger.Logger) (*pipeline.Service, error) {
	rules, err := extract.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load extraction rules: %w", err)
	}

	client := httpclient.NewRestyClient(cfg.FetchTimeout)
	fetcher := fetch.NewFetcher(client, cfg.MaxBodyBytes)
	extractor := extract.New(rules)

	var rewriter pipeline.Rewriter
	if cfg.RewriteEnabled() {
		rewriter = rewrite.New(rewrite.Config{
			BaseURL:   cfg.RewriteBaseURL,
			APIKey:    cfg.RewriteAPIKey,
			Model:     cfg.RewriteModel,
			MaxTokens: cfg.RewriteMaxTokens,
			Timeout:   cfg.RewriteTimeout,
		}, log)
	} else {
		log.InfoObj("rewrite stage disabled", "rewrite_state", "no api key configured")
	}

	return pipeline.NewService(fetcher, extractor, rewriter, cfg.RewriteMinChars, log), nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	registry, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), registry.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	return publishers.NewFanout(pubs), nil
}

// Run serves the HTTP API until the context is cancelled.
func (i *Importer) Run(ctx context.Context) error {
	defer func() {
		if err := i.store.Close(); err != nil {
			i.log.WarnObj("store close failed", "store_error", err.Error())
		}
	}()
	return i.srv.Run(ctx, i.cfg.ListenAddr)
}

// Pipeline exposes the import service for one-shot callers.
func (i *Importer) Pipeline() *pipeline.Service {
	return i.pipe
}
