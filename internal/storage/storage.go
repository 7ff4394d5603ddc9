package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/costadelinmigrante/news-importer/internal/domain"
)

// Package storage provides the local draft store and the seen-source index.

// Store persists news drafts and remembers which source URLs were already
// imported (with a TTL so the index does not grow forever).
type Store interface {
	Close() error
	SaveDraft(draft domain.NewsDraft) error
	GetDraft(slug string) (domain.NewsDraft, bool, error)
	SeenSource(url string) (bool, error)
	MarkSource(url string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SourceTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSourceTTL       = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SourceTTL <= 0 {
		opts.SourceTTL = defaultSourceTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) SaveDraft(domain.NewsDraft) error { return nil }
func (noopStore) GetDraft(string) (domain.NewsDraft, bool, error) {
	return domain.NewsDraft{}, false, nil
}
func (noopStore) SeenSource(string) (bool, error) { return false, nil }
func (noopStore) MarkSource(string) error         { return nil }
