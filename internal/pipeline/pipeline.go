package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/costadelinmigrante/news-importer/internal/domain"
	"github.com/costadelinmigrante/news-importer/internal/extract"
	"github.com/costadelinmigrante/news-importer/internal/fetch"
	"github.com/costadelinmigrante/news-importer/internal/logger"
)

// Sentinel placeholders keep the editor form populated when extraction
// found nothing usable; the operator completes the record by hand.
const (
	TitleNotFound   = "Título no encontrado"
	ContentNotFound = "Contenido no encontrado. Por favor, edita manualmente."
)

// DefaultRewriteMinChars is the minimum sanitized length worth paraphrasing.
const DefaultRewriteMinChars = 100

// ErrSourceUnreachable is returned when both the rich and the reduced fetch
// passes failed; it is the only hard, user-facing pipeline failure.
var ErrSourceUnreachable = errors.New("source page could not be fetched")

// PageFetcher retrieves raw article pages.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
	FetchReduced(ctx context.Context, url string) (*fetch.Page, error)
	FetchBatch(ctx context.Context, url string) (*fetch.Page, error)
}

// Rewriter paraphrases sanitized content. Failures are non-fatal.
type Rewriter interface {
	Rewrite(ctx context.Context, content string) (string, error)
}

// Service runs the import pipeline: fetch, structural extraction,
// sanitizing, optional rewriting, assembly. Each invocation is
// request-scoped; there is no shared mutable state.
type Service struct {
	fetcher         PageFetcher
	extractor       *extract.Extractor
	rewriter        Rewriter
	rewriteMinChars int
	log             logger.Logger
}

// NewService wires the pipeline collaborators. A nil rewriter disables the
// rewrite stage entirely.
func NewService(fetcher PageFetcher, extractor *extract.Extractor, rewriter Rewriter, rewriteMinChars int, log logger.Logger) *Service {
	if rewriteMinChars <= 0 {
		rewriteMinChars = DefaultRewriteMinChars
	}
	return &Service{
		fetcher:         fetcher,
		extractor:       extractor,
		rewriter:        rewriter,
		rewriteMinChars: rewriteMinChars,
		log:             logger.Ensure(log),
	}
}

// Import extracts a full article preview for the given URL. The degradation
// ladder is: full heuristics, then a reduced single-pass extraction, then
// sentinel text; only total inability to reach the source surfaces as error.
func (s *Service) Import(ctx context.Context, sourceURL string) (domain.ExtractedArticle, error) {
	page, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		s.log.WarnObj("primary fetch failed, trying reduced pass", "import_fallback", map[string]any{
			"url":   sourceURL,
			"error": err.Error(),
		})
		return s.importReduced(ctx, sourceURL, err)
	}

	doc, err := s.extractor.Parse(page.HTML, sourceURL)
	if err != nil {
		s.log.WarnObj("page parse failed, trying reduced pass", "import_fallback", map[string]any{
			"url":   sourceURL,
			"error": err.Error(),
		})
		return s.importReduced(ctx, sourceURL, err)
	}

	meta := s.extractor.Metadata(doc)

	content := s.extractor.FullContent(doc)
	if content == "" {
		content = s.extractor.SummaryContent(doc)
	}
	clean := extract.Sanitize(content)
	final := s.maybeRewrite(ctx, clean)

	return assemble(meta, final, sourceURL), nil
}

// importReduced is the fallback pass: minimal headers, summary-threshold
// cascade, no rewrite stage.
func (s *Service) importReduced(ctx context.Context, sourceURL string, cause error) (domain.ExtractedArticle, error) {
	page, err := s.fetcher.FetchReduced(ctx, sourceURL)
	if err != nil {
		return domain.ExtractedArticle{}, fmt.Errorf("%w: %v", ErrSourceUnreachable, errors.Join(cause, err))
	}

	doc, err := s.extractor.Parse(page.HTML, sourceURL)
	if err != nil {
		return domain.ExtractedArticle{}, fmt.Errorf("%w: %v", ErrSourceUnreachable, errors.Join(cause, err))
	}

	meta := s.extractor.Metadata(doc)
	clean := extract.Sanitize(s.extractor.SummaryContent(doc))

	return assemble(meta, clean, sourceURL), nil
}

// Summarize is the batch-utility variant: first-match parsing, summary
// thresholds, no rewrite, per-URL errors reported in the result.
func (s *Service) Summarize(ctx context.Context, sourceURL string) domain.PageSummary {
	summary := domain.PageSummary{URL: sourceURL}

	page, err := s.fetcher.FetchBatch(ctx, sourceURL)
	if err != nil {
		summary.Error = fetchErrorMessage(err)
		return summary
	}

	doc, err := s.extractor.Parse(page.HTML, sourceURL)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	meta := s.extractor.Metadata(doc)
	summary.Title = meta.Title
	summary.Description = meta.Description
	summary.Image = meta.Image
	summary.Author = meta.Author
	summary.PublishedTime = meta.PublishedDate
	summary.Text = s.extractor.SummaryContent(doc)

	return summary
}

func (s *Service) maybeRewrite(ctx context.Context, clean string) string {
	if s.rewriter == nil || utf8.RuneCountInString(clean) < s.rewriteMinChars {
		return clean
	}

	out, err := s.rewriter.Rewrite(ctx, clean)
	if err != nil {
		s.log.WarnObj("rewrite failed, keeping sanitized content", "rewrite_error", map[string]any{
			"error": err.Error(),
		})
		return clean
	}
	if strings.TrimSpace(out) == "" {
		return clean
	}
	return out
}

// assemble merges metadata and content into the final record, substituting
// sentinels so title and content are never empty.
func assemble(meta extract.Metadata, content, sourceURL string) domain.ExtractedArticle {
	title := meta.Title
	if title == "" {
		title = TitleNotFound
	}
	if strings.TrimSpace(content) == "" {
		content = ContentNotFound
	}

	return domain.ExtractedArticle{
		Title:         title,
		Content:       content,
		Image:         meta.Image,
		SourceURL:     sourceURL,
		Author:        meta.Author,
		PublishedDate: meta.PublishedDate,
	}
}

func fetchErrorMessage(err error) string {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return fmt.Sprintf("HTTP %d", fe.StatusCode)
	}
	return err.Error()
}
