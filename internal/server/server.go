package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/costadelinmigrante/news-importer/internal/domain"
	"github.com/costadelinmigrante/news-importer/internal/logger"
	"github.com/costadelinmigrante/news-importer/internal/storage"
	"github.com/costadelinmigrante/news-importer/pkg/publishers"
)

// extractErrorMessage is the user-facing message for hard import failures.
const extractErrorMessage = "No se pudo extraer el contenido de la URL. Verifica que la URL sea válida y accesible."

// validCategories mirrors the news category enum of the back-office.
var validCategories = []string{"local", "inmobiliario", "servicios", "eventos", "turismo", "general"}

// ImportService runs the extraction pipeline.
type ImportService interface {
	Import(ctx context.Context, url string) (domain.ExtractedArticle, error)
	Summarize(ctx context.Context, url string) domain.PageSummary
}

// EventPublisher fans out import events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Options carries the request-shaping knobs for the API.
type Options struct {
	BatchMaxURLs     int
	BatchConcurrency int
}

// Server exposes the import pipeline and the draft store over HTTP.
type Server struct {
	pipe             ImportService
	store            storage.Store
	fanout           EventPublisher
	log              logger.Logger
	batchMaxURLs     int
	batchConcurrency int
}

// New wires the HTTP API.
func New(pipe ImportService, store storage.Store, fanout EventPublisher, log logger.Logger, opts Options) *Server {
	if opts.BatchMaxURLs <= 0 {
		opts.BatchMaxURLs = 20
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 8
	}
	return &Server{
		pipe:             pipe,
		store:            store,
		fanout:           fanout,
		log:              logger.Ensure(log),
		batchMaxURLs:     opts.BatchMaxURLs,
		batchConcurrency: opts.BatchConcurrency,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/extract-news", s.handleExtractNews)
	mux.HandleFunc("POST /api/fetch-content", s.handleFetchContent)
	mux.HandleFunc("POST /api/news", s.handleCreateNews)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.withLogging(mux)
}

// Run serves the API until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.InfoObj("http server listening", "server_state", map[string]any{
		"addr":       addr,
		"publishers": s.fanoutSize(),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) fanoutSize() int {
	if s.fanout == nil {
		return 0
	}
	return s.fanout.Size()
}

type extractRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleExtractNews(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	if s.store != nil {
		if seen, err := s.store.SeenSource(req.URL); err == nil && seen {
			s.log.WarnObj("source url was already imported", "import_dedupe", req.URL)
		}
	}

	article, err := s.pipe.Import(r.Context(), req.URL)
	if err != nil {
		s.log.ErrorObj("news extraction failed", "extract_error", map[string]any{
			"url":   req.URL,
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, extractErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

type fetchContentRequest struct {
	URLs []string `json:"urls"`
}

type fetchContentResponse struct {
	Results []domain.PageSummary `json:"results"`
}

func (s *Server) handleFetchContent(w http.ResponseWriter, r *http.Request) {
	var req fetchContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URLs == nil {
		writeError(w, http.StatusBadRequest, "URLs array is required")
		return
	}
	if len(req.URLs) > s.batchMaxURLs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many URLs (max %d)", s.batchMaxURLs))
		return
	}

	results := make([]domain.PageSummary, len(req.URLs))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.batchConcurrency)
	for i, u := range req.URLs {
		g.Go(func() error {
			results[i] = s.pipe.Summarize(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, fetchContentResponse{Results: results})
}

type createNewsRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	FeaturedImage string   `json:"featured_image"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	SourceURL     string   `json:"sourceUrl"`
	IsPublished   bool     `json:"is_published"`
}

func (s *Server) handleCreateNews(w http.ResponseWriter, r *http.Request) {
	var req createNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeError(w, http.StatusBadRequest, "Category is required")
		return
	}
	if !isValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid category. Must be one of: %s", strings.Join(validCategories, ", ")))
		return
	}

	now := time.Now().UTC()
	draft := domain.NewsDraft{
		Title:         req.Title,
		Slug:          fmt.Sprintf("%s-%d", slugify(req.Title), now.UnixMilli()),
		Content:       req.Content,
		FeaturedImage: req.FeaturedImage,
		Category:      req.Category,
		Tags:          req.Tags,
		SourceURL:     req.SourceURL,
		IsPublished:   req.IsPublished,
		CreatedAt:     now,
	}
	if draft.Tags == nil {
		draft.Tags = []string{}
	}

	if s.store != nil {
		if err := s.store.SaveDraft(draft); err != nil {
			s.log.ErrorObj("draft save failed", "store_error", err.Error())
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
			return
		}
		if draft.SourceURL != "" {
			if err := s.store.MarkSource(draft.SourceURL); err != nil {
				s.log.WarnObj("mark source failed", "store_error", err.Error())
			}
		}
	}

	if s.fanout != nil && s.fanout.Size() > 0 {
		if _, err := s.fanout.Publish(r.Context(), publishers.NewEvent(draft)); err != nil {
			s.log.WarnObj("import event publish failed", "publish_error", err.Error())
		}
	}

	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isValidCategory(category string) bool {
	for _, c := range validCategories {
		if c == category {
			return true
		}
	}
	return false
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
