package fetch

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/costadelinmigrante/news-importer/pkg/httpclient"
)

// DefaultMaxBodyBytes caps how much of a page body is kept for extraction.
const DefaultMaxBodyBytes = 2 << 20 // 2 MiB

// Page is the raw markup retrieved for a source URL. It is owned by a single
// pipeline invocation and discarded once extraction completes.
type Page struct {
	HTML      []byte
	SourceURL string
}

// Error carries the HTTP status of a failed page fetch.
type Error struct {
	URL        string
	StatusCode int
	Snippet    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Snippet)
}

// browserHeaders mimics a desktop browser; many news sites reject bare clients.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "es-ES,es;q=0.8,en-US;q=0.5,en;q=0.3",
	"Accept-Encoding":           "gzip, deflate",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// reducedHeaders is the minimal header set used by the fallback pass.
var reducedHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}

// botHeaders identifies the batch utility honestly.
var botHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (compatible; NewsBot/1.0)",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "es-ES,es;q=0.8,en;q=0.6",
}

// Fetcher retrieves raw article pages over HTTP.
type Fetcher struct {
	client       httpclient.Client
	maxBodyBytes int64
}

// NewFetcher constructs a page fetcher with the provided HTTP client.
func NewFetcher(client httpclient.Client, maxBodyBytes int64) *Fetcher {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{client: client, maxBodyBytes: maxBodyBytes}
}

// Fetch retrieves the page with full browser-mimicking headers.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	return f.fetch(ctx, rawURL, browserHeaders)
}

// FetchReduced retrieves the page with the minimal header set. It backs the
// reduced-heuristic fallback pass.
func (f *Fetcher) FetchReduced(ctx context.Context, rawURL string) (*Page, error) {
	return f.fetch(ctx, rawURL, reducedHeaders)
}

// FetchBatch retrieves the page with the batch-utility header set.
func (f *Fetcher) FetchBatch(ctx context.Context, rawURL string) (*Page, error) {
	return f.fetch(ctx, rawURL, botHeaders)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, headers map[string]string) (*Page, error) {
	if err := ValidateTarget(rawURL); err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &Error{
			URL:        rawURL,
			StatusCode: resp.StatusCode(),
			Snippet:    responseSnippet(body),
		}
	}

	if int64(len(body)) > f.maxBodyBytes {
		body = body[:f.maxBodyBytes]
	}

	return &Page{HTML: body, SourceURL: rawURL}, nil
}

// ValidateTarget rejects non-HTTP schemes and obviously internal hosts before
// any outbound request is made.
func ValidateTarget(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("url is empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("url has no host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("host %q is not allowed", host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("ip host %q is not allowed", host)
		}
	}

	return nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
