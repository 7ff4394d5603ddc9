package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/costadelinmigrante/news-importer/internal/extract"
	"github.com/costadelinmigrante/news-importer/internal/fetch"
)

const bodyParagraph = "El ayuntamiento ha confirmado esta mañana que las obras de remodelación del paseo marítimo comenzarán la próxima semana y se prolongarán durante cuatro meses, con un presupuesto que supera los dos millones de euros según fuentes municipales."

const articleHTML = `<html><head>
	<meta property="og:title" content="Playa Renovada">
	<meta property="og:image" content="//cdn.example.com/playa.jpg">
	<meta name="author" content="Redacción">
</head><body>
	<div class="post-content">
		<p>` + bodyParagraph + `</p>
		<p>` + bodyParagraph + `</p>
	</div>
</body></html>`

// fakeFetcher serves canned pages or errors per pass.
type fakeFetcher struct {
	page        *fetch.Page
	err         error
	reducedPage *fetch.Page
	reducedErr  error

	reducedCalls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeFetcher) FetchReduced(_ context.Context, url string) (*fetch.Page, error) {
	f.reducedCalls++
	if f.reducedErr != nil {
		return nil, f.reducedErr
	}
	return f.reducedPage, nil
}

func (f *fakeFetcher) FetchBatch(ctx context.Context, url string) (*fetch.Page, error) {
	return f.Fetch(ctx, url)
}

// fakeRewriter records invocations and returns a fixed result or error.
type fakeRewriter struct {
	out   string
	err   error
	calls int
}

func (f *fakeRewriter) Rewrite(_ context.Context, content string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func newService(f *fakeFetcher, r Rewriter) *Service {
	return NewService(f, extract.New(extract.DefaultRules()), r, 0, nil)
}

func TestImportFullPath(t *testing.T) {
	url := "https://diario.example.com/noticias/playa"
	fetcher := &fakeFetcher{page: &fetch.Page{HTML: []byte(articleHTML), SourceURL: url}}
	rewriter := &fakeRewriter{out: "Texto reescrito por el modelo con la misma información factual."}

	article, err := newService(fetcher, rewriter).Import(context.Background(), url)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if article.Title != "Playa Renovada" {
		t.Errorf("title = %q", article.Title)
	}
	if article.Content != rewriter.out {
		t.Errorf("content = %q, want rewritten text", article.Content)
	}
	if article.Image != "https://cdn.example.com/playa.jpg" {
		t.Errorf("image = %q, want protocol-relative resolved", article.Image)
	}
	if article.SourceURL != url {
		t.Errorf("source url = %q", article.SourceURL)
	}
	if article.Author != "Redacción" {
		t.Errorf("author = %q", article.Author)
	}
	if rewriter.calls != 1 {
		t.Errorf("rewriter calls = %d, want 1", rewriter.calls)
	}
}

func TestImportRewriteFailureKeepsSanitizedContent(t *testing.T) {
	url := "https://diario.example.com/n/1"
	fetcher := &fakeFetcher{page: &fetch.Page{HTML: []byte(articleHTML), SourceURL: url}}
	rewriter := &fakeRewriter{err: errors.New("rate limited")}

	article, err := newService(fetcher, rewriter).Import(context.Background(), url)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !strings.Contains(article.Content, "remodelación del paseo marítimo") {
		t.Errorf("content = %q, want sanitized original", article.Content)
	}
	if rewriter.calls != 1 {
		t.Errorf("rewriter calls = %d", rewriter.calls)
	}
}

func TestImportShortContentSkipsRewrite(t *testing.T) {
	// One paragraph over the fallback threshold but under the rewrite
	// minimum: extraction succeeds, rewrite stage must not run.
	short := "El pleno aprobó ayer la nueva ordenanza de terrazas del municipio costero."
	html := `<html><body><p>` + short + `</p></body></html>`
	url := "https://diario.example.com/n/2"

	fetcher := &fakeFetcher{page: &fetch.Page{HTML: []byte(html), SourceURL: url}}
	rewriter := &fakeRewriter{out: "no debería usarse"}

	article, err := newService(fetcher, rewriter).Import(context.Background(), url)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if article.Content != short {
		t.Errorf("content = %q, want original short text", article.Content)
	}
	if rewriter.calls != 0 {
		t.Errorf("rewriter calls = %d, want 0", rewriter.calls)
	}
}

func TestImportSentinelsWhenNothingFound(t *testing.T) {
	html := `<html><body><div>hola</div></body></html>`
	url := "https://diario.example.com/n/3"
	fetcher := &fakeFetcher{page: &fetch.Page{HTML: []byte(html), SourceURL: url}}

	article, err := newService(fetcher, nil).Import(context.Background(), url)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if article.Title != TitleNotFound {
		t.Errorf("title = %q, want sentinel", article.Title)
	}
	if article.Content != ContentNotFound {
		t.Errorf("content = %q, want sentinel", article.Content)
	}
}

func TestImportFallsBackToReducedPass(t *testing.T) {
	url := "https://diario.example.com/n/4"
	fetcher := &fakeFetcher{
		err:         &fetch.Error{URL: url, StatusCode: 403},
		reducedPage: &fetch.Page{HTML: []byte(articleHTML), SourceURL: url},
	}
	rewriter := &fakeRewriter{out: "reescrito"}

	article, err := newService(fetcher, rewriter).Import(context.Background(), url)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if fetcher.reducedCalls != 1 {
		t.Errorf("reduced calls = %d, want 1", fetcher.reducedCalls)
	}
	if article.Title != "Playa Renovada" {
		t.Errorf("title = %q", article.Title)
	}
	// The reduced pass never rewrites.
	if rewriter.calls != 0 {
		t.Errorf("rewriter calls = %d, want 0", rewriter.calls)
	}
	if !strings.Contains(article.Content, "remodelación") {
		t.Errorf("content = %q", article.Content)
	}
}

func TestImportBothFetchesFailIsHardError(t *testing.T) {
	url := "https://diario.example.com/n/5"
	fetcher := &fakeFetcher{
		err:        &fetch.Error{URL: url, StatusCode: 404},
		reducedErr: &fetch.Error{URL: url, StatusCode: 404},
	}
	rewriter := &fakeRewriter{out: "nunca"}

	_, err := newService(fetcher, rewriter).Import(context.Background(), url)
	if !errors.Is(err, ErrSourceUnreachable) {
		t.Fatalf("err = %v, want ErrSourceUnreachable", err)
	}
	if rewriter.calls != 0 {
		t.Errorf("rewriter calls = %d, want 0", rewriter.calls)
	}
}

func TestSummarize(t *testing.T) {
	url := "https://diario.example.com/n/6"
	fetcher := &fakeFetcher{page: &fetch.Page{HTML: []byte(articleHTML), SourceURL: url}}

	summary := newService(fetcher, nil).Summarize(context.Background(), url)
	if summary.Error != "" {
		t.Fatalf("summary error = %q", summary.Error)
	}
	if summary.URL != url || summary.Title != "Playa Renovada" {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(summary.Text, "remodelación") {
		t.Errorf("text = %q", summary.Text)
	}
}

func TestSummarizeReportsHTTPStatus(t *testing.T) {
	url := "https://diario.example.com/n/7"
	fetcher := &fakeFetcher{err: &fetch.Error{URL: url, StatusCode: 404, Snippet: "gone"}}

	summary := newService(fetcher, nil).Summarize(context.Background(), url)
	if summary.Error != "HTTP 404" {
		t.Errorf("error = %q, want HTTP 404", summary.Error)
	}
	if summary.URL != url {
		t.Errorf("url = %q", summary.URL)
	}
}
