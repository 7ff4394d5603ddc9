package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/costadelinmigrante/news-importer/internal/logger"
)

// fakeCompleter captures the request and returns a canned response.
type fakeCompleter struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return f.resp, nil
}

func completionWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func newTestRewriter(fake *fakeCompleter) *OpenAIRewriter {
	return &OpenAIRewriter{
		client:    fake,
		model:     "llama-3.1-8b-instant",
		maxTokens: 2000,
		timeout:   time.Second,
		log:       logger.NopLogger{},
	}
}

func TestRewriteSendsInstruction(t *testing.T) {
	fake := &fakeCompleter{resp: completionWith("  Texto reescrito.  ")}
	r := newTestRewriter(fake)

	out, err := r.Rewrite(context.Background(), "Texto original del artículo.")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out != "Texto reescrito." {
		t.Errorf("out = %q, want trimmed completion", out)
	}

	if len(fake.req.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(fake.req.Messages))
	}
	msg := fake.req.Messages[0]
	if msg.Role != openai.ChatMessageRoleUser {
		t.Errorf("role = %q", msg.Role)
	}
	if !strings.HasPrefix(msg.Content, instruction) {
		t.Errorf("prompt missing instruction prefix: %q", msg.Content)
	}
	if !strings.HasSuffix(msg.Content, "Texto original del artículo.") {
		t.Errorf("prompt missing article text: %q", msg.Content)
	}
	if fake.req.Model != "llama-3.1-8b-instant" || fake.req.MaxTokens != 2000 {
		t.Errorf("request = model %q maxTokens %d", fake.req.Model, fake.req.MaxTokens)
	}
}

func TestRewriteEmptyCompletion(t *testing.T) {
	for _, resp := range []openai.ChatCompletionResponse{
		{},
		completionWith("   "),
	} {
		r := newTestRewriter(&fakeCompleter{resp: resp})
		if _, err := r.Rewrite(context.Background(), "contenido"); !errors.Is(err, ErrEmptyCompletion) {
			t.Errorf("err = %v, want ErrEmptyCompletion", err)
		}
	}
}

func TestRewritePropagatesAPIError(t *testing.T) {
	r := newTestRewriter(&fakeCompleter{err: errors.New("rate limited")})
	if _, err := r.Rewrite(context.Background(), "contenido"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewDefaults(t *testing.T) {
	r := New(Config{APIKey: "test-key"}, nil)
	if r.model != "llama-3.1-8b-instant" {
		t.Errorf("model = %q", r.model)
	}
	if r.maxTokens != 2000 {
		t.Errorf("maxTokens = %d", r.maxTokens)
	}
	if r.timeout != 30*time.Second {
		t.Errorf("timeout = %v", r.timeout)
	}
}
