package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/costadelinmigrante/news-importer/internal/logger"
)

// The rewriter paraphrases sanitized article text through an
// OpenAI-compatible endpoint (Groq by default). Failures here are expected
// and must never abort an import; the pipeline falls back to the original.

// The instruction preserves facts, tone and paragraph structure and forbids
// new information or changed dates/names.
const instruction = `Reescribe el siguiente artículo de noticias en español manteniendo toda la información factual, pero cambiando la redacción para que sea único y natural. Mantén el mismo tono periodístico y la estructura de párrafos. No agregues información nueva ni cambies fechas, nombres o datos específicos:`

// ErrEmptyCompletion indicates the model returned no usable text.
var ErrEmptyCompletion = errors.New("rewrite returned empty completion")

// chatCompleter is the subset of the OpenAI client the rewriter needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the rewrite service settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIRewriter calls a chat-completion endpoint with the fixed Spanish
// paraphrasing instruction.
type OpenAIRewriter struct {
	client    chatCompleter
	model     string
	maxTokens int
	timeout   time.Duration
	log       logger.Logger
}

// New builds a rewriter from config.
func New(cfg Config, log logger.Logger) *OpenAIRewriter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if strings.TrimSpace(model) == "" {
		model = "llama-3.1-8b-instant"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIRewriter{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       logger.Ensure(log),
	}
}

// Rewrite submits the content for paraphrasing and returns the rewritten
// text. Callers decide whether the content is long enough to bother.
func (r *OpenAIRewriter) Rewrite(ctx context.Context, content string) (string, error) {
	if r == nil || r.client == nil {
		return "", errors.New("rewriter is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: instruction + "\n\n" + content,
			},
		},
		MaxTokens:   r.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}

	r.log.DebugObj("content rewritten", "rewrite_meta", map[string]any{
		"model":     r.model,
		"input_len": len(content),
		"out_len":   len(out),
	})
	return out, nil
}
