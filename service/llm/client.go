// Package llm requests optional narrative explanations of translated
// transactions from an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/suiscope/service/metrics"
	"github.com/brojonat/suiscope/service/translate"
	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the subset of the go-openai client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config configures the LLM client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client produces explanations.
type Client struct {
	api     ChatCompleter
	model   string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewClient creates a client for an OpenAI-compatible endpoint.
func NewClient(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return NewClientWithAPI(openai.NewClientWithConfig(oc), cfg.Model, cfg.Timeout, m, logger)
}

// NewClientWithAPI wraps an existing ChatCompleter.
func NewClientWithAPI(api ChatCompleter, model string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		api:     api,
		model:   model,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// ExplainTransaction projects tx and explains it.
func (c *Client) ExplainTransaction(ctx context.Context, tx *translate.TranslatedTransaction, mode Mode) (*Explanation, error) {
	return c.Explain(ctx, NewProjection(tx), mode)
}

// Explain asks the model to explain a projection.
func (c *Client) Explain(ctx context.Context, p Projection, mode Mode) (*Explanation, error) {
	start := time.Now()

	prompt, err := RenderPrompt(p, mode)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		c.record(mode, "error", start)
		return nil, fmt.Errorf("chat completion for %s: %w", p.Digest, err)
	}
	if len(resp.Choices) == 0 {
		c.record(mode, "empty", start)
		return nil, fmt.Errorf("chat completion for %s: %w", p.Digest, ErrEmptyResponse)
	}

	explanation, err := ParseExplanation(resp.Choices[0].Message.Content, mode)
	if err != nil {
		c.record(mode, "empty", start)
		return nil, fmt.Errorf("chat completion for %s: %w", p.Digest, err)
	}

	status := "success"
	if explanation.Partial {
		status = "partial"
		c.logger.WarnContext(ctx, "model returned malformed JSON, fields extracted by pattern",
			"digest", p.Digest,
			"mode", mode,
		)
	}
	c.record(mode, status, start)

	c.logger.DebugContext(ctx, "explanation generated",
		"digest", p.Digest,
		"mode", mode,
		"duration", time.Since(start),
	)
	return explanation, nil
}

func (c *Client) record(mode Mode, status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordLLMRequest(string(mode), status, time.Since(start).Seconds())
	}
}
