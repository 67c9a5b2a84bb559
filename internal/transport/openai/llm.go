package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/metrics"
)

// Chat is a chat completion client used for filter extraction and
// recommendation rendering.
type Chat struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the chat completion provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewChat creates an OpenAI-compatible chat completion client.
func NewChat(cfg *ChatConfig) *Chat {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Chat{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Complete runs a single blocking chat completion and returns the full
// assistant message. The op label distinguishes callers in metrics.
func (c *Chat) Complete(ctx context.Context, op, system, user string, opts domain.CompletionOptions) (string, error) {
	req := c.buildRequest(system, user, opts)

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(op, c.model, "error").Inc()
		return "", parseAPIError("chat", err, domain.ErrGenerationFailed)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(op, c.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.LLMRequestsTotal.WithLabelValues(op, c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(op, c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(op, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(op, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

// CompleteStream runs a streaming chat completion. Fragments arrive on the
// returned channel as the model produces them; the channel is closed when the
// stream ends. Cancelling ctx stops the stream. A mid-stream failure is
// delivered as the final chunk's Err.
func (c *Chat) CompleteStream(ctx context.Context, op, system, user string, opts domain.CompletionOptions) (<-chan domain.StreamChunk, error) {
	req := c.buildRequest(system, user, opts)
	req.Stream = true

	start := time.Now()

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(op, c.model, "error").Inc()
		return nil, parseAPIError("chat", err, domain.ErrGenerationFailed)
	}

	out := make(chan domain.StreamChunk)

	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				metrics.LLMRequestsTotal.WithLabelValues(op, c.model, "success").Inc()
				metrics.LLMRequestDuration.WithLabelValues(op, c.model).Observe(time.Since(start).Seconds())
				return
			}
			if err != nil {
				metrics.LLMRequestsTotal.WithLabelValues(op, c.model, "error").Inc()
				select {
				case out <- domain.StreamChunk{Err: parseAPIError("chat", err, domain.ErrGenerationFailed)}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- domain.StreamChunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Chat) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (c *Chat) buildRequest(system, user string, opts domain.CompletionOptions) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
}
