// Package recommend turns retrieved trail candidates into a natural-language
// recommendation in a hiking-guide persona.
package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
)

const opRender = "render"

// NoMatchesMessage is returned verbatim when retrieval produced no
// candidates. No model call is made for it.
const NoMatchesMessage = "Sorry, I couldn't find any trails matching your request. " +
	"Try relaxing a constraint, like difficulty or distance, and ask again."

// Config tunes the recommendation completion.
type Config struct {
	Temperature float32
	MaxTokens   int
}

// Service renders recommendations from ranked trail candidates.
type Service struct {
	llm     Completer
	stream  StreamCompleter
	prompts Prompts
	cfg     Config
	logger  *zap.Logger
}

// New creates a recommendation service. llm and stream are usually the same
// underlying client.
func New(llm Completer, stream StreamCompleter, prompts Prompts, cfg Config, logger *zap.Logger) *Service {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	return &Service{llm: llm, stream: stream, prompts: prompts, cfg: cfg, logger: logger}
}

// Render produces the full recommendation text. Empty candidate lists get
// the fixed no-matches message without touching the model.
func (s *Service) Render(ctx context.Context, query string, results []domain.RankedResult) (string, error) {
	if len(results) == 0 {
		return NoMatchesMessage, nil
	}

	user, err := s.prompts.RecommendationUser(query, results)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w: %w", domain.ErrGenerationFailed, err)
	}

	text, err := s.llm.Complete(ctx, opRender, s.prompts.RecommendationSystem(), user, s.opts())
	if err != nil {
		return "", fmt.Errorf("render recommendation: %w", err)
	}

	s.logger.Debug("Rendered recommendation",
		zap.Int("candidates", len(results)), zap.Int("chars", len(text)))

	return text, nil
}

// RenderStream produces the recommendation as a fragment stream. For empty
// candidate lists the channel carries the fixed no-matches message as a
// single fragment.
func (s *Service) RenderStream(ctx context.Context, query string, results []domain.RankedResult) (<-chan domain.StreamChunk, error) {
	if len(results) == 0 {
		out := make(chan domain.StreamChunk, 1)
		out <- domain.StreamChunk{Content: NoMatchesMessage}
		close(out)
		return out, nil
	}

	user, err := s.prompts.RecommendationUser(query, results)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w: %w", domain.ErrGenerationFailed, err)
	}

	ch, err := s.stream.CompleteStream(ctx, opRender, s.prompts.RecommendationSystem(), user, s.opts())
	if err != nil {
		return nil, fmt.Errorf("render recommendation: %w", err)
	}
	return ch, nil
}

func (s *Service) opts() domain.CompletionOptions {
	return domain.CompletionOptions{Temperature: s.cfg.Temperature, MaxTokens: s.cfg.MaxTokens}
}
