package recommend

import (
	"context"

	"github.com/Rachel0619/VanTrails/internal/domain"
)

// Completer runs the recommendation completion.
type Completer interface {
	Complete(ctx context.Context, op, system, user string, opts domain.CompletionOptions) (string, error)
}

// StreamCompleter runs the recommendation completion in streaming mode.
type StreamCompleter interface {
	CompleteStream(ctx context.Context, op, system, user string, opts domain.CompletionOptions) (<-chan domain.StreamChunk, error)
}

// Prompts renders the recommendation prompts.
type Prompts interface {
	RecommendationSystem() string
	RecommendationUser(query string, results []domain.RankedResult) (string, error)
}
