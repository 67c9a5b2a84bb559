package domain

import "context"

// EmbeddingResult is a vector plus the token usage the provider reported.
// Cached results carry zero usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by collaborators that can probe their upstream.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
