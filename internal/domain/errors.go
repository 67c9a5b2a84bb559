package domain

import "errors"

var (
	// ErrRetrievalUnavailable signals a vector-store connectivity or query failure.
	// Distinct from an empty result set, which is a normal outcome.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationFailed signals a language-model failure while rendering a recommendation.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
