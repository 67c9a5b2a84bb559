package retrieval

import (
	"context"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/domain/filters"
)

// Parser extracts trail filters from a free-form query. Parsing is
// best-effort and never fails.
type Parser interface {
	Parse(ctx context.Context, query string) filters.TrailFilters
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository runs filtered vector search over the trails index.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, pred filters.Predicate, k int) ([]domain.RankedResult, error)
}
