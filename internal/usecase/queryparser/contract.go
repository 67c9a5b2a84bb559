package queryparser

import (
	"context"

	"github.com/Rachel0619/VanTrails/internal/domain"
)

// Completer runs the filter-extraction completion.
type Completer interface {
	Complete(ctx context.Context, op, system, user string, opts domain.CompletionOptions) (string, error)
}

// Prompts supplies the filter-extraction system prompt.
type Prompts interface {
	FilterExtraction() string
}
