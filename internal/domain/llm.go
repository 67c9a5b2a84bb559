package domain

import "context"

// CompletionOptions tunes a single chat completion call.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// StreamChunk is one fragment of a streamed completion. Err is non-nil only
// on the final chunk when the stream failed mid-flight.
type StreamChunk struct {
	Content string
	Err     error
}

// Completer runs blocking chat completions. The op label distinguishes
// callers in metrics and logs.
type Completer interface {
	Complete(ctx context.Context, op, system, user string, opts CompletionOptions) (string, error)
}

// StreamCompleter runs streaming chat completions. The returned channel is
// closed when the stream ends; cancelling ctx stops the producer.
type StreamCompleter interface {
	CompleteStream(ctx context.Context, op, system, user string, opts CompletionOptions) (<-chan StreamChunk, error)
}
