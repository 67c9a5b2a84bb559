// Package queryparser extracts structured trail filters from a free-form
// query via a constrained LLM completion. Parsing is best-effort: any
// failure degrades to the empty filter set so retrieval always proceeds.
package queryparser

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/domain/filters"
)

const opParseFilters = "parse_filters"

// Config tunes the filter-extraction completion.
type Config struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Service turns user queries into validated trail filters.
type Service struct {
	llm     Completer
	prompts Prompts
	cfg     Config
	logger  *zap.Logger
}

// New creates a query parser service.
func New(llm Completer, prompts Prompts, cfg Config, logger *zap.Logger) *Service {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Service{llm: llm, prompts: prompts, cfg: cfg, logger: logger}
}

// Parse extracts filters from a query. Never returns an error: a blank
// query, a provider failure, or malformed model output all yield the empty
// filter set, and retrieval proceeds unfiltered.
func (s *Service) Parse(ctx context.Context, query string) filters.TrailFilters {
	query = strings.TrimSpace(query)
	if query == "" {
		return filters.None()
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	raw, err := s.llm.Complete(ctx, opParseFilters, s.prompts.FilterExtraction(), query,
		domain.CompletionOptions{Temperature: s.cfg.Temperature, MaxTokens: s.cfg.MaxTokens})
	if err != nil {
		s.logger.Warn("Filter extraction failed, proceeding unfiltered",
			zap.String("query", query), zap.Error(err))
		return filters.None()
	}

	obj := extractJSONObject(raw)
	if obj == "" {
		s.logger.Warn("No JSON object in filter extraction output",
			zap.String("query", query), zap.String("output", truncate(raw, 200)))
		return filters.None()
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		s.logger.Warn("Malformed JSON in filter extraction output",
			zap.String("query", query), zap.Error(err))
		return filters.None()
	}

	tf, dropped := filters.FromMap(m)
	if len(dropped) > 0 {
		s.logger.Info("Dropped unrecognized or invalid filter keys",
			zap.String("query", query), zap.Strings("dropped", dropped))
	}

	s.logger.Debug("Extracted trail filters",
		zap.String("query", query), zap.Int("filters", tf.Len()))

	return tf
}

// extractJSONObject returns the first balanced top-level JSON object in s,
// tolerating prose or code fences around it. Brace counting ignores braces
// inside string literals.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
