// Package retrieval orchestrates one retrieval pass: parse the query into
// filters, compile them, embed the query, and run filtered vector search.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/domain/filters"
	"github.com/Rachel0619/VanTrails/internal/metrics"
)

// Config holds retrieval limits.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Service retrieves ranked trail candidates for a query.
type Service struct {
	parser Parser
	embed  Embedder
	repo   Repository
	cfg    Config
	logger *zap.Logger
}

// Retrieval is the outcome of one retrieval pass. Results are ranked by
// descending similarity; an empty slice is a normal outcome, not an error.
type Retrieval struct {
	Filters   filters.TrailFilters
	Predicate filters.Predicate
	Results   []domain.RankedResult
}

// New creates a retrieval service.
func New(parser Parser, embed Embedder, repo Repository, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 5
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 20
	}
	return &Service{parser: parser, embed: embed, repo: repo, cfg: cfg, logger: logger}
}

// Retrieve runs the full retrieval pass. Filter extraction degrades to an
// unfiltered similarity search on failure, and a blank query does the same
// (the parser yields no filters for it without a model call). Embedding or
// store failures surface as ErrRetrievalUnavailable.
func (s *Service) Retrieve(ctx context.Context, query string, limit int) (Retrieval, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	tf := s.parser.Parse(ctx, query)
	pred := filters.Compile(tf)

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.recordSearch(pred, "error")
		return Retrieval{}, fmt.Errorf("embed query: %w: %w", domain.ErrRetrievalUnavailable, err)
	}

	results, err := s.repo.SearchKNN(ctx, emb.Embedding, pred, limit)
	if err != nil {
		s.recordSearch(pred, "error")
		return Retrieval{}, fmt.Errorf("search trails: %w: %w", domain.ErrRetrievalUnavailable, err)
	}

	s.recordSearch(pred, "success")
	s.logger.Info("Retrieved trail candidates",
		zap.String("predicate", pred.String()),
		zap.Int("limit", limit),
		zap.Int("results", len(results)))

	return Retrieval{Filters: tf, Predicate: pred, Results: results}, nil
}

func (s *Service) recordSearch(pred filters.Predicate, status string) {
	filtered := "no"
	if !pred.IsEmpty() {
		filtered = "yes"
	}
	metrics.SearchRequestsTotal.WithLabelValues(filtered, status).Inc()
}
