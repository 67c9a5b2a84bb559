// Package ingest loads scraped trail CSVs into the vector store.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/repository/trails"
	"github.com/Rachel0619/VanTrails/internal/scraper"
)

// Store is the slice of trail persistence the ingester needs.
type Store interface {
	EnsureIndex(ctx context.Context) error
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, docs []trails.Document) error
	Count(ctx context.Context) (int, error)
}

// Ingester reads trail rows, embeds their descriptions, and upserts
// the resulting documents. Re-running over the same CSV is a no-op for
// rows already present.
type Ingester struct {
	store    Store
	embedder domain.Embedder
	logger   *zap.Logger
}

// Result summarizes one ingestion run.
type Result struct {
	Ingested int // documents written this run
	Skipped  int // rows already present
	Total    int // documents in the store after the run
}

func New(store Store, embedder domain.Embedder, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{store: store, embedder: embedder, logger: logger}
}

// Run ingests every new trail from the CSV at path.
func (i *Ingester) Run(ctx context.Context, path string) (Result, error) {
	var res Result

	raw, err := scraper.ReadCSV(path)
	if err != nil {
		return res, fmt.Errorf("load trails: %w", err)
	}
	i.logger.Info("loaded trail rows", zap.String("path", path), zap.Int("rows", len(raw)))

	if err := i.store.EnsureIndex(ctx); err != nil {
		return res, fmt.Errorf("ensure index: %w", err)
	}

	var docs []trails.Document
	for _, r := range raw {
		trail := CleanTrail(r)
		if trail.Name == "" || trail.URL == "" {
			i.logger.Warn("dropping row without name or url", zap.String("name", trail.Name))
			continue
		}
		id := DocumentID(trail.Name, trail.URL)

		present, err := i.store.Exists(ctx, id)
		if err != nil {
			return res, fmt.Errorf("check %s: %w", trail.Name, err)
		}
		if present {
			res.Skipped++
			continue
		}

		emb, err := i.embedder.Embed(ctx, embeddingText(trail))
		if err != nil {
			return res, fmt.Errorf("embed %s: %w", trail.Name, err)
		}
		docs = append(docs, trails.Document{ID: id, Trail: trail, Vector: emb.Embedding})
	}

	if len(docs) > 0 {
		if err := i.store.Upsert(ctx, docs); err != nil {
			return res, fmt.Errorf("upsert: %w", err)
		}
	}
	res.Ingested = len(docs)

	total, err := i.store.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count: %w", err)
	}
	res.Total = total

	i.logger.Info("ingestion complete",
		zap.Int("ingested", res.Ingested),
		zap.Int("skipped", res.Skipped),
		zap.Int("total", res.Total))
	return res, nil
}

// DocumentID derives a stable document ID from a trail's identity.
func DocumentID(name, url string) string {
	sum := sha256.Sum256([]byte(name + "|" + url))
	return hex.EncodeToString(sum[:])
}

// embeddingText picks the text to vectorize. Trails scraped without a
// description fall back to the name so they still get a vector.
func embeddingText(t domain.Trail) string {
	if t.Description != "" {
		return t.Description
	}
	return t.Name
}
