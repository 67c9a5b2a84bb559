package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/domain/filters"
)

type mockParser struct {
	filters filters.TrailFilters
}

func (m *mockParser) Parse(ctx context.Context, query string) filters.TrailFilters {
	return m.filters
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

type mockRepo struct {
	results  []domain.RankedResult
	err      error
	gotPred  filters.Predicate
	gotLimit int
}

func (m *mockRepo) SearchKNN(
	ctx context.Context, vector []float32, pred filters.Predicate, k int,
) ([]domain.RankedResult, error) {
	m.gotPred = pred
	m.gotLimit = k
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func easyFilters(t *testing.T) filters.TrailFilters {
	t.Helper()
	tf, dropped := filters.FromMap(map[string]any{"difficulty": "Easy"})
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped keys: %v", dropped)
	}
	return tf
}

func newTestService(parser Parser, embed Embedder, repo Repository) *Service {
	return New(parser, embed, repo, Config{DefaultLimit: 5, MaxLimit: 20}, zap.NewNop())
}

func TestRetrieve_FilteredSearch(t *testing.T) {
	repo := &mockRepo{results: []domain.RankedResult{
		{Trail: domain.Trail{Name: "Quarry Rock"}, Score: 0.9},
		{Trail: domain.Trail{Name: "Lynn Loop"}, Score: 0.7},
	}}
	svc := newTestService(
		&mockParser{filters: easyFilters(t)},
		&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}},
		repo,
	)

	ret, err := svc.Retrieve(context.Background(), "an easy hike", 0)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if repo.gotPred.String() != "difficulty == Easy" {
		t.Errorf("predicate = %q", repo.gotPred.String())
	}
	if repo.gotLimit != 5 {
		t.Errorf("limit = %d, want default 5", repo.gotLimit)
	}
	if len(ret.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(ret.Results))
	}
	if ret.Results[0].Score < ret.Results[1].Score {
		t.Error("result order must be preserved (descending score)")
	}
}

func TestRetrieve_EmptyFiltersSearchUnfiltered(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(
		&mockParser{filters: filters.None()},
		&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}},
		repo,
	)

	ret, err := svc.Retrieve(context.Background(), "surprise me", 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !repo.gotPred.IsEmpty() {
		t.Errorf("expected empty predicate, got %q", repo.gotPred.String())
	}
	if len(ret.Results) != 0 {
		t.Errorf("expected no results, got %d", len(ret.Results))
	}
}

func TestRetrieve_LimitCapped(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(
		&mockParser{filters: filters.None()},
		&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}},
		repo,
	)

	if _, err := svc.Retrieve(context.Background(), "hikes", 500); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if repo.gotLimit != 20 {
		t.Errorf("limit = %d, want cap 20", repo.gotLimit)
	}
}

func TestRetrieve_EmptyQueryUnfiltered(t *testing.T) {
	repo := &mockRepo{results: []domain.RankedResult{
		{Trail: domain.Trail{Name: "Quarry Rock"}, Score: 0.9},
	}}
	svc := newTestService(
		&mockParser{filters: filters.None()},
		&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}},
		repo,
	)

	ret, err := svc.Retrieve(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !repo.gotPred.IsEmpty() {
		t.Errorf("predicate = %q, want unfiltered", repo.gotPred.String())
	}
	if len(ret.Results) != 1 {
		t.Errorf("results = %d, want 1", len(ret.Results))
	}
}

func TestRetrieve_EmbedderDown(t *testing.T) {
	svc := newTestService(
		&mockParser{filters: filters.None()},
		&mockEmbedder{err: errors.New("provider down")},
		&mockRepo{},
	)

	_, err := svc.Retrieve(context.Background(), "an easy hike", 5)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("error = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestRetrieve_StoreDown(t *testing.T) {
	svc := newTestService(
		&mockParser{filters: easyFilters(t)},
		&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}},
		&mockRepo{err: errors.New("connection refused")},
	)

	_, err := svc.Retrieve(context.Background(), "an easy hike", 5)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("error = %v, want ErrRetrievalUnavailable", err)
	}
}
