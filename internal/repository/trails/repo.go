// Package trails persists trail documents in hash form and serves
// filtered vector similarity search over the trails index.
package trails

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/Rachel0619/VanTrails/internal/db"
	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/domain/filters"
)

// store is the consumer interface for trail storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Config holds the trail repository settings.
type Config struct {
	KeyPrefix       string // e.g. "vantrails:"
	VectorDim       int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo implements trail persistence and retrieval over the vector store.
type Repo struct {
	store store
	cfg   Config
}

// Document is one trail ready for indexing.
type Document struct {
	ID     string
	Trail  domain.Trail
	Vector []float32
}

// upsertBatchSize bounds a single pipelined write.
const upsertBatchSize = 100

// New creates a trail repository.
func New(s store, cfg Config) *Repo {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "vantrails:"
	}
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the trails index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.indexName()

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(name).
		Prefix(r.keyPrefix()).
		Numeric("rating").
		Tag("difficulty").
		Numeric("time").
		Numeric("distance").
		Tag("region").
		Tag("season").
		Tag("dog_friendly").
		Tag("public_transit").
		Tag("camping").
		Text("description").
		VectorHNSW("vector", r.cfg.VectorDim, db.DistanceCosine, r.cfg.HNSWM, r.cfg.HNSWEFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Upsert writes trail documents in pipelined batches.
func (r *Repo) Upsert(ctx context.Context, docs []Document) error {
	for start := 0; start < len(docs); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		items := make([]db.HashSetItem, 0, end-start)
		for _, doc := range docs[start:end] {
			items = append(items, db.HashSetItem{
				Key:    r.docKey(doc.ID),
				Fields: trailToFields(doc.Trail, doc.Vector),
			})
		}

		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("upsert %d trails: %w", len(items), err)
		}
	}
	return nil
}

// Exists reports whether a trail document is already indexed.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.docKey(id))
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", id, err)
	}
	return ok, nil
}

// Get returns one trail by document ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Trail, error) {
	fields, err := r.store.HGetAll(ctx, r.docKey(id))
	if err != nil {
		return domain.Trail{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Trail{}, db.ErrKeyNotFound
	}
	return fieldsToTrail(fields), nil
}

// Count returns the number of indexed trails.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count trails: %w", err)
	}
	return n, nil
}

// SearchKNN runs a filtered K-nearest-neighbor search. An empty predicate
// searches the whole index. Results arrive ranked by descending similarity.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, pred filters.Predicate, k int,
) ([]domain.RankedResult, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Prefilter:    buildPrefilter(pred),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]domain.RankedResult, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, domain.RankedResult{
			Trail: fieldsToTrail(entry.Fields),
			Score: entry.Score,
		})
	}
	return results, nil
}

var returnFields = []string{
	"name", "rating", "difficulty", "time", "distance",
	"region", "season", "dog_friendly", "public_transit", "camping",
	"url", "description", "__vector_score",
}

func (r *Repo) keyPrefix() string {
	return r.cfg.KeyPrefix + "trails:"
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix() + id
}

func (r *Repo) indexName() string {
	return r.cfg.KeyPrefix + "trails:idx"
}

// --- Prefilter building ---

// buildPrefilter translates a compiled predicate into an FT.SEARCH pre-filter
// query string. Conditions are ANDed by whitespace. An empty predicate yields
// an empty string, which the store layer turns into a match-all query.
func buildPrefilter(pred filters.Predicate) string {
	if pred.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(pred))
	for _, cond := range pred {
		parts = append(parts, buildCondition(cond))
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filters.Condition) string {
	if cond.Value.Kind() == filters.Number {
		return buildNumericFilter(cond)
	}
	return buildTagFilter(cond.Field, cond.Value.String())
}

func buildNumericFilter(cond filters.Condition) string {
	v := cond.Value.Number()
	switch cond.Op {
	case filters.OpGte:
		return fmt.Sprintf("@%s:[%g +inf]", cond.Field, v)
	case filters.OpLte:
		return fmt.Sprintf("@%s:[-inf %g]", cond.Field, v)
	default:
		return fmt.Sprintf("@%s:[%g %g]", cond.Field, v, v)
	}
}

func buildTagFilter(field, value string) string {
	return fmt.Sprintf("@%s:{%s}", field, tagEscaper.Replace(value))
}

// tagEscaper escapes RediSearch TAG syntax characters in filter values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

// vectorToBytes serializes []float32 to the FLOAT32 little-endian blob form.
func vectorToBytes(v []float32) []byte {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}
