// Package prompt renders the LLM prompts from embedded templates, with an
// optional on-disk override directory for tuning without a rebuild.
package prompt

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/domain/filters"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const (
	filterExtractionTmpl     = "filter_extraction.tmpl"
	recommendationSystemTmpl = "recommendation_system.tmpl"
	recommendationUserTmpl   = "recommendation_user.tmpl"
)

// Templates renders prompt text. A non-empty override dir takes precedence
// over the embedded defaults per file.
type Templates struct {
	filterExtraction     string
	recommendationSystem string
	recommendationUser   *template.Template
}

// New loads the prompt templates, applying overrides from dir when present.
func New(dir string) (*Templates, error) {
	feText, err := load(dir, filterExtractionTmpl)
	if err != nil {
		return nil, err
	}
	fe, err := renderFilterExtraction(feText)
	if err != nil {
		return nil, err
	}

	rs, err := load(dir, recommendationSystemTmpl)
	if err != nil {
		return nil, err
	}

	ruText, err := load(dir, recommendationUserTmpl)
	if err != nil {
		return nil, err
	}
	ru, err := template.New(recommendationUserTmpl).Parse(ruText)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", recommendationUserTmpl, err)
	}

	return &Templates{
		filterExtraction:     fe,
		recommendationSystem: strings.TrimSpace(rs),
		recommendationUser:   ru,
	}, nil
}

// FilterExtraction returns the system prompt for the filter parser. The
// allowed-key list is generated from the filter schema, so prompt and
// validation can never drift apart.
func (t *Templates) FilterExtraction() string {
	return t.filterExtraction
}

// RecommendationSystem returns the hiking-guide persona prompt.
func (t *Templates) RecommendationSystem() string {
	return t.recommendationSystem
}

// RecommendationUser renders the user message carrying the hiker's query and
// the retrieved trail context.
func (t *Templates) RecommendationUser(query string, results []domain.RankedResult) (string, error) {
	var sb strings.Builder
	err := t.recommendationUser.Execute(&sb, struct {
		Query   string
		Results []domain.RankedResult
	}{Query: query, Results: results})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", recommendationUserTmpl, err)
	}
	return sb.String(), nil
}

func load(dir, name string) (string, error) {
	if dir != "" {
		path := filepath.Join(dir, name)
		if data, err := os.ReadFile(filepath.Clean(path)); err == nil {
			return string(data), nil
		}
	}
	data, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("read embedded template %s: %w", name, err)
	}
	return string(data), nil
}

func renderFilterExtraction(text string) (string, error) {
	tmpl, err := template.New(filterExtractionTmpl).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filterExtractionTmpl, err)
	}

	type keyDoc struct {
		Name string
		Doc  string
	}
	keys := make([]keyDoc, 0, len(filters.Catalog()))
	for _, k := range filters.Catalog() {
		keys = append(keys, keyDoc{Name: k.Name, Doc: describeKey(k)})
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, struct{ Keys []keyDoc }{Keys: keys}); err != nil {
		return "", fmt.Errorf("render %s: %w", filterExtractionTmpl, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func describeKey(k filters.Key) string {
	switch k.Kind {
	case filters.KindNumber:
		unit := ""
		switch k.Field {
		case "time":
			unit = " hours"
		case "distance":
			unit = " km"
		}
		bound := "exactly"
		switch k.Bound {
		case filters.Lower:
			bound = "at least"
		case filters.Upper:
			bound = "at most"
		}
		return fmt.Sprintf("number, %s this %s%s, between %g and %g", bound, k.Field, unit, k.Min, k.Max)
	case filters.KindEnum:
		return "one of " + strings.Join(k.Choices, ", ")
	case filters.KindBool:
		return "boolean"
	default:
		return "free-form text, e.g. a region or season name"
	}
}
