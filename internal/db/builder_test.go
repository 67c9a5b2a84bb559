package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder(t *testing.T) {
	def, err := NewIndex("vantrails:trails:idx").
		Prefix("vantrails:trails:").
		Numeric("rating").
		Tag("difficulty").
		Text("description").
		VectorHNSW("vector", 1536, DistanceCosine, 32, 400).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(def.Fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(def.Fields))
	}
	if def.Fields[3].VectorDim != 1536 {
		t.Errorf("vector dim = %d, want 1536", def.Fields[3].VectorDim)
	}
	if !strings.Contains(def.String(), "VECTOR HNSW") {
		t.Errorf("String() missing vector clause: %s", def.String())
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*IndexDefinition, error)
	}{
		{"empty name", func() (*IndexDefinition, error) {
			return NewIndex("").Numeric("rating").Build()
		}},
		{"bad identifier", func() (*IndexDefinition, error) {
			return NewIndex("trails idx").Numeric("rating").Build()
		}},
		{"no fields", func() (*IndexDefinition, error) {
			return NewIndex("idx").Build()
		}},
		{"duplicate field", func() (*IndexDefinition, error) {
			return NewIndex("idx").Numeric("rating").Tag("rating").Build()
		}},
		{"vector without dim", func() (*IndexDefinition, error) {
			return NewIndex("idx").VectorHNSW("vector", 0, DistanceCosine, 0, 0).Build()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
