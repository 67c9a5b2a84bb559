package ingest

import (
	"testing"

	"github.com/Rachel0619/VanTrails/internal/scraper"
)

func TestCleanRating(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"4.5", 4.5},
		{"4.6666666", 4.7},
		{"4.64", 4.6},
		{" 3 ", 3.0},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		if got := CleanRating(tt.raw); got != tt.want {
			t.Errorf("CleanRating(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCleanTime(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1.5 hours", 1.5},
		{"3 hours", 3},
		{"1 hour", 1},
		{"5 - 6 hours", 5},
		{"1.5 - 2 hours", 1.5},
		{"", 0},
		{"varies", 0},
	}
	for _, tt := range tests {
		if got := CleanTime(tt.raw); got != tt.want {
			t.Errorf("CleanTime(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCleanDistance(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"4km", 4},
		{"7.5km", 7.5},
		{"18 km", 18},
		{"", 0},
	}
	for _, tt := range tests {
		if got := CleanDistance(tt.raw); got != tt.want {
			t.Errorf("CleanDistance(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCleanTrail(t *testing.T) {
	raw := scraper.RawTrail{
		Name:          " Quarry Rock ",
		Rating:        "4.64",
		Region:        "North Shore",
		Difficulty:    "Easy",
		Time:          "1.5 - 2 hours",
		Distance:      "3.8km",
		Season:        "year-round",
		DogFriendly:   true,
		PublicTransit: true,
		URL:           "https://example.com/trails/quarry-rock/",
		Description:   "A short hike in Deep Cove. ",
	}

	got := CleanTrail(raw)
	if got.Name != "Quarry Rock" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Rating != 4.6 {
		t.Errorf("rating = %v", got.Rating)
	}
	if got.Time != 1.5 {
		t.Errorf("time = %v", got.Time)
	}
	if got.Distance != 3.8 {
		t.Errorf("distance = %v", got.Distance)
	}
	if !got.DogFriendly || !got.PublicTransit || got.Camping {
		t.Errorf("flags = %v/%v/%v", got.DogFriendly, got.PublicTransit, got.Camping)
	}
	if got.Description != "A short hike in Deep Cove." {
		t.Errorf("description = %q", got.Description)
	}
}
