package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rachel0619/VanTrails/internal/domain"
	"github.com/Rachel0619/VanTrails/internal/scraper"
)

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// CleanRating parses a scraped rating and rounds it to one decimal.
// Blank or unparseable values become 0.
func CleanRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return math.Round(v*10) / 10
}

// CleanTime converts a display duration like "1.5 hours" to float
// hours. Ranges like "5 - 6 hours" take the lower bound.
func CleanTime(raw string) float64 {
	s := strings.ToLower(raw)
	if before, _, ok := strings.Cut(s, "-"); ok {
		s = before
	}
	return firstNumber(s)
}

// CleanDistance converts a display distance like "7.5km" to float km.
func CleanDistance(raw string) float64 {
	return firstNumber(strings.ToLower(raw))
}

func firstNumber(s string) float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// CleanTrail normalizes a scraped listing into a Trail record.
func CleanTrail(raw scraper.RawTrail) domain.Trail {
	return domain.Trail{
		Name:          strings.TrimSpace(raw.Name),
		Rating:        CleanRating(raw.Rating),
		Region:        strings.TrimSpace(raw.Region),
		Difficulty:    strings.TrimSpace(raw.Difficulty),
		Time:          CleanTime(raw.Time),
		Distance:      CleanDistance(raw.Distance),
		Season:        strings.TrimSpace(raw.Season),
		DogFriendly:   raw.DogFriendly,
		PublicTransit: raw.PublicTransit,
		Camping:       raw.Camping,
		URL:           strings.TrimSpace(raw.URL),
		Description:   strings.TrimSpace(raw.Description),
	}
}
