package trails

import (
	"strconv"

	"github.com/Rachel0619/VanTrails/internal/domain"
)

// trailToFields flattens a trail and its vector into hash fields.
func trailToFields(t domain.Trail, vector []float32) map[string]string {
	return map[string]string{
		"name":           t.Name,
		"rating":         strconv.FormatFloat(t.Rating, 'g', -1, 64),
		"difficulty":     t.Difficulty,
		"time":           strconv.FormatFloat(t.Time, 'g', -1, 64),
		"distance":       strconv.FormatFloat(t.Distance, 'g', -1, 64),
		"region":         t.Region,
		"season":         t.Season,
		"dog_friendly":   strconv.FormatBool(t.DogFriendly),
		"public_transit": strconv.FormatBool(t.PublicTransit),
		"camping":        strconv.FormatBool(t.Camping),
		"url":            t.URL,
		"description":    t.Description,
		"vector":         string(vectorToBytes(vector)),
	}
}

// fieldsToTrail rebuilds a trail from hash fields. Unparseable numerics
// fall back to zero values.
func fieldsToTrail(fields map[string]string) domain.Trail {
	return domain.Trail{
		Name:          fields["name"],
		Rating:        parseFloat(fields["rating"]),
		Difficulty:    fields["difficulty"],
		Time:          parseFloat(fields["time"]),
		Distance:      parseFloat(fields["distance"]),
		Region:        fields["region"],
		Season:        fields["season"],
		DogFriendly:   fields["dog_friendly"] == "true",
		PublicTransit: fields["public_transit"] == "true",
		Camping:       fields["camping"] == "true",
		URL:           fields["url"],
		Description:   fields["description"],
	}
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
