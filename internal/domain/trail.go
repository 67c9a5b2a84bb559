package domain

// Trail is one scraped Vancouver trail listing. Records are produced by the
// scraper/cleaner pipeline and are read-only everywhere else.
type Trail struct {
	Name          string
	Rating        float64 // 0–5, one decimal
	Region        string
	Difficulty    string // Easy | Intermediate | Difficult
	Time          float64 // hours
	Distance      float64 // km
	Season        string
	DogFriendly   bool
	PublicTransit bool
	Camping       bool
	URL           string
	Description   string
}

// RankedResult pairs a trail with its similarity score in [0,1].
// A result set is ordered by non-increasing score.
type RankedResult struct {
	Trail Trail
	Score float64
}
