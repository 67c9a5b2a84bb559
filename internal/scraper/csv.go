package scraper

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

// csvHeader fixes the column order of the scraped-trails CSV. ReadCSV
// indexes columns by header name, so reordered files still load.
var csvHeader = []string{
	"name", "rating", "region", "difficulty", "time", "distance",
	"season", "dog_friendly", "public_transit", "camping", "url",
	"description",
}

// AppendCSV appends trails to path, writing the header first when the
// file is new or empty.
func AppendCSV(path string, trails []RawTrail) error {
	if len(trails) == 0 {
		return nil
	}
	info, err := os.Stat(path)
	writeHeader := errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, t := range trails {
		record := []string{
			t.Name, t.Rating, t.Region, t.Difficulty, t.Time,
			t.Distance, t.Season,
			strconv.FormatBool(t.DogFriendly),
			strconv.FormatBool(t.PublicTransit),
			strconv.FormatBool(t.Camping),
			t.URL, t.Description,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads every trail row from path.
func ReadCSV(path string) ([]RawTrail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	trails := make([]RawTrail, 0, len(rows)-1)
	for _, row := range rows[1:] {
		trails = append(trails, RawTrail{
			Name:          field(row, "name"),
			Rating:        field(row, "rating"),
			Region:        field(row, "region"),
			Difficulty:    field(row, "difficulty"),
			Time:          field(row, "time"),
			Distance:      field(row, "distance"),
			Season:        field(row, "season"),
			DogFriendly:   field(row, "dog_friendly") == "true",
			PublicTransit: field(row, "public_transit") == "true",
			Camping:       field(row, "camping") == "true",
			URL:           field(row, "url"),
			Description:   field(row, "description"),
		})
	}
	return trails, nil
}

// LoadExistingNames reads the name column from an existing CSV so a
// scrape run can skip trails it already has. A missing file yields an
// empty set.
func LoadExistingNames(path string) (map[string]struct{}, error) {
	trails, err := ReadCSV(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(trails))
	for _, t := range trails {
		if t.Name != "" {
			names[t.Name] = struct{}{}
		}
	}
	return names, nil
}
