// Package seed bundles the concert log a fresh installation starts from.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"concertlog/internal/concert"
)

//go:embed initial.json
var initialJSON []byte

// entry is one row of a seed file. Dates may be ISO or the "14-giu-2017"
// form the spreadsheet export used.
type entry struct {
	Band  string  `json:"band"`
	Date  string  `json:"date"`
	City  string  `json:"city"`
	Event string  `json:"event"`
	Cost  float64 `json:"cost"`
}

// Records returns the bundled initial concerts.
func Records() ([]concert.Record, error) {
	var entries []entry
	if err := json.Unmarshal(initialJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode bundled seed: %w", err)
	}
	return toRecords(entries), nil
}

// Read decodes a seed file in the bundled format.
func Read(r io.Reader) ([]concert.Record, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return toRecords(entries), nil
}

// Load reads the seed file at path, or the bundled data when path is empty.
func Load(path string) ([]concert.Record, error) {
	if path == "" {
		return Records()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func toRecords(entries []entry) []concert.Record {
	out := make([]concert.Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, concert.Record{
			Band:  e.Band,
			Date:  concert.ParseItalianDate(e.Date),
			City:  e.City,
			Event: e.Event,
			Cost:  e.Cost,
		})
	}
	return out
}
