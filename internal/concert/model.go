// Package concert holds the concert record model together with the rules that
// canonicalize artist and event names and derive stored fields at write time.
package concert

import "strings"

// Record represents one logged concert attendance.
type Record struct {
	ID      string  `json:"id"`
	Band    string  `json:"band"`    // Comma-separated artist names
	Date    string  `json:"date"`    // ISO YYYY-MM-DD
	City    string  `json:"city"`    // City, optionally "City, Venue"
	Event   string  `json:"event"`   // Free text label
	Artists int     `json:"artists"` // Non-empty entries in Band, derived at write time
	Cost    float64 `json:"cost"`    // 0 means a free event
	Year    int     `json:"year"`    // Calendar year of Date, derived at write time
}

// Draft is a partial record. It is what a form submits, what an update
// patches and what the autofill extractor returns; nil fields are absent.
type Draft struct {
	Band  *string  `json:"band,omitempty"`
	Date  *string  `json:"date,omitempty"`
	City  *string  `json:"city,omitempty"`
	Event *string  `json:"event,omitempty"`
	Cost  *float64 `json:"cost,omitempty"`
}

// Overlay returns d with every non-empty field of src copied over it.
// Empty strings in src never replace a value, which matches how an
// extracted draft is merged into a form the user is still editing.
func (d Draft) Overlay(src Draft) Draft {
	out := d
	if nonEmpty(src.Band) {
		out.Band = src.Band
	}
	if nonEmpty(src.Date) {
		out.Date = src.Date
	}
	if nonEmpty(src.City) {
		out.City = src.City
	}
	if nonEmpty(src.Event) {
		out.Event = src.Event
	}
	if src.Cost != nil {
		out.Cost = src.Cost
	}
	return out
}

// IsEmpty reports whether no field is set.
func (d Draft) IsEmpty() bool {
	return d.Band == nil && d.Date == nil && d.City == nil && d.Event == nil && d.Cost == nil
}

// DraftOf converts a full record into a draft with every field set.
func DraftOf(r Record) Draft {
	band, date, city, event, cost := r.Band, r.Date, r.City, r.Event, r.Cost
	return Draft{Band: &band, Date: &date, City: &city, Event: &event, Cost: &cost}
}

// SplitBand splits a band field on commas and trims each entry. Empty
// entries are kept so callers decide how to treat them.
func SplitBand(band string) []string {
	parts := strings.Split(band, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// CountArtists returns the number of non-empty comma-separated entries in band.
func CountArtists(band string) int {
	n := 0
	for _, p := range SplitBand(band) {
		if p != "" {
			n++
		}
	}
	return n
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
