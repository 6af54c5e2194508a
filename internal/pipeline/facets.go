package pipeline

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"concertlog/internal/concert"
)

// Facets lists the selectable values for each table filter.
type Facets struct {
	Years      []int    `json:"years"`
	EventTypes []string `json:"eventTypes"`
	Artists    []string `json:"artists"`
}

// FacetsOf computes facets with the default normalizer.
func FacetsOf(records []concert.Record) Facets {
	return defaultPipeline.Facets(records)
}

// Facets collects the distinct years (newest first), normalized event
// types (sorted) and normalized artists (Italian collation) present in
// records. It always looks at the full list, never at a filtered view.
func (p *Pipeline) Facets(records []concert.Record) Facets {
	years := make(map[int]struct{})
	events := make(map[string]struct{})
	artists := make(map[string]struct{})
	for _, r := range records {
		years[r.Year] = struct{}{}
		if e := p.norm.Event(r.Event); e != "" {
			events[e] = struct{}{}
		}
		for _, a := range p.norm.Artists(r.Band) {
			artists[a] = struct{}{}
		}
	}

	f := Facets{
		Years:      keys(years),
		EventTypes: keys(events),
		Artists:    keys(artists),
	}
	slices.Sort(f.Years)
	slices.Reverse(f.Years)
	slices.Sort(f.EventTypes)
	collate.New(language.Italian).SortStrings(f.Artists)
	return f
}

func keys[K comparable](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
