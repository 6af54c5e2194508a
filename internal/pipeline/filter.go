// Package pipeline derives views from a list of concert records: filtered and
// sorted tables, the facet values that drive filter selectors, and the
// statistics summary. Every function is pure; inputs are never modified.
package pipeline

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"concertlog/internal/concert"
)

// All disables a filter.
const All = "all"

// Price buckets.
const (
	PriceFree    = "free"
	PriceUnder30 = "under-30"
	Price30To60  = "30-60"
	PriceOver60  = "over-60"
)

// SortField selects the sort key.
type SortField string

const (
	SortDate SortField = "date"
	SortCost SortField = "cost"
	SortBand SortField = "band"
)

// SortOrder selects the sort direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query is the full set of table selections. Empty strings and All disable
// the corresponding filter.
type Query struct {
	Search    string    `json:"q,omitempty"`
	Year      string    `json:"year,omitempty"`
	EventType string    `json:"type,omitempty"`
	Price     string    `json:"price,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Sort      SortField `json:"sort,omitempty"`
	Order     SortOrder `json:"order,omitempty"`
}

// DefaultQuery shows every record, newest first.
var DefaultQuery = Query{Sort: SortDate, Order: Desc}

// Toggle returns the query after the user clicks a column header: the same
// field flips direction, a new field starts descending.
func (q Query) Toggle(field SortField) Query {
	if q.sortField() == field {
		if q.sortOrder() == Asc {
			q.Order = Desc
		} else {
			q.Order = Asc
		}
		return q
	}
	q.Sort = field
	q.Order = Desc
	return q
}

func (q Query) sortField() SortField {
	switch q.Sort {
	case SortCost, SortBand:
		return q.Sort
	default:
		return SortDate
	}
}

func (q Query) sortOrder() SortOrder {
	if q.Order == Asc {
		return Asc
	}
	return Desc
}

func active(sel string) bool {
	return sel != "" && sel != All
}

// Pipeline applies queries using one Normalizer.
type Pipeline struct {
	norm *concert.Normalizer
}

// New returns a Pipeline. A nil n uses the default normalizer.
func New(n *concert.Normalizer) *Pipeline {
	if n == nil {
		n = concert.DefaultNormalizer()
	}
	return &Pipeline{norm: n}
}

var defaultPipeline = New(nil)

// Apply filters and sorts records with the default normalizer.
func Apply(records []concert.Record, q Query) []concert.Record {
	return defaultPipeline.Apply(records, q)
}

// Apply returns the records matching every active filter in q, sorted by
// q's field and direction. The sort is stable, so equal keys keep their
// input order.
func (p *Pipeline) Apply(records []concert.Record, q Query) []concert.Record {
	out := make([]concert.Record, 0, len(records))
	search := strings.ToLower(q.Search)
	for _, r := range records {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if active(q.Year) && strconv.Itoa(r.Year) != strings.TrimSpace(q.Year) {
			continue
		}
		if active(q.EventType) && p.norm.Event(r.Event) != q.EventType {
			continue
		}
		if active(q.Price) && !inBucket(r.Cost, q.Price) {
			continue
		}
		if active(q.Artist) && !p.hasArtist(r, q.Artist) {
			continue
		}
		out = append(out, r)
	}

	cmp := compareFunc(q.sortField())
	if q.sortOrder() == Desc {
		asc := cmp
		cmp = func(a, b concert.Record) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func matchesSearch(r concert.Record, lowerSearch string) bool {
	return strings.Contains(strings.ToLower(r.Band), lowerSearch) ||
		strings.Contains(strings.ToLower(r.City), lowerSearch) ||
		strings.Contains(strings.ToLower(r.Event), lowerSearch)
}

// inBucket reports whether cost falls in bucket. Unknown buckets match
// everything.
func inBucket(cost float64, bucket string) bool {
	switch bucket {
	case PriceFree:
		return cost == 0
	case PriceUnder30:
		return cost > 0 && cost < 30
	case Price30To60:
		return cost >= 30 && cost <= 60
	case PriceOver60:
		return cost > 60
	default:
		return true
	}
}

func (p *Pipeline) hasArtist(r concert.Record, artist string) bool {
	for _, part := range concert.SplitBand(r.Band) {
		if p.norm.Artist(part) == artist {
			return true
		}
	}
	return false
}

func compareFunc(field SortField) func(a, b concert.Record) int {
	switch field {
	case SortCost:
		return func(a, b concert.Record) int { return compareFloat(a.Cost, b.Cost) }
	case SortBand:
		c := collate.New(language.Italian, collate.IgnoreCase)
		return func(a, b concert.Record) int { return c.CompareString(a.Band, b.Band) }
	default:
		return func(a, b concert.Record) int { return compareTime(dayOf(a.Date), dayOf(b.Date)) }
	}
}

// dayOf returns the parsed calendar day; unknown dates are the zero time.
func dayOf(date string) time.Time {
	t, _ := concert.ParseDate(date)
	return t
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
