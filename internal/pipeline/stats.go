package pipeline

import (
	"math"
	"slices"

	"concertlog/internal/concert"
)

// DefaultTopArtists is how many artists Summarize ranks.
const DefaultTopArtists = 5

// YearSpend is one bar of the spend-per-year chart.
type YearSpend struct {
	Year  int     `json:"year"`
	Spent float64 `json:"spent"`
	Count int     `json:"count"`
}

// ArtistCount is one row of the top artists ranking.
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// Statistics summarizes a concert history.
type Statistics struct {
	TotalSpent        float64       `json:"totalSpent"`
	TotalEvents       int           `json:"totalEvents"`
	AverageCost       float64       `json:"averageCost"`
	UniqueArtistCount int           `json:"uniqueArtistCount"`
	SpendByYear       []YearSpend   `json:"spendByYear"`
	TopArtists        []ArtistCount `json:"topArtists"`
}

// Summarize computes statistics with the default normalizer.
func Summarize(records []concert.Record) Statistics {
	return defaultPipeline.Summarize(records, DefaultTopArtists)
}

// TopArtists ranks artists with the default normalizer.
func TopArtists(records []concert.Record, n int) []ArtistCount {
	return defaultPipeline.TopArtists(records, n)
}

// ArtistHistory lists concerts featuring artist with the default normalizer.
func ArtistHistory(records []concert.Record, artist string) []concert.Record {
	return defaultPipeline.ArtistHistory(records, artist)
}

// Summarize aggregates records, ranking the top n artists. Amounts are exact
// sums; see Rounded for display. The average is 0 for an empty history.
func (p *Pipeline) Summarize(records []concert.Record, top int) Statistics {
	st := Statistics{
		TotalEvents: len(records),
		SpendByYear: []YearSpend{},
	}

	byYear := make(map[int]*YearSpend)
	for _, r := range records {
		st.TotalSpent += r.Cost
		ys, ok := byYear[r.Year]
		if !ok {
			ys = &YearSpend{Year: r.Year}
			byYear[r.Year] = ys
		}
		ys.Spent += r.Cost
		ys.Count++
	}
	for _, ys := range byYear {
		st.SpendByYear = append(st.SpendByYear, *ys)
	}
	slices.SortFunc(st.SpendByYear, func(a, b YearSpend) int { return a.Year - b.Year })

	if st.TotalEvents > 0 {
		st.AverageCost = st.TotalSpent / float64(st.TotalEvents)
	}

	counts := p.countArtists(records)
	st.UniqueArtistCount = len(counts)
	st.TopArtists = truncate(counts, top)
	return st
}

// TopArtists returns the n most frequent normalized artists, most frequent
// first. Ties keep the order in which artists were first encountered.
func (p *Pipeline) TopArtists(records []concert.Record, n int) []ArtistCount {
	return truncate(p.countArtists(records), n)
}

// countArtists tallies every non-empty normalized artist occurrence and
// returns the tallies sorted by count, first-seen order breaking ties.
func (p *Pipeline) countArtists(records []concert.Record) []ArtistCount {
	index := make(map[string]int)
	var counts []ArtistCount
	for _, r := range records {
		for _, a := range p.norm.Artists(r.Band) {
			i, ok := index[a]
			if !ok {
				i = len(counts)
				index[a] = i
				counts = append(counts, ArtistCount{Artist: a})
			}
			counts[i].Count++
		}
	}
	slices.SortStableFunc(counts, func(a, b ArtistCount) int { return b.Count - a.Count })
	return counts
}

func truncate(counts []ArtistCount, n int) []ArtistCount {
	if n < 0 {
		n = 0
	}
	if len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		return []ArtistCount{}
	}
	return counts
}

// ArtistHistory returns the concerts whose band lists artist after
// normalization, newest first.
func (p *Pipeline) ArtistHistory(records []concert.Record, artist string) []concert.Record {
	name := p.norm.Artist(artist)
	if name == "" || name == All {
		return []concert.Record{}
	}
	return p.Apply(records, Query{Artist: name, Sort: SortDate, Order: Desc})
}

// Rounded returns a copy with every amount rounded to cents.
func (st Statistics) Rounded() Statistics {
	out := st
	out.TotalSpent = cents(st.TotalSpent)
	out.AverageCost = cents(st.AverageCost)
	out.SpendByYear = make([]YearSpend, len(st.SpendByYear))
	for i, ys := range st.SpendByYear {
		ys.Spent = cents(ys.Spent)
		out.SpendByYear[i] = ys
	}
	return out
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
