package pipeline

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"concertlog/internal/concert"
)

// SuggestArtists returns up to limit known artists that fuzzily match
// pattern, best match first. An empty pattern lists artists in facet order.
func (p *Pipeline) SuggestArtists(records []concert.Record, pattern string, limit int) []string {
	names := p.Facets(records).Artists
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return head(names, limit)
	}

	matches := fuzzy.Find(pattern, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return head(out, limit)
}

func head(s []string, n int) []string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
