package concert

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"concertlog/internal/validator"
)

// ErrInvalidRecord wraps every validation failure returned by a Writer.
var ErrInvalidRecord = errors.New("invalid concert record")

// DefaultEvent labels records created without an event.
const DefaultEvent = "Concerto"

// ppmpLabel replaces an event typed as the bare festival name.
const ppmpLabel = "PPMP - Pop Punk Mosh Party"

// WriteOptions tune how a Writer prepares a record.
type WriteOptions struct {
	// AutoFormat title-cases band, city and event before saving.
	AutoFormat bool
}

// DefaultWriteOptions is what a form submit uses unless told otherwise.
var DefaultWriteOptions = WriteOptions{AutoFormat: true}

// Writer turns drafts into records ready to persist: it formats free text,
// derives Artists and Year and validates the result.
type Writer struct {
	norm *Normalizer
}

// NewWriter returns a Writer that formats with n. A nil n uses the default table.
func NewWriter(n *Normalizer) *Writer {
	if n == nil {
		n = DefaultNormalizer()
	}
	return &Writer{norm: n}
}

// Build prepares a new record from d. A missing event becomes DefaultEvent
// and a missing cost becomes 0. The returned record has no ID.
func (w *Writer) Build(d Draft, opts WriteOptions) (Record, error) {
	r := Record{Event: DefaultEvent}
	if d.Event != nil && strings.TrimSpace(*d.Event) != "" {
		r.Event = *d.Event
	}
	if d.Band != nil {
		r.Band = *d.Band
	}
	if d.Date != nil {
		r.Date = *d.Date
	}
	if d.City != nil {
		r.City = *d.City
	}
	if d.Cost != nil {
		r.Cost = *d.Cost
	}
	return w.finish(r, opts)
}

// Merge applies patch onto base, leaving nil fields untouched, and
// re-derives the stored fields. base.ID is preserved.
func (w *Writer) Merge(base Record, patch Draft, opts WriteOptions) (Record, error) {
	r := base
	if patch.Band != nil {
		r.Band = *patch.Band
	}
	if patch.Date != nil {
		r.Date = *patch.Date
	}
	if patch.City != nil {
		r.City = *patch.City
	}
	if patch.Event != nil {
		r.Event = *patch.Event
	}
	if patch.Cost != nil {
		r.Cost = *patch.Cost
	}
	return w.finish(r, opts)
}

func (w *Writer) finish(r Record, opts WriteOptions) (Record, error) {
	r.Band = strings.TrimSpace(r.Band)
	r.Date = strings.TrimSpace(r.Date)
	r.City = strings.TrimSpace(r.City)
	r.Event = strings.TrimSpace(r.Event)

	if opts.AutoFormat {
		r.Band = w.norm.FormatList(r.Band)
		r.City = w.norm.FormatWords(r.City)
		r.Event = w.norm.FormatWords(r.Event)
	}

	r.Artists = CountArtists(r.Band)
	if r.Artists == 0 {
		r.Artists = 1
	}

	if lower := strings.ToLower(r.Event); lower == "ppmp" || lower == "pop punk mosh party" {
		r.Event = ppmpLabel
	}

	v := validator.New()
	v.Check(CountArtists(r.Band) > 0, "band", "must be provided")
	v.Check(r.City != "", "city", "must be provided")
	t, ok := ParseDate(r.Date)
	v.Check(r.Date != "", "date", "must be provided")
	v.Check(r.Date == "" || ok, "date", "must be a YYYY-MM-DD date")
	v.Check(!math.IsNaN(r.Cost) && !math.IsInf(r.Cost, 0), "cost", "must be a number")
	v.Check(r.Cost >= 0, "cost", "must not be negative")
	if err := v.Err(); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	r.Date = t.Format(DateLayout)
	r.Year = t.Year()
	r.Cost = math.Round(r.Cost*100) / 100
	return r, nil
}
