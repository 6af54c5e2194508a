package concerts

import (
	"context"
	"fmt"

	"concertlog/internal/concert"
	"concertlog/internal/pipeline"
)

// ErrInvalidConcert indicates a draft failed validation.
var ErrInvalidConcert = concert.ErrInvalidRecord

// Store defines persistence operations for concerts.
type Store interface {
	ListConcerts(ctx context.Context) ([]concert.Record, error)
	GetConcert(ctx context.Context, id string) (concert.Record, error)
	CountConcerts(ctx context.Context) (int, error)
	CreateConcert(ctx context.Context, r concert.Record) (concert.Record, error)
	CreateConcerts(ctx context.Context, records []concert.Record) ([]concert.Record, error)
	UpdateConcert(ctx context.Context, r concert.Record) (concert.Record, error)
	DeleteConcert(ctx context.Context, id string) error
}

// View is one rendering of the concert table.
type View struct {
	Query    pipeline.Query   `json:"query"`
	Concerts []concert.Record `json:"concerts"`
	Matched  int              `json:"matched"`
	Total    int              `json:"total"`
	Facets   pipeline.Facets  `json:"facets"`
}

// Service coordinates concert-related operations.
type Service interface {
	List(ctx context.Context) ([]concert.Record, error)
	View(ctx context.Context, q pipeline.Query) (View, error)
	Facets(ctx context.Context) (pipeline.Facets, error)
	Stats(ctx context.Context, top int) (pipeline.Statistics, error)
	ArtistConcerts(ctx context.Context, artist string) ([]concert.Record, error)
	SuggestArtists(ctx context.Context, pattern string, limit int) ([]string, error)
	Get(ctx context.Context, id string) (concert.Record, error)
	Create(ctx context.Context, d concert.Draft, opts concert.WriteOptions) (concert.Record, error)
	Update(ctx context.Context, id string, patch concert.Draft, opts concert.WriteOptions) (concert.Record, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, records []concert.Record) (int, error)
}

type service struct {
	store    Store
	writer   *concert.Writer
	pipeline *pipeline.Pipeline
}

// New constructs a concerts Service. A nil normalizer uses the built-in
// alias table.
func New(store Store, norm *concert.Normalizer) Service {
	return &service{
		store:    store,
		writer:   concert.NewWriter(norm),
		pipeline: pipeline.New(norm),
	}
}

func (s *service) List(ctx context.Context) ([]concert.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListConcerts(ctx)
}

func (s *service) View(ctx context.Context, q pipeline.Query) (View, error) {
	all, err := s.List(ctx)
	if err != nil {
		return View{}, err
	}
	rows := s.pipeline.Apply(all, q)
	return View{
		Query:    q,
		Concerts: rows,
		Matched:  len(rows),
		Total:    len(all),
		Facets:   s.pipeline.Facets(all),
	}, nil
}

func (s *service) Facets(ctx context.Context) (pipeline.Facets, error) {
	all, err := s.List(ctx)
	if err != nil {
		return pipeline.Facets{}, err
	}
	return s.pipeline.Facets(all), nil
}

func (s *service) Stats(ctx context.Context, top int) (pipeline.Statistics, error) {
	all, err := s.List(ctx)
	if err != nil {
		return pipeline.Statistics{}, err
	}
	if top <= 0 {
		top = pipeline.DefaultTopArtists
	}
	return s.pipeline.Summarize(all, top), nil
}

func (s *service) ArtistConcerts(ctx context.Context, artist string) ([]concert.Record, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.pipeline.ArtistHistory(all, artist), nil
}

func (s *service) SuggestArtists(ctx context.Context, pattern string, limit int) ([]string, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.pipeline.SuggestArtists(all, pattern, limit), nil
}

func (s *service) Get(ctx context.Context, id string) (concert.Record, error) {
	if err := ctx.Err(); err != nil {
		return concert.Record{}, err
	}
	return s.store.GetConcert(ctx, id)
}

func (s *service) Create(ctx context.Context, d concert.Draft, opts concert.WriteOptions) (concert.Record, error) {
	if err := ctx.Err(); err != nil {
		return concert.Record{}, err
	}
	r, err := s.writer.Build(d, opts)
	if err != nil {
		return concert.Record{}, err
	}
	return s.store.CreateConcert(ctx, r)
}

func (s *service) Update(ctx context.Context, id string, patch concert.Draft, opts concert.WriteOptions) (concert.Record, error) {
	if err := ctx.Err(); err != nil {
		return concert.Record{}, err
	}
	current, err := s.store.GetConcert(ctx, id)
	if err != nil {
		return concert.Record{}, err
	}
	r, err := s.writer.Merge(current, patch, opts)
	if err != nil {
		return concert.Record{}, err
	}
	return s.store.UpdateConcert(ctx, r)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteConcert(ctx, id)
}

// Seed stores records only when the log is empty and reports how many were
// inserted. Records are re-derived but not reformatted.
func (s *service) Seed(ctx context.Context, records []concert.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.store.CountConcerts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(records) == 0 {
		return 0, nil
	}

	prepared := make([]concert.Record, 0, len(records))
	for i, r := range records {
		p, err := s.writer.Merge(concert.Record{}, concert.DraftOf(r), concert.WriteOptions{})
		if err != nil {
			return 0, fmt.Errorf("seed record %d (%s): %w", i, r.Band, err)
		}
		prepared = append(prepared, p)
	}

	stored, err := s.store.CreateConcerts(ctx, prepared)
	if err != nil {
		return 0, err
	}
	return len(stored), nil
}
