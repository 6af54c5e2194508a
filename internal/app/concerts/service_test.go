package concerts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concertlog/internal/concert"
	"concertlog/internal/pipeline"
	"concertlog/internal/store"
)

func strp(s string) *string     { return &s }
func costp(f float64) *float64 { return &f }

func seedRecords() []concert.Record {
	return []concert.Record{
		{Band: "Simple Plan", Date: "2017-06-14", City: "Padova, Gran Teatro Geox", Event: "Concerto", Cost: 30},
		{Band: "Salmo, Linea77", Date: "2019-06-28", City: "Bologna, Sonic Park", Event: "Concerto", Cost: 48.59},
		{Band: "simple plan, Offspring", Date: "2023-06-03", City: "Rimini, Beky Bay", Event: "Slamdunk", Cost: 74.49},
	}
}

func newSeeded(t *testing.T) (Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := New(mem, nil)
	n, err := svc.Seed(context.Background(), seedRecords())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return svc, mem
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	svc, _ := newSeeded(t)

	n, err := svc.Seed(context.Background(), seedRecords())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 2, all[0].Artists)
	assert.Equal(t, 2023, all[0].Year)
	assert.Equal(t, "simple plan, Offspring", all[0].Band)
}

func TestSeedKeepsTextButCanonicalizesPPMP(t *testing.T) {
	svc := New(store.NewMemory(), nil)

	_, err := svc.Seed(context.Background(), []concert.Record{
		{Band: "particles", Date: "2022-06-24", City: "parma, splinter club", Event: "ppmp", Cost: 10},
		{Band: "bnkr 44", Date: "2023-04-01", City: "firenze", Event: "blaster", Cost: 25},
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	tests := []struct {
		band, city, event string
	}{
		{"bnkr 44", "firenze", "blaster"},
		{"particles", "parma, splinter club", "PPMP - Pop Punk Mosh Party"},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.band, all[i].Band)
		assert.Equal(t, tc.city, all[i].City)
		assert.Equal(t, tc.event, all[i].Event)
	}
}

func TestSeedRejectsInvalidRecords(t *testing.T) {
	svc := New(store.NewMemory(), nil)

	_, err := svc.Seed(context.Background(), []concert.Record{{Band: "X", Date: "14-giu-2017", City: "Y"}})
	assert.ErrorIs(t, err, ErrInvalidConcert)
}

func TestCreateFormatsAndDerives(t *testing.T) {
	svc := New(store.NewMemory(), nil)

	got, err := svc.Create(context.Background(), concert.Draft{
		Band: strp("green day, nothing but thieves"),
		Date: strp("2024-06-16"),
		City: strp("milano, ippodromo la maura"),
		Cost: costp(85.9),
	}, concert.DefaultWriteOptions)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Green Day, Nothing But Thieves", got.Band)
	assert.Equal(t, "Milano, Ippodromo La Maura", got.City)
	assert.Equal(t, "Concerto", got.Event)
	assert.Equal(t, 2, got.Artists)
	assert.Equal(t, 2024, got.Year)

	stored, err := svc.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestCreateInvalidLeavesStoreUntouched(t *testing.T) {
	mem := store.NewMemory()
	svc := New(mem, nil)

	_, err := svc.Create(context.Background(), concert.Draft{Band: strp("X")}, concert.DefaultWriteOptions)
	require.ErrorIs(t, err, ErrInvalidConcert)

	n, err := mem.CountConcerts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateMergesPartial(t *testing.T) {
	svc, _ := newSeeded(t)
	all, err := svc.List(context.Background())
	require.NoError(t, err)
	target := all[len(all)-1]

	got, err := svc.Update(context.Background(), target.ID, concert.Draft{
		Band: strp("Simple Plan, Sum 41"),
		Date: strp("2018-07-01"),
	}, concert.WriteOptions{})
	require.NoError(t, err)

	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, 2, got.Artists)
	assert.Equal(t, 2018, got.Year)
	assert.Equal(t, target.City, got.City)
	assert.Equal(t, target.Cost, got.Cost)

	_, err = svc.Update(context.Background(), "missing", concert.Draft{}, concert.WriteOptions{})
	assert.ErrorIs(t, err, store.ErrConcertNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newSeeded(t)
	all, _ := svc.List(context.Background())

	require.NoError(t, svc.Delete(context.Background(), all[0].ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), all[0].ID), store.ErrConcertNotFound)
}

func TestViewAndFacets(t *testing.T) {
	svc, _ := newSeeded(t)

	v, err := svc.View(context.Background(), pipeline.Query{Artist: "Simple Plan", Sort: pipeline.SortCost, Order: pipeline.Asc})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 2, v.Matched)
	require.Len(t, v.Concerts, 2)
	assert.Equal(t, 30.0, v.Concerts[0].Cost)
	assert.Equal(t, []int{2023, 2019, 2017}, v.Facets.Years)

	f, err := svc.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, v.Facets, f)
}

func TestStatsAndDrillDown(t *testing.T) {
	svc, _ := newSeeded(t)

	st, err := svc.Stats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalEvents)
	assert.Equal(t, 4, st.UniqueArtistCount)
	require.NotEmpty(t, st.TopArtists)
	assert.Equal(t, pipeline.ArtistCount{Artist: "Simple Plan", Count: 2}, st.TopArtists[0])

	history, err := svc.ArtistConcerts(context.Background(), "SIMPLE PLAN")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2023-06-03", history[0].Date)

	names, err := svc.SuggestArtists(context.Background(), "lin", 5)
	require.NoError(t, err)
	assert.Contains(t, names, "Linea77")
}

type failingStore struct{ Store }

func (failingStore) ListConcerts(context.Context) ([]concert.Record, error) {
	return nil, errors.New("database unavailable")
}

func TestStoreFailureSurfaces(t *testing.T) {
	svc := New(failingStore{}, nil)

	_, err := svc.View(context.Background(), pipeline.DefaultQuery)
	assert.Error(t, err)
	_, err = svc.Stats(context.Background(), 5)
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	svc := New(store.NewMemory(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.Create(ctx, concert.Draft{}, concert.DefaultWriteOptions)
	assert.ErrorIs(t, err, context.Canceled)
}
