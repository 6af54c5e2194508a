package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concertlog/internal/app/concerts"
	"concertlog/internal/concert"
	"concertlog/internal/store"
)

func TestRecords(t *testing.T) {
	records, err := Records()
	require.NoError(t, err)
	require.Len(t, records, 98)

	assert.Equal(t, concert.Record{
		Band: "Simple Plan", Date: "2017-06-14", City: "Padova, Gran Teatro Geox", Event: "Concerto", Cost: 30,
	}, records[0])
	assert.Equal(t, "2026-07-15", records[len(records)-1].Date)

	for i, r := range records {
		_, ok := concert.ParseDate(r.Date)
		assert.True(t, ok, "record %d (%s) has date %q", i, r.Band, r.Date)
	}
}

func TestBundledRecordsSeedCleanly(t *testing.T) {
	records, err := Records()
	require.NoError(t, err)

	mem := store.NewMemory()
	n, err := concerts.New(mem, nil).Seed(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 98, n)

	all, err := mem.ListConcerts(context.Background())
	require.NoError(t, err)
	for _, r := range all {
		assert.Positive(t, r.Artists)
		assert.Equal(t, mustYear(t, r.Date), r.Year)
	}
}

func TestRead(t *testing.T) {
	records, err := Read(strings.NewReader(`[
		{"band": "Salmo", "date": "3-mag-2022", "city": "Modena", "event": "Concerto", "cost": 59.01},
		{"band": "Lazza", "date": "2020-02-22", "city": "Reggio Emilia", "event": "serata", "cost": 25}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2022-05-03", records[0].Date)
	assert.Equal(t, "2020-02-22", records[1].Date)

	_, err = Read(strings.NewReader(`{"band": "x"}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	bundled, err := Load("")
	require.NoError(t, err)
	assert.Len(t, bundled, 98)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"band":"Nitro","date":"25-set-2018","city":"Parma","event":"Concerto","cost":27}]`), 0o600))
	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2018, mustYear(t, records[0].Date))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func mustYear(t *testing.T, date string) int {
	t.Helper()
	d, ok := concert.ParseDate(date)
	require.True(t, ok)
	return d.Year()
}
