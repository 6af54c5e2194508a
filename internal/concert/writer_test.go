package concert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concertlog/internal/validator"
)

func strp(s string) *string     { return &s }
func costp(f float64) *float64 { return &f }

func TestWriterBuild(t *testing.T) {
	w := NewWriter(nil)

	got, err := w.Build(Draft{
		Band:  strp("simple plan, , offspring"),
		Date:  strp("2023-06-03"),
		City:  strp("rimini, beky bay"),
		Event: strp("slamdunk"),
		Cost:  costp(74.49),
	}, DefaultWriteOptions)
	require.NoError(t, err)

	assert.Equal(t, Record{
		Band:    "Simple Plan, , Offspring",
		Date:    "2023-06-03",
		City:    "Rimini, Beky Bay",
		Event:   "Slamdunk",
		Artists: 2,
		Cost:    74.49,
		Year:    2023,
	}, got)
}

func TestWriterBuildDefaults(t *testing.T) {
	w := NewWriter(nil)

	got, err := w.Build(Draft{
		Band: strp("dj fabo"),
		Date: strp("2024-03-09"),
		City: strp("milano"),
	}, DefaultWriteOptions)
	require.NoError(t, err)
	assert.Equal(t, "DJ Fabo", got.Band)
	assert.Equal(t, DefaultEvent, got.Event)
	assert.Equal(t, 0.0, got.Cost)
	assert.Equal(t, 1, got.Artists)
	assert.Equal(t, 2024, got.Year)
}

func TestWriterWithoutAutoFormat(t *testing.T) {
	w := NewWriter(nil)

	got, err := w.Build(Draft{
		Band:  strp("simple plan"),
		Date:  strp("2017-06-14"),
		City:  strp("padova"),
		Event: strp("pop punk mosh party"),
	}, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "simple plan", got.Band)
	assert.Equal(t, "padova", got.City)
	assert.Equal(t, "PPMP - Pop Punk Mosh Party", got.Event)
}

func TestWriterCountsArtists(t *testing.T) {
	w := NewWriter(nil)

	tests := []struct {
		band string
		want int
	}{
		{"A, B, C", 3},
		{"Salmo", 1},
		{"Simple Plan, , Offspring", 2},
	}
	for _, tc := range tests {
		for _, opts := range []WriteOptions{DefaultWriteOptions, {}} {
			got, err := w.Build(Draft{
				Band: strp(tc.band),
				Date: strp("2024-01-01"),
				City: strp("Milano"),
			}, opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Artists, "%q autoformat=%v", tc.band, opts.AutoFormat)
		}
	}
}

func TestWriterPPMPOverride(t *testing.T) {
	w := NewWriter(nil)

	for _, event := range []string{"ppmp", " PPMP ", "Pop Punk Mosh Party"} {
		got, err := w.Build(Draft{
			Band:  strp("Particles"),
			Date:  strp("2022-06-24"),
			City:  strp("Parma"),
			Event: strp(event),
		}, DefaultWriteOptions)
		require.NoError(t, err)
		assert.Equal(t, "PPMP - Pop Punk Mosh Party", got.Event, event)
	}
}

func TestWriterValidation(t *testing.T) {
	w := NewWriter(nil)

	_, err := w.Build(Draft{
		Band: strp(" , "),
		Date: strp("14-giu-2017"),
		Cost: costp(-1),
	}, DefaultWriteOptions)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))

	var fe *validator.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, map[string]string{
		"band": "must be provided",
		"city": "must be provided",
		"date": "must be a YYYY-MM-DD date",
		"cost": "must not be negative",
	}, fe.Fields)
}

func TestWriterMergeRederivesFields(t *testing.T) {
	w := NewWriter(nil)
	base := Record{
		ID:      "c1",
		Band:    "Simple Plan",
		Date:    "2017-06-14",
		City:    "Padova, Gran Teatro Geox",
		Event:   "Concerto",
		Artists: 1,
		Cost:    30,
		Year:    2017,
	}

	got, err := w.Merge(base, Draft{
		Band: strp("Simple Plan, Offspring"),
		Date: strp("2023-06-03"),
	}, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, 2, got.Artists)
	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, "Padova, Gran Teatro Geox", got.City)
	assert.Equal(t, 30.0, got.Cost)

	_, err = w.Merge(base, Draft{Band: strp("")}, WriteOptions{})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDraftOverlay(t *testing.T) {
	prev := Draft{Band: strp("Old"), City: strp("Milano"), Cost: costp(10)}
	got := prev.Overlay(Draft{Band: strp(""), Event: strp("IDays"), Cost: costp(0)})

	assert.Equal(t, "Old", *got.Band)
	assert.Equal(t, "Milano", *got.City)
	assert.Equal(t, "IDays", *got.Event)
	assert.Equal(t, 0.0, *got.Cost)
	assert.Nil(t, got.Date)
	assert.False(t, got.IsEmpty())
	assert.True(t, Draft{}.IsEmpty())
}
