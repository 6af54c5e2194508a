package concert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeArtist(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"green day", "Green Day"},
		{"  GREEN DAY ", "Green Day"},
		{"mr. ugo", "Mr. Ugo"},
		{"bnkr44", "Bnkr44"},
		{"Bnkr 44", "Bnkr44"},
		{"BNKR  44", "Bnkr44"},
		{"wel", "WEL"},
		{"Wet", "WET"},
		{"poe", "POE"},
		{"wel band", "Wel Band"},
		{"a  b", "A  B"},
		{"ludovico einaudi", "Ludovico Einaudi"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeArtist(tc.in))
		})
	}
}

func TestNormalizeArtistIdempotent(t *testing.T) {
	inputs := []string{"green day", "BNKR 44", "wel", "mr. ugo", "ÉLODIE", "x  y", "", "linkin park "}
	for _, in := range inputs {
		once := NormalizeArtist(in)
		assert.Equal(t, once, NormalizeArtist(once), "input %q", in)
	}
}

func TestNormalizeEvent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PPMP", "PPMP - Pop Punk Mosh Party"},
		{"ppmp summer edition", "PPMP - Pop Punk Mosh Party"},
		{"Pop Punk Mosh Party 2023", "PPMP - Pop Punk Mosh Party"},
		{"PPMP - Pop Punk Mosh Party", "PPMP - Pop Punk Mosh Party"},
		{"blaster", "Blaster"},
		{" BLASTER ", "Blaster"},
		{"Blaster Fest", "Blaster Fest"},
		{"  concerto ", "concerto"},
		{"IDays", "IDays"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeEvent(tc.in))
		})
	}
}

func TestNormalizerArtistsDropsEmpty(t *testing.T) {
	got := DefaultNormalizer().Artists("simple plan, , offspring,")
	assert.Equal(t, []string{"Simple Plan", "Offspring"}, got)
}

func TestFormatWords(t *testing.T) {
	n := DefaultNormalizer()
	tests := []struct {
		in   string
		want string
	}{
		{"dj fabo", "DJ Fabo"},
		{"wel, poe", "WEL, POE"},
		{"hello WORLD", "Hello World"},
		{"pr night", "PR Night"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, n.FormatWords(tc.in), "input %q", tc.in)
	}

	assert.Equal(t, "Simple Plan, Offspring", n.FormatList("simple plan,offspring"))
}

func TestParseAliasesRejectsIncompleteEntries(t *testing.T) {
	_, err := ParseAliases([]byte(`
artists:
  - match: foo
events:
  - canonical: Bar
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artists[0]: canonical is required")
	assert.Contains(t, err.Error(), "events[0]: contains or equals is required")
}

func TestLoadAliasesCustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	doc := `
artists:
  - match: acdc
    canonical: AC/DC
events:
  - equals: [slam dunk, slamdunk]
    canonical: Slam Dunk Italy
uppercase: [ACDC]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	aliases, err := LoadAliases(path)
	require.NoError(t, err)
	n := NewNormalizer(aliases)

	assert.Equal(t, "AC/DC", n.Artist(" ACDC "))
	assert.Equal(t, "AC/DC", n.Artist("ac/dc"))
	assert.Equal(t, "Wel", n.Artist("wel"))
	assert.Equal(t, "Slam Dunk Italy", n.Event("Slamdunk"))
	assert.Equal(t, "ppmp", n.Event("ppmp"))
}

func TestLoadAliasesMissingFile(t *testing.T) {
	_, err := LoadAliases(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
