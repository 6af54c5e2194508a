package concert

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliasesYAML []byte

// ArtistAlias maps one artist token to a fixed spelling.
type ArtistAlias struct {
	Match        string `yaml:"match"`
	Canonical    string `yaml:"canonical"`
	IgnoreSpaces bool   `yaml:"ignore_spaces"` // compare with all whitespace removed
}

// EventRule maps event labels to a fixed label. Contains entries match as
// substrings of the lower-cased label, Equals entries match it exactly.
type EventRule struct {
	Contains  []string `yaml:"contains"`
	Equals    []string `yaml:"equals"`
	Canonical string   `yaml:"canonical"`
}

// Aliases is the loadable exception table behind a Normalizer.
type Aliases struct {
	Artists   []ArtistAlias `yaml:"artists"`
	Events    []EventRule   `yaml:"events"`
	Uppercase []string      `yaml:"uppercase"`
}

// ParseAliases decodes and validates a YAML alias document.
func ParseAliases(data []byte) (Aliases, error) {
	var a Aliases
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Aliases{}, fmt.Errorf("parse aliases: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Aliases{}, err
	}
	return a, nil
}

// LoadAliases reads an alias document from disk.
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Aliases{}, fmt.Errorf("read aliases: %w", err)
	}
	return ParseAliases(data)
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() Aliases {
	a, err := ParseAliases(defaultAliasesYAML)
	if err != nil {
		panic(fmt.Sprintf("concert: embedded aliases: %v", err))
	}
	return a
}

// Validate reports every malformed entry at once.
func (a Aliases) Validate() error {
	var problems []string
	for i, alias := range a.Artists {
		if strings.TrimSpace(alias.Match) == "" {
			problems = append(problems, fmt.Sprintf("artists[%d]: match is required", i))
		}
		if strings.TrimSpace(alias.Canonical) == "" {
			problems = append(problems, fmt.Sprintf("artists[%d]: canonical is required", i))
		}
	}
	for i, rule := range a.Events {
		if len(rule.Contains) == 0 && len(rule.Equals) == 0 {
			problems = append(problems, fmt.Sprintf("events[%d]: contains or equals is required", i))
		}
		if strings.TrimSpace(rule.Canonical) == "" {
			problems = append(problems, fmt.Sprintf("events[%d]: canonical is required", i))
		}
	}
	if len(problems) > 0 {
		return errors.New("invalid aliases: " + strings.Join(problems, "; "))
	}
	return nil
}

type artistKey struct {
	match          string
	canonical      string
	canonicalLower string
	ignoreSpaces   bool
}

type eventKey struct {
	contains  []string
	equals    []string
	canonical string
}

// Normalizer canonicalizes artist and event names for grouping and
// filtering. It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	artists   []artistKey
	events    []eventKey
	uppercase map[string]struct{}
}

// NewNormalizer compiles an alias table.
func NewNormalizer(a Aliases) *Normalizer {
	n := &Normalizer{uppercase: make(map[string]struct{}, len(a.Uppercase))}
	for _, alias := range a.Artists {
		match := strings.ToLower(strings.TrimSpace(alias.Match))
		if alias.IgnoreSpaces {
			match = stripSpaces(match)
		}
		canonical := strings.TrimSpace(alias.Canonical)
		n.artists = append(n.artists, artistKey{
			match:          match,
			canonical:      canonical,
			canonicalLower: strings.ToLower(canonical),
			ignoreSpaces:   alias.IgnoreSpaces,
		})
	}
	for _, rule := range a.Events {
		n.events = append(n.events, eventKey{
			contains:  lowerAll(rule.Contains),
			equals:    lowerAll(rule.Equals),
			canonical: strings.TrimSpace(rule.Canonical),
		})
	}
	for _, word := range a.Uppercase {
		n.uppercase[strings.ToUpper(strings.TrimSpace(word))] = struct{}{}
	}
	return n
}

var defaultNormalizer = sync.OnceValue(func() *Normalizer {
	return NewNormalizer(DefaultAliases())
})

// DefaultNormalizer returns a shared Normalizer built from the embedded aliases.
func DefaultNormalizer() *Normalizer {
	return defaultNormalizer()
}

// Artist returns the canonical display form of one artist name.
func (n *Normalizer) Artist(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, a := range n.artists {
		key := lower
		if a.ignoreSpaces {
			key = stripSpaces(lower)
		}
		// A canonical spelling maps to itself so the result stays a fixed point.
		if key == a.match || lower == a.canonicalLower {
			return a.canonical
		}
	}
	return TitleCase(trimmed)
}

// Event returns the canonical display form of an event label. Labels that
// match no rule come back trimmed but otherwise untouched.
func (n *Normalizer) Event(label string) string {
	trimmed := strings.TrimSpace(label)
	lower := strings.ToLower(trimmed)
	for _, rule := range n.events {
		for _, sub := range rule.contains {
			if strings.Contains(lower, sub) {
				return rule.canonical
			}
		}
		for _, eq := range rule.equals {
			if lower == eq {
				return rule.canonical
			}
		}
	}
	return trimmed
}

// Artists splits a band field and normalizes every entry, dropping empties.
func (n *Normalizer) Artists(band string) []string {
	parts := SplitBand(band)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := n.Artist(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// FormatWords title-cases each space-separated word of s, except words whose
// alphanumeric core is on the uppercase list, which are upper-cased whole.
func (n *Normalizer) FormatWords(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Split(s, " ")
	for i, w := range words {
		if _, ok := n.uppercase[strings.ToUpper(alnumOnly(w))]; ok {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// FormatList applies FormatWords to every comma-separated entry of s and
// rejoins the entries with ", ".
func (n *Normalizer) FormatList(s string) string {
	parts := SplitBand(s)
	for i, p := range parts {
		parts[i] = n.FormatWords(p)
	}
	return strings.Join(parts, ", ")
}

// NormalizeArtist normalizes with the default alias table.
func NormalizeArtist(name string) string { return DefaultNormalizer().Artist(name) }

// NormalizeEvent normalizes with the default alias table.
func NormalizeEvent(label string) string { return DefaultNormalizer().Event(label) }

// TitleCase upper-cases the first rune of every single-space-separated word
// and lower-cases the rest.
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func alnumOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
