// Package tooldict canonicalizes free-text tool names against the tool
// dictionary served by the ledger. Matching ignores case, surrounding
// whitespace and diacritics, so "nozyczki" finds "Nożyczki". The dictionary
// is built once per session and queried through a single lookup.
package tooldict

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sterilpoint/protokol/internal/models"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold reduces a name to its matching key: trimmed, lowercased and with
// diacritical marks removed.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Dictionary maps folded names to their canonical dictionary form.
type Dictionary struct {
	canonical map[string]string
	names     []string
}

// New builds a dictionary from canonical names. The first occurrence wins
// when two names fold to the same key.
func New(names []string) *Dictionary {
	d := &Dictionary{canonical: make(map[string]string, len(names))}
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := Fold(trimmed)
		if _, ok := d.canonical[key]; !ok {
			d.canonical[key] = trimmed
			d.names = append(d.names, trimmed)
		}
	}
	return d
}

// Canonical looks up the dictionary form of a free-text name. The second
// return value reports whether a match was found.
func (d *Dictionary) Canonical(name string) (string, bool) {
	c, ok := d.canonical[Fold(name)]
	return c, ok
}

// Names returns the canonical names in insertion order.
func (d *Dictionary) Names() []string {
	return append([]string(nil), d.names...)
}

// CanonicalizeTools rewrites matched tool names to their dictionary form and
// leaves unmatched names as typed. The input slice is not modified.
func (d *Dictionary) CanonicalizeTools(tools []models.Tool) []models.Tool {
	out := append([]models.Tool(nil), tools...)
	for i := range out {
		if c, ok := d.Canonical(out[i].Name); ok {
			out[i].Name = c
		}
	}
	return out
}
