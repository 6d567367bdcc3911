package intent

import (
	"fmt"
	"strings"
)

// Intent is the structured reading of a user query (immutable value object).
// It is exactly what the parsing model extracted: the free-text theme plus
// optional locations, thematic keywords, publishers and language.
type Intent struct {
	rawTheme   string
	locations  []string
	themes     []string
	publishers []string
	language   string
}

// New validates and creates an Intent. The raw theme must be non-empty after
// trimming; all other fields are optional. List entries are trimmed and
// empties dropped, order preserved.
func New(rawTheme string, locations, themes, publishers []string, language string) (Intent, error) {
	rawTheme = strings.TrimSpace(rawTheme)
	if rawTheme == "" {
		return Intent{}, fmt.Errorf("raw theme is required")
	}

	return Intent{
		rawTheme:   rawTheme,
		locations:  cleanList(locations),
		themes:     cleanList(themes),
		publishers: cleanList(publishers),
		language:   strings.TrimSpace(language),
	}, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

// RawTheme returns the free-text theme of the query.
func (i Intent) RawTheme() string { return i.rawTheme }

// Locations returns the place names mentioned in the query.
func (i Intent) Locations() []string { return i.locations }

// Themes returns the thematic keywords extracted from the query.
func (i Intent) Themes() []string { return i.themes }

// Publishers returns the publishing organizations mentioned in the query.
func (i Intent) Publishers() []string { return i.publishers }

// Language returns the detected query language (ISO code or empty).
func (i Intent) Language() string { return i.language }

// HasLocation reports whether the query names at least one location.
func (i Intent) HasLocation() bool { return len(i.locations) > 0 }

// PrimaryLocation returns the first mentioned location, or "" when none.
// The pipeline geocodes only the first one.
func (i Intent) PrimaryLocation() string {
	if len(i.locations) == 0 {
		return ""
	}
	return i.locations[0]
}

// CoreSearchTerms returns the raw theme followed by the thematic keywords.
// Entries are trimmed and non-empty by construction.
func (i Intent) CoreSearchTerms() []string {
	terms := make([]string, 0, 1+len(i.themes))
	terms = append(terms, i.rawTheme)
	terms = append(terms, i.themes...)
	return terms
}
