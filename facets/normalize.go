package facets

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	punctuation    = regexp.MustCompile(`[^\w\s-]`)
)

// Normalize derives the canonical dedup key for a facet label and
// optional type. Two labels differing only in case, surrounding
// whitespace, or punctuation collapse to the same key; the display label
// itself is stored verbatim elsewhere.
//
// Rules: lowercase, trim, collapse whitespace runs, strip everything
// that is not a word character, whitespace, or hyphen, trim again. The
// key is prefixed with the lowercased type, or the literal "tag" when no
// type is given, joined with ":". The function is pure and must stay
// stable across versions: keys are persisted and compared on import.
func Normalize(label, facetType string) string {
	normalized := strings.TrimSpace(strings.ToLower(label))
	normalized = whitespaceRuns.ReplaceAllString(normalized, " ")
	normalized = punctuation.ReplaceAllString(normalized, "")
	normalized = strings.TrimSpace(normalized)

	prefix := strings.TrimSpace(strings.ToLower(facetType))
	if prefix == "" {
		prefix = "tag"
	}
	return prefix + ":" + normalized
}
