package feature

import (
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/normalize"
)

// PrepareQuery NFC-normalizes the query and rejects blank input.
func PrepareQuery(raw string) (string, error) {
	q := strings.TrimSpace(normalize.Query(raw))
	if q == "" {
		return "", ir.NewBlankQueryError()
	}
	return q, nil
}

// term is one word of a tsearch query.
type term struct {
	text    string
	negated bool
}

// disallowedTSQuery are characters with meaning inside to_tsquery input.
// They are replaced with spaces before the term is quoted.
func disallowedTSQuery(r rune) rune {
	switch r {
	case '\'', '?', '\\', ':':
		return ' '
	default:
		return r
	}
}

// splitTerms breaks a prepared query into tsearch terms. Terms that are
// empty after sanitizing are dropped; with negation, a leading "!" marks the
// term as excluded.
func splitTerms(query string, negation bool) ([]term, error) {
	var terms []term
	for _, word := range strings.Fields(query) {
		t := term{}
		if negation && strings.HasPrefix(word, "!") {
			t.negated = true
			word = word[1:]
		}
		t.text = strings.TrimSpace(strings.Map(disallowedTSQuery, word))
		if t.text == "" {
			continue
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return nil, &ir.ArgumentError{
			Option:  "query",
			Message: "search query contains no searchable terms",
		}
	}
	return terms, nil
}
