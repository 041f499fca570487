// Package catalog resolves user supplied item references against a catalog
// snapshot and produces ranked autocomplete suggestions.
// All functions are stateless per call; the snapshot is read-only here
package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSuggestLimit caps autocomplete responses
const DefaultSuggestLimit = 25

// Item is one entry of the marketplace catalog snapshot
type Item struct {
	ID    string  `json:"itemId"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Suggestion is one autocomplete choice
type Suggestion struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Resolve matches ref against the catalog: exact id match first, then exact
// display-name match. The first match in catalog iteration order wins
func Resolve(ref string, items []Item) (Item, bool) {
	for _, it := range items {
		if it.ID == ref {
			return it, true
		}
	}
	for _, it := range items {
		if it.Name != "" && it.Name == ref {
			return it, true
		}
	}
	return Item{}, false
}

// Suggest returns up to limit suggestions whose id or name contains query
// case-insensitively, preserving catalog order among matches. Items without a
// display name are skipped. A limit <= 0 falls back to DefaultSuggestLimit
func Suggest(query string, items []Item, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	q := fold(query)

	out := make([]Suggestion, 0, limit)
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		if !strings.Contains(fold(it.Name), q) && !strings.Contains(fold(it.ID), q) {
			continue
		}
		out = append(out, Suggestion{Label: it.Name, Value: it.ID})
		if len(out) == limit {
			break
		}
	}
	return out
}

// fold applies Unicode case folding for caseless comparison.
// a Caser is stateful, so build one per call
func fold(s string) string {
	return cases.Fold().String(s)
}
