package search

import (
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// minSubstringLength is the shortest query that may fall back to substring matching.
const minSubstringLength = 2

// Resolve looks a free-text query up in idx. An exact match on the
// normalized name always wins. Otherwise a query of at least two characters
// matches when exactly one player name contains it; an ambiguous or missing
// match is NotFound. idx may be nil for an empty query.
func Resolve(idx *Index, rawQuery string) Result {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return Result{Status: StatusEmpty}
	}
	result := Result{Status: StatusNotFound, Query: query}
	if idx == nil {
		return result
	}

	normalized := strings.ToLower(query)
	if entry, ok := idx.Lookup(normalized); ok {
		result.Status = StatusFound
		result.Entry = entry
		return result
	}
	if utf8.RuneCountInString(normalized) < minSubstringLength {
		return result
	}

	var match *Entry
	for _, entry := range idx.order {
		if !strings.Contains(strings.ToLower(entry.Name), normalized) {
			continue
		}
		if match != nil {
			return result
		}
		match = entry
	}
	if match != nil {
		result.Status = StatusFound
		result.Entry = match
	}
	return result
}

// nameSource exposes the canonical names of an index to fuzzy matching.
type nameSource []*Entry

func (s nameSource) String(i int) string {
	return s[i].Name
}

func (s nameSource) Len() int {
	return len(s)
}

// Candidates lists up to limit player names that fuzzily match query, best
// first. It is a hint for callers showing a NotFound result and never
// changes what Resolve returns.
func Candidates(idx *Index, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if idx == nil || query == "" || limit <= 0 {
		return nil
	}
	matches := fuzzy.FindFrom(query, nameSource(idx.order))
	names := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(names) == limit {
			break
		}
		names = append(names, idx.order[m.Index].Name)
	}
	return names
}
