package search

import (
	"fmt"
	"sort"
	"strings"
)

// ParseField validates a sort field. An empty value selects FieldDay.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FieldDay, nil
	case FieldDay, FieldRank, FieldTime:
		return f, nil
	}
	return "", fmt.Errorf("invalid sort field %q: must be one of day, rank, time", s)
}

// ParseOrder validates a sort order. An empty value selects Desc.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Desc, nil
	case Asc, Desc:
		return o, nil
	}
	return "", fmt.Errorf("invalid sort order %q: must be asc or desc", s)
}

// Sort returns entry's records ordered by field. The entry is not modified.
// Unparsable times count as +Inf, so they come last ascending and first
// descending. Ties keep their original order.
func Sort(entry *Entry, field Field, order Order) []Record {
	if entry == nil {
		return nil
	}
	records := make([]Record, len(entry.Records))
	copy(records, entry.Records)

	key := projection(field)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := key(records[i]), key(records[j])
		if order == Asc {
			return a < b
		}
		return a > b
	})
	return records
}

func projection(field Field) func(Record) float64 {
	switch field {
	case FieldRank:
		return func(r Record) float64 { return float64(r.Rank) }
	case FieldTime:
		return func(r Record) float64 { return r.Seconds }
	}
	return func(r Record) float64 { return float64(r.Day) }
}
