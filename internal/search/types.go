package search

import (
	"encoding/json"
	"math"
)

// Record is one day's result for an indexed player.
type Record struct {
	Day      int     `json:"day"`
	Rank     int     `json:"rank"`
	Time     string  `json:"time"`
	Seconds  float64 `json:"seconds"`
	BoxCount int     `json:"boxCount"`
}

// MarshalJSON writes unparsable times as a null seconds value.
func (r Record) MarshalJSON() ([]byte, error) {
	type record Record
	out := struct {
		record
		Seconds *float64 `json:"seconds"`
	}{record: record(r)}
	if !math.IsInf(r.Seconds, 0) && !math.IsNaN(r.Seconds) {
		out.Seconds = &r.Seconds
	}
	return json.Marshal(out)
}

// Entry groups every record of one player. Key is the normalized name and
// Name keeps the casing of the first appearance.
type Entry struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Records []Record `json:"records"`
}

// Status is the outcome of resolving a query.
type Status string

const (
	StatusEmpty    Status = "empty"
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
)

// Result is what Resolve returns. Entry is only set when Status is StatusFound.
type Result struct {
	Status Status `json:"status"`
	Query  string `json:"query"`
	Entry  *Entry `json:"entry,omitempty"`
}

// Field is a sortable record attribute.
type Field string

const (
	FieldDay  Field = "day"
	FieldRank Field = "rank"
	FieldTime Field = "time"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)
