package daystats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// PayloadField is the top-level field that carries the day list.
const PayloadField = "day_stats"

// unrankedRank is assigned to entries whose rank is missing or not numeric so
// they sort after every ranked entry.
const unrankedRank = math.MaxInt32

// Decode parses a raw payload into day records, in payload order.
// Structural problems are reported as *FormatError. Individual player fields
// are normalized leniently and never fail the decode.
func Decode(raw []byte) ([]*DayRecord, error) {
	var payload map[string]json.RawMessage
	if err := unmarshalNumber(raw, &payload); err != nil {
		return nil, &FormatError{Reason: "payload is not a JSON object"}
	}
	if payload == nil {
		return nil, &FormatError{Reason: "payload is empty"}
	}
	rawDays, ok := payload[PayloadField]
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("missing %q field", PayloadField)}
	}

	var days []json.RawMessage
	if err := unmarshalNumber(rawDays, &days); err != nil || days == nil {
		return nil, &FormatError{Reason: fmt.Sprintf("%q is not a list", PayloadField)}
	}
	if len(days) == 0 {
		return nil, &FormatError{Reason: "no days available"}
	}

	records := make([]*DayRecord, 0, len(days))
	for i, rawDay := range days {
		record, err := decodeDay(rawDay)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("day entry %d: %s", i, err)}
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeDay(raw json.RawMessage) (*DayRecord, error) {
	var fields map[string]json.RawMessage
	if err := unmarshalNumber(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("not an object")
	}

	rawDayNumber, ok := fields["day"]
	if !ok {
		return nil, fmt.Errorf("missing day number")
	}
	var dayValue any
	if err := unmarshalNumber(rawDayNumber, &dayValue); err != nil {
		return nil, fmt.Errorf("invalid day number")
	}
	dayNumber, ok := integerValue(dayValue)
	if !ok {
		return nil, fmt.Errorf("day number is not an integer")
	}

	rawPlayers, ok := fields["players"]
	if !ok {
		return nil, fmt.Errorf("missing players")
	}
	var players []any
	if err := unmarshalNumber(rawPlayers, &players); err != nil || players == nil {
		return nil, fmt.Errorf("players is not a list")
	}

	entries := make([]PlayerEntry, 0, len(players))
	for _, p := range players {
		obj, ok := p.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, decodePlayer(obj))
	}
	return NewDayRecord(dayNumber, entries), nil
}

func decodePlayer(obj map[string]any) PlayerEntry {
	entry := PlayerEntry{
		Rank:     unrankedRank,
		BoxCount: ResolveBoxCount(obj["boxs"]),
	}
	if name, ok := obj["name"].(string); ok {
		entry.Name = name
	}
	if t, ok := obj["time"].(string); ok {
		entry.Time = t
	}
	if rank, ok := rankValue(obj["rank"]); ok {
		entry.Rank = rank
	}
	return entry
}

// ResolveBoxCount normalizes the optional box count of a player. Positive
// numbers are rounded, strings are parsed for a leading integer, and anything
// else (including non-positive values) yields 1.
func ResolveBoxCount(raw any) int {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 1
		}
		return positiveRounded(f)
	case float64:
		return positiveRounded(v)
	case int:
		return positiveRounded(float64(v))
	case string:
		if n, ok := parseIntPrefix(v); ok && n > 0 {
			return n
		}
	}
	return 1
}

func positiveRounded(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 1
	}
	n := int(math.Round(f))
	if n < 1 {
		return 1
	}
	return n
}

// parseIntPrefix reads an optionally signed run of leading decimal digits,
// ignoring leading whitespace and any trailing characters.
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func integerValue(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, false
	}
	return int(f), true
}

func rankValue(v any) (int, bool) {
	var f float64
	switch r := v.(type) {
	case json.Number:
		n, err := r.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, ok := jsNumber(r)
		if !ok {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	// Ranks beyond the int32 range are treated like unranked entries.
	if math.IsNaN(f) || f <= math.MinInt32 || f >= math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// errTrailingData is returned when a document holds more than one JSON value.
var errTrailingData = errors.New("unexpected data after JSON value")

func unmarshalNumber(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}
