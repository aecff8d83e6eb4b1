package daystats

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseTimeToSeconds converts an "m:ss" or "mm:ss" time into seconds.
// Empty components count as zero. Anything that cannot be read as two
// numeric components yields +Inf so that it sorts after every valid time.
func ParseTimeToSeconds(t string) float64 {
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return math.Inf(1)
	}
	minutes, ok := jsNumber(parts[0])
	if !ok {
		return math.Inf(1)
	}
	seconds, ok := jsNumber(parts[1])
	if !ok {
		return math.Inf(1)
	}
	return minutes*60 + seconds
}

// jsNumber converts a string the way a browser's Number() does for the
// decimal forms that show up in result files.
func jsNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Ordinal renders a rank as "1st", "2nd", "3rd", "11th" and so on.
func Ordinal(rank int) string {
	mod100 := rank % 100
	if mod100 >= 11 && mod100 <= 13 {
		return fmt.Sprintf("%dth", rank)
	}
	suffix := "th"
	switch rank % 10 {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", rank, suffix)
}

var instagramUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// InstagramLink builds a profile link from a player name by dropping every
// character Instagram handles cannot contain.
func InstagramLink(name string) string {
	if name == "" {
		return "#"
	}
	return "https://instagram.com/" + instagramUnsafe.ReplaceAllString(name, "")
}
