package extrabox

import (
	"strings"
	"time"
)

// Counter is the number of extra boxes a player has earned.
type Counter struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var keyReplacer = strings.NewReplacer(
	".", "_",
	"#", "_",
	"$", "_",
	"/", "_",
	"[", "_",
	"]", "_",
)

// BuildKey derives the storage key for a player name: trimmed, lower-cased,
// with path-like characters replaced by underscores.
func BuildKey(name string) string {
	return keyReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}
