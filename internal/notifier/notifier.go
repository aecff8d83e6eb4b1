package notifier

import (
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
)

// Notifier defines a high-level interface for sending notifications about dataset events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For freshly loaded datasets
	SendDayAnnouncement(day *daystats.DayRecord, dryRun bool) error
	// For slash commands
	SendDayLeaderboard(day *daystats.DayRecord, dryRun bool) error

	// For formatting responses for slash commands
	FormatDayLeaderboardResponse(day *daystats.DayRecord) (any, error)
	FormatPlayerStatsResponse(entry *search.Entry) (any, error)
	FormatPlayerNotFoundResponse(query string, candidates []string) (any, error)
}
