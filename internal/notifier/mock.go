package notifier

import (
	"sync"

	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for send functions
	SendDayAnnouncementFunc func(day *daystats.DayRecord, dryRun bool) error
	SendDayLeaderboardFunc  func(day *daystats.DayRecord, dryRun bool) error

	// Spies for format functions
	FormatDayLeaderboardResponseFunc func(day *daystats.DayRecord) (any, error)
	FormatPlayerStatsResponseFunc    func(entry *search.Entry) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string, candidates []string) (any, error)

	// Call records
	SendDayAnnouncementCalls []*daystats.DayRecord
	SendDayLeaderboardCalls  []*daystats.DayRecord
	PlayerNotFoundCalls      []PlayerNotFoundCall

	// Call records for format functions
	LastDayLeaderboardResponse any
	LastPlayerStatsResponse    any
	LastPlayerNotFoundResponse any
}

// PlayerNotFoundCall holds the arguments for a call to FormatPlayerNotFoundResponse.
type PlayerNotFoundCall struct {
	Query      string
	Candidates []string
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDayAnnouncementCalls = nil
	m.SendDayLeaderboardCalls = nil
	m.PlayerNotFoundCalls = nil
	m.LastDayLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendDayAnnouncement(day *daystats.DayRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDayAnnouncementCalls = append(m.SendDayAnnouncementCalls, day)
	if m.SendDayAnnouncementFunc != nil {
		return m.SendDayAnnouncementFunc(day, dryRun)
	}
	return nil
}

func (m *Mock) SendDayLeaderboard(day *daystats.DayRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDayLeaderboardCalls = append(m.SendDayLeaderboardCalls, day)
	if m.SendDayLeaderboardFunc != nil {
		return m.SendDayLeaderboardFunc(day, dryRun)
	}
	return nil
}

func (m *Mock) FormatDayLeaderboardResponse(day *daystats.DayRecord) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatDayLeaderboardResponseFunc != nil {
		resp, err := m.FormatDayLeaderboardResponseFunc(day)
		m.LastDayLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_day_leaderboard", nil
}

func (m *Mock) FormatPlayerStatsResponse(entry *search.Entry) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(entry)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string, candidates []string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerNotFoundCalls = append(m.PlayerNotFoundCalls, PlayerNotFoundCall{Query: query, Candidates: candidates})
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query, candidates)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}

// AnnouncementCount returns how many announcements were sent.
func (m *Mock) AnnouncementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendDayAnnouncementCalls)
}
