package daystats

import (
	"sort"
	"sync"
	"sync/atomic"
)

// PlayerEntry is one player's result for a single day.
type PlayerEntry struct {
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Time     string `json:"time"`
	BoxCount int    `json:"boxCount"`
}

// DayRecord holds a day's results. The winner is resolved when the record is
// built; the rank-ordered leaderboard is only computed on first request.
type DayRecord struct {
	Day     int
	Players []PlayerEntry

	winner       *PlayerEntry
	sortOnce     sync.Once
	sorted       []PlayerEntry
	materialized atomic.Bool
}

// NewDayRecord builds a DayRecord and resolves its winner.
func NewDayRecord(day int, players []PlayerEntry) *DayRecord {
	r := &DayRecord{
		Day:     day,
		Players: players,
	}
	for i := range r.Players {
		if r.winner == nil || r.Players[i].Rank < r.winner.Rank {
			r.winner = &r.Players[i]
		}
	}
	return r
}

// Winner returns the entry with the lowest rank, or nil for an empty day.
// On ties the earliest entry wins.
func (r *DayRecord) Winner() *PlayerEntry {
	return r.winner
}

// SortedPlayers returns the players ordered by ascending rank. The slice is
// computed once and shared between callers, so it must not be modified.
func (r *DayRecord) SortedPlayers() []PlayerEntry {
	r.sortOnce.Do(func() {
		sorted := make([]PlayerEntry, len(r.Players))
		copy(sorted, r.Players)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Rank < sorted[j].Rank
		})
		r.sorted = sorted
		r.materialized.Store(true)
	})
	return r.sorted
}

// Materialized reports whether SortedPlayers has already been computed.
func (r *DayRecord) Materialized() bool {
	return r.materialized.Load()
}
