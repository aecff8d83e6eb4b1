package dataset

import (
	"time"

	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
)

// Snapshot is one loaded generation of the day dataset. It is read-only once
// published by the Cache.
type Snapshot struct {
	Generation uint64
	Days       []*daystats.DayRecord
	LoadedAt   time.Time

	lookup map[int]*daystats.DayRecord
}

// Day returns the record for a day number.
func (s *Snapshot) Day(day int) (*daystats.DayRecord, bool) {
	record, ok := s.lookup[day]
	return record, ok
}

// Newest returns the day with the highest day number.
func (s *Snapshot) Newest() *daystats.DayRecord {
	if len(s.Days) == 0 {
		return nil
	}
	return s.Days[0]
}
