package session

import (
	"sync"
	"time"

	"github.com/mauv0809/ballcrusher-stats/internal/dataset"
	"github.com/mauv0809/ballcrusher-stats/internal/detail"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier"
	"github.com/mauv0809/ballcrusher-stats/internal/pubsub"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
)

// Session owns the dataset cache, the player index and the day board for the
// lifetime of the process.
type Session struct {
	id       string
	cache    *dataset.Cache
	index    *search.Builder
	board    *detail.Board
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics

	mu        sync.Mutex
	bound     *dataset.Snapshot
	published bool
}

// Status reports what the session holds in memory. Reading it never triggers
// a fetch or an index build.
type Status struct {
	Generation  uint64    `json:"generation"`
	Loaded      bool      `json:"loaded"`
	Days        int       `json:"days"`
	LoadedAt    time.Time `json:"loadedAt"`
	Indexed     bool      `json:"indexed"`
	Players     int       `json:"players"`
	ExpandedDay *int      `json:"expandedDay"`
}

// DayPreview summarizes a day for the day list.
type DayPreview struct {
	Day         int    `json:"day"`
	Winner      string `json:"winner"`
	WinnerTime  string `json:"winnerTime"`
	PlayerCount int    `json:"playerCount"`
}

// PlayerSearch is the outcome of a player search. Records is set when the
// player was found; Candidates may hint at near misses otherwise.
type PlayerSearch struct {
	search.Result
	Field      search.Field    `json:"sort"`
	Order      search.Order    `json:"order"`
	Records    []search.Record `json:"records,omitempty"`
	Candidates []string        `json:"candidates,omitempty"`
}
