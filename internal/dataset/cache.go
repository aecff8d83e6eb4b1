package dataset

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/source"
	"golang.org/x/sync/singleflight"
)

// ErrDayNotFound is returned by GetDay for a day number that is not in the dataset.
var ErrDayNotFound = errors.New("day not found")

// Cache fetches the day dataset once per generation and shares the outcome,
// success or failure, with every caller until Reset is called.
type Cache struct {
	fetcher source.Fetcher
	metrics metrics.Metrics
	group   singleflight.Group

	mu         sync.Mutex
	generation uint64
	done       bool
	snapshot   *Snapshot
	err        error
}

// New creates an empty Cache.
func New(fetcher source.Fetcher, metrics metrics.Metrics) *Cache {
	return &Cache{
		fetcher: fetcher,
		metrics: metrics,
	}
}

// FetchAndCache returns the loaded dataset, fetching it if needed. Concurrent
// callers share a single fetch. Cancelling ctx only stops this caller from
// waiting; the shared fetch keeps running for the others.
func (c *Cache) FetchAndCache(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.done {
		snapshot, err := c.snapshot, c.err
		c.mu.Unlock()
		return snapshot, err
	}
	gen := c.generation
	c.mu.Unlock()

	ch := c.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return c.load(context.WithoutCancel(ctx), gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	// A previous flight for this generation may have finished between the
	// caller's check and this flight starting.
	c.mu.Lock()
	if c.done && c.generation == gen {
		snapshot, err := c.snapshot, c.err
		c.mu.Unlock()
		return snapshot, err
	}
	c.mu.Unlock()

	log.Info("Fetching day dataset", "generation", gen)
	c.metrics.IncDatasetFetches()
	snapshot, err := c.fetch(ctx, gen)
	if err != nil {
		c.metrics.IncDatasetFetchFailures()
		log.Error("Failed to load day dataset", "generation", gen, "error", err)
	} else {
		log.Info("Day dataset loaded", "generation", gen, "days", len(snapshot.Days))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		log.Debug("Discarding dataset for a reset generation", "generation", gen, "current", c.generation)
		return snapshot, err
	}
	c.done = true
	c.snapshot = snapshot
	c.err = err
	return snapshot, err
}

func (c *Cache) fetch(ctx context.Context, gen uint64) (*Snapshot, error) {
	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	days, err := daystats.Decode(raw)
	if err != nil {
		return nil, err
	}
	return newSnapshot(gen, days), nil
}

func newSnapshot(gen uint64, days []*daystats.DayRecord) *Snapshot {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Day > days[j].Day
	})
	lookup := make(map[int]*daystats.DayRecord, len(days))
	for _, d := range days {
		if _, exists := lookup[d.Day]; !exists {
			lookup[d.Day] = d
		}
	}
	return &Snapshot{
		Generation: gen,
		Days:       days,
		LoadedAt:   time.Now(),
		lookup:     lookup,
	}
}

// GetDay waits for the dataset and returns the record for day.
func (c *Cache) GetDay(ctx context.Context, day int) (*daystats.DayRecord, error) {
	snapshot, err := c.FetchAndCache(ctx)
	if err != nil {
		return nil, err
	}
	record, ok := snapshot.Day(day)
	if !ok {
		return nil, ErrDayNotFound
	}
	return record, nil
}

// Peek returns the loaded snapshot without triggering a fetch.
func (c *Cache) Peek() (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done || c.snapshot == nil {
		return nil, false
	}
	return c.snapshot, true
}

// Generation returns the current dataset generation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Reset drops the cached outcome and starts a new generation. A fetch still
// in flight for the old generation will not be stored.
func (c *Cache) Reset() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.done = false
	c.snapshot = nil
	c.err = nil
	log.Info("Dataset cache reset", "generation", c.generation)
	return c.generation
}
