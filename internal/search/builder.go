package search

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/dataset"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// SnapshotSource is satisfied by *dataset.Cache.
type SnapshotSource interface {
	FetchAndCache(ctx context.Context) (*dataset.Snapshot, error)
}

// Builder builds the player index lazily, once per dataset generation.
type Builder struct {
	source  SnapshotSource
	metrics metrics.Metrics
	group   singleflight.Group

	mu     sync.Mutex
	index  *Index
	builds int
}

// NewBuilder creates a Builder that reads datasets from source.
func NewBuilder(source SnapshotSource, metrics metrics.Metrics) *Builder {
	return &Builder{
		source:  source,
		metrics: metrics,
	}
}

// EnsureIndex waits for the dataset and returns its index, building it on
// first use. Concurrent callers share one build; dataset errors pass through.
func (b *Builder) EnsureIndex(ctx context.Context) (*Index, error) {
	snapshot, err := b.source.FetchAndCache(ctx)
	if err != nil {
		return nil, err
	}
	if idx, ok := b.cached(snapshot.Generation); ok {
		return idx, nil
	}

	ch := b.group.DoChan(strconv.FormatUint(snapshot.Generation, 10), func() (any, error) {
		if idx, ok := b.cached(snapshot.Generation); ok {
			return idx, nil
		}
		return b.build(snapshot), nil
	})
	select {
	case res := <-ch:
		return res.Val.(*Index), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Builder) build(snapshot *dataset.Snapshot) *Index {
	start := time.Now()
	idx := Build(snapshot)
	duration := time.Since(start)

	b.metrics.IncIndexBuilds()
	b.metrics.ObserveIndexBuildDuration(duration.Seconds())
	log.Info("Player index built", "generation", snapshot.Generation, "players", idx.Len(), "duration_ms", duration.Milliseconds())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.builds++
	if b.index == nil || b.index.Generation <= idx.Generation {
		b.index = idx
	}
	return idx
}

func (b *Builder) cached(generation uint64) (*Index, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index != nil && b.index.Generation == generation {
		return b.index, true
	}
	return nil, false
}

// Current returns the last built index without triggering a build.
func (b *Builder) Current() (*Index, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index, b.index != nil
}

// Builds returns how many times an index was actually built.
func (b *Builder) Builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builds
}

// Reset discards the current index.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.index = nil
}
