package session

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/ballcrusher-stats/internal/dataset"
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/detail"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier"
	"github.com/mauv0809/ballcrusher-stats/internal/pubsub"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
	"github.com/mauv0809/ballcrusher-stats/internal/source"
)

// candidateLimit caps the fuzzy hints returned with a NotFound search.
const candidateLimit = 5

// ErrNoDays is returned when a loaded dataset has no newest day.
var ErrNoDays = errors.New("no days available")

// New creates a Session reading the dataset through fetcher.
func New(fetcher source.Fetcher, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, scheduler detail.Scheduler) *Session {
	cache := dataset.New(fetcher, metrics)
	return &Session{
		id:       uuid.NewString(),
		cache:    cache,
		index:    search.NewBuilder(cache, metrics),
		board:    detail.NewBoard(nil, scheduler, metrics),
		notifier: notifier,
		pubsub:   pubsub,
		metrics:  metrics,
	}
}

// Load returns the current dataset, fetching it on first use. The first
// successful load publishes a dataset-loaded event.
func (s *Session) Load(ctx context.Context) (*dataset.Snapshot, error) {
	snapshot, err := s.cache.FetchAndCache(ctx)
	if err != nil {
		return nil, err
	}
	if s.bind(snapshot) {
		s.publish(pubsub.EventDatasetLoaded, snapshot)
	}
	return snapshot, nil
}

// Reload drops the cached dataset, index and panel state and fetches again.
// Unless dryRun is set, the newest day is announced and a dataset-reloaded
// event is published.
func (s *Session) Reload(ctx context.Context, dryRun bool) (*dataset.Snapshot, error) {
	gen := s.reset()
	log.Info("Reloading dataset", "generation", gen, "dryRun", dryRun)

	snapshot, err := s.cache.FetchAndCache(ctx)
	if err != nil {
		return nil, err
	}
	s.bind(snapshot)

	if newest := snapshot.Newest(); newest != nil {
		if err := s.notifier.SendDayAnnouncement(newest, dryRun); err != nil {
			log.Error("Failed to announce newest day", "error", err, "day", newest.Day)
		}
	}
	if dryRun {
		log.Info("[Dry Run] Skipping dataset-reloaded event", "generation", snapshot.Generation)
	} else {
		s.publish(pubsub.EventDatasetReloaded, snapshot)
	}
	return snapshot, nil
}

// HandleDatasetEvent applies a dataset event pushed from the broker. A
// dataset-reloaded event from another instance drops the local dataset so the
// next access fetches again. It reports whether anything was invalidated.
func (s *Session) HandleDatasetEvent(event pubsub.EventType, data []byte) (bool, error) {
	var payload pubsub.DatasetEvent
	if err := s.pubsub.ProcessMessage(data, &payload); err != nil {
		return false, err
	}
	if event != pubsub.EventDatasetReloaded {
		log.Debug("Ignoring dataset event", "event", event, "origin", payload.Origin)
		return false, nil
	}
	if payload.Origin == s.id {
		log.Debug("Ignoring own dataset event", "generation", payload.Generation)
		return false, nil
	}
	gen := s.reset()
	log.Info("Dataset invalidated by remote reload", "origin", payload.Origin, "remoteGeneration", payload.Generation, "generation", gen)
	return true, nil
}

// reset drops the cached dataset, the index and every panel. Later loads do
// not publish dataset-loaded again.
func (s *Session) reset() uint64 {
	gen := s.cache.Reset()
	s.index.Reset()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = nil
	s.published = true
	s.board.Reset(nil)
	return gen
}

// bind points the board at snapshot if it belongs to the current generation
// and the board is not already bound to it. It reports whether the first
// dataset-loaded event is still owed.
func (s *Session) bind(snapshot *dataset.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound == snapshot || snapshot.Generation != s.cache.Generation() {
		return false
	}
	s.bound = snapshot
	s.board.Reset(snapshot)
	log.Debug("Day board bound to dataset", "generation", snapshot.Generation, "days", len(snapshot.Days))

	if s.published {
		return false
	}
	s.published = true
	return true
}

func (s *Session) publish(event pubsub.EventType, snapshot *dataset.Snapshot) {
	payload := pubsub.DatasetEvent{
		Origin:     s.id,
		Generation: snapshot.Generation,
		Days:       len(snapshot.Days),
		LoadedAt:   snapshot.LoadedAt,
	}
	if newest := snapshot.Newest(); newest != nil {
		payload.NewestDay = newest.Day
		if winner := newest.Winner(); winner != nil {
			payload.Winner = winner.Name
		}
	}
	if err := s.pubsub.SendMessage(event, payload); err != nil {
		log.Error("Failed to publish dataset event", "error", err, "event", event)
	}
}

// Days lists every day, newest first.
func (s *Session) Days(ctx context.Context) ([]DayPreview, error) {
	snapshot, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	previews := make([]DayPreview, 0, len(snapshot.Days))
	for _, day := range snapshot.Days {
		preview := DayPreview{Day: day.Day, PlayerCount: len(day.Players)}
		if winner := day.Winner(); winner != nil {
			preview.Winner = winner.Name
			preview.WinnerTime = winner.Time
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

// Day returns the record for a day number.
func (s *Session) Day(ctx context.Context, day int) (*daystats.DayRecord, error) {
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s.cache.GetDay(ctx, day)
}

// Newest returns the day with the highest day number.
func (s *Session) Newest(ctx context.Context) (*daystats.DayRecord, error) {
	snapshot, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	newest := snapshot.Newest()
	if newest == nil {
		return nil, ErrNoDays
	}
	return newest, nil
}

// View returns the panel of a day.
func (s *Session) View(ctx context.Context, day int) (detail.View, error) {
	if _, err := s.Load(ctx); err != nil {
		return detail.View{}, err
	}
	return s.board.View(day)
}

// Open asks to reveal a day's leaderboard.
func (s *Session) Open(ctx context.Context, day int) (detail.View, error) {
	if _, err := s.Load(ctx); err != nil {
		return detail.View{}, err
	}
	return s.board.Open(day)
}

// Confirm answers the heavy-view warning of a day.
func (s *Session) Confirm(ctx context.Context, day int, proceed bool) (detail.View, error) {
	if _, err := s.Load(ctx); err != nil {
		return detail.View{}, err
	}
	return s.board.Confirm(day, proceed)
}

// Close collapses a day panel.
func (s *Session) Close(ctx context.Context, day int) (detail.View, error) {
	if _, err := s.Load(ctx); err != nil {
		return detail.View{}, err
	}
	return s.board.Close(day)
}

// Toggle closes an open day panel or opens a closed one.
func (s *Session) Toggle(ctx context.Context, day int) (detail.View, error) {
	if _, err := s.Load(ctx); err != nil {
		return detail.View{}, err
	}
	return s.board.Toggle(day)
}

// Status returns a snapshot of the in-memory state.
func (s *Session) Status() Status {
	status := Status{Generation: s.cache.Generation()}
	if snapshot, ok := s.cache.Peek(); ok {
		status.Loaded = true
		status.Days = len(snapshot.Days)
		status.LoadedAt = snapshot.LoadedAt
	}
	if idx, ok := s.index.Current(); ok && idx.Generation == status.Generation {
		status.Indexed = true
		status.Players = idx.Len()
	}
	if day, ok := s.board.Expanded(); ok {
		status.ExpandedDay = &day
	}
	return status
}

// Search resolves a player query and orders the matched records. An empty
// query resolves to StatusEmpty without touching the dataset.
func (s *Session) Search(ctx context.Context, query string, field search.Field, order search.Order) (PlayerSearch, error) {
	out := PlayerSearch{Field: field, Order: order}

	result := search.Resolve(nil, query)
	if result.Status != search.StatusEmpty {
		idx, err := s.index.EnsureIndex(ctx)
		if err != nil {
			return out, err
		}
		result = search.Resolve(idx, query)
		switch result.Status {
		case search.StatusFound:
			out.Records = search.Sort(result.Entry, field, order)
		case search.StatusNotFound:
			out.Candidates = search.Candidates(idx, result.Query, candidateLimit)
		}
	}
	out.Result = result

	s.metrics.IncSearchResolutions(string(result.Status))
	log.Debug("Player search resolved", "query", query, "status", result.Status)
	return out, nil
}

// Suggestions returns every indexed player name, collated.
func (s *Session) Suggestions(ctx context.Context) ([]string, error) {
	idx, err := s.index.EnsureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Suggestions(), nil
}
