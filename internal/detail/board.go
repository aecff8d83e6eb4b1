package detail

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/dataset"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
)

// Board tracks the reveal state of every day panel for one dataset
// generation. At most one panel is loading or expanded at a time.
type Board struct {
	scheduler Scheduler
	metrics   metrics.Metrics

	mu       sync.Mutex
	snapshot *dataset.Snapshot
	panels   map[int]*panel
	active   *panel
	seq      uint64
}

// NewBoard creates a board for snapshot. snapshot may be nil until the
// dataset has loaded; every day is unknown until then.
func NewBoard(snapshot *dataset.Snapshot, scheduler Scheduler, metrics metrics.Metrics) *Board {
	return &Board{
		scheduler: scheduler,
		metrics:   metrics,
		snapshot:  snapshot,
		panels:    make(map[int]*panel),
	}
}

// Reset rebinds the board to a new snapshot and forgets every panel,
// including acknowledged warnings.
func (b *Board) Reset(snapshot *dataset.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = snapshot
	b.panels = make(map[int]*panel)
	b.active = nil
}

// Open asks to reveal a day's leaderboard. A day whose warning was never
// acknowledged moves to Confirming and nothing else changes.
func (b *Board) Open(day int) (View, error) {
	b.mu.Lock()
	p, err := b.panel(day)
	if err != nil {
		b.mu.Unlock()
		return View{}, err
	}

	var job func()
	switch p.state {
	case Collapsed:
		if !p.acknowledged {
			log.Debug("Day panel awaiting confirmation", "day", day)
			p.state = Confirming
		} else {
			job = b.beginLoad(day, p)
		}
	case Confirming, Loading, Expanded:
		log.Debug("Day panel already open", "day", day, "state", p.state)
	}
	b.mu.Unlock()

	return b.run(day, job)
}

// Confirm answers the heavy-view warning for a day in Confirming. Declining
// collapses the panel without touching any other panel. Proceeding makes the
// acknowledgement sticky and opens the panel.
func (b *Board) Confirm(day int, proceed bool) (View, error) {
	b.mu.Lock()
	p, err := b.panel(day)
	if err != nil {
		b.mu.Unlock()
		return View{}, err
	}
	if p.state != Confirming {
		b.mu.Unlock()
		return View{}, ErrNotConfirming
	}

	var job func()
	if proceed {
		log.Info("Heavy view acknowledged", "day", day)
		p.acknowledged = true
		job = b.beginLoad(day, p)
	} else {
		log.Debug("Heavy view declined", "day", day)
		p.state = Collapsed
	}
	b.mu.Unlock()

	return b.run(day, job)
}

// Close collapses a day panel from any state.
func (b *Board) Close(day int) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.panel(day)
	if err != nil {
		return View{}, err
	}
	b.collapse(day, p)
	return b.view(day, p), nil
}

// Toggle closes an open panel and opens a closed one.
func (b *Board) Toggle(day int) (View, error) {
	state, err := b.State(day)
	if err != nil {
		return View{}, err
	}
	if state == Loading || state == Expanded {
		return b.Close(day)
	}
	return b.Open(day)
}

// State returns the current state of a day panel.
func (b *Board) State(day int) (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.panel(day)
	if err != nil {
		return Collapsed, err
	}
	return p.state, nil
}

// View returns a copy of a day panel, with its sorted players once expanded.
func (b *Board) View(day int) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.panel(day)
	if err != nil {
		return View{}, err
	}
	return b.view(day, p), nil
}

// Expanded returns the day of the expanded panel, if any.
func (b *Board) Expanded() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for day, p := range b.panels {
		if p.state == Expanded {
			return day, true
		}
	}
	return 0, false
}

// panel returns the panel for day, creating it on first use. Callers hold b.mu.
func (b *Board) panel(day int) (*panel, error) {
	if p, ok := b.panels[day]; ok {
		return p, nil
	}
	if b.snapshot == nil {
		return nil, ErrUnknownDay
	}
	record, ok := b.snapshot.Day(day)
	if !ok {
		return nil, ErrUnknownDay
	}
	p := &panel{record: record, state: Collapsed}
	b.panels[day] = p
	return p, nil
}

// beginLoad collapses every other open panel and moves p to Loading. It
// returns the deferred work that materializes the leaderboard, or nil when
// the leaderboard was already sorted and p went straight to Expanded.
// Callers hold b.mu.
func (b *Board) beginLoad(day int, p *panel) func() {
	for otherDay, other := range b.panels {
		if other != p && (other.state == Loading || other.state == Expanded) {
			log.Debug("Collapsing other day panel", "day", otherDay, "opening", day)
			b.collapse(otherDay, other)
		}
	}

	b.seq++
	p.token = b.seq
	p.state = Loading
	b.active = p

	if p.record.Materialized() {
		log.Debug("Leaderboard already sorted, expanding", "day", day)
		b.expand(day, p)
		return nil
	}

	token := p.token
	record := p.record
	log.Debug("Scheduling leaderboard load", "day", day, "players", len(record.Players))
	return func() {
		sortedBefore := record.Materialized()
		record.SortedPlayers()
		if !sortedBefore {
			b.metrics.IncLeaderboardMaterializations()
		}
		b.complete(day, p, token)
	}
}

// complete applies a finished load unless the panel has moved on since it
// was scheduled.
func (b *Board) complete(day int, p *panel, token uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.state != Loading || p.token != token || b.active != p {
		log.Debug("Discarding stale leaderboard load", "day", day, "state", p.state)
		return
	}
	b.expand(day, p)
}

func (b *Board) expand(day int, p *panel) {
	p.state = Expanded
	b.metrics.IncPanelExpansions()
	log.Info("Day panel expanded", "day", day)
}

func (b *Board) collapse(day int, p *panel) {
	if p.state != Collapsed {
		log.Debug("Day panel collapsed", "day", day, "from", p.state)
	}
	p.state = Collapsed
	if b.active == p {
		b.active = nil
	}
}

func (b *Board) view(day int, p *panel) View {
	v := View{
		Day:          day,
		State:        p.state,
		Acknowledged: p.acknowledged,
	}
	switch p.state {
	case Confirming:
		v.Warning = HeavyViewWarning
	case Expanded:
		v.Players = p.record.SortedPlayers()
	}
	return v
}

func (b *Board) run(day int, job func()) (View, error) {
	if job != nil {
		b.scheduler.Defer(job)
	}
	return b.View(day)
}
