package search

import (
	"sort"
	"strings"

	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/dataset"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Index maps normalized player names to their records for one dataset
// generation. It is immutable once built.
type Index struct {
	Generation uint64

	entries     map[string]*Entry
	order       []*Entry
	suggestions []string
}

// NormalizeName returns the index key for a player name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Build indexes every player appearance in snapshot, walking days in
// snapshot order and players in payload order.
func Build(snapshot *dataset.Snapshot) *Index {
	idx := &Index{
		Generation: snapshot.Generation,
		entries:    make(map[string]*Entry),
	}
	for _, day := range snapshot.Days {
		for _, player := range day.Players {
			idx.add(day.Day, player)
		}
	}
	idx.suggestions = sortedNames(idx.order)
	return idx
}

func (idx *Index) add(day int, player daystats.PlayerEntry) {
	key := NormalizeName(player.Name)
	if key == "" {
		return
	}
	entry, ok := idx.entries[key]
	if !ok {
		entry = &Entry{Key: key, Name: player.Name}
		idx.entries[key] = entry
		idx.order = append(idx.order, entry)
	}
	entry.Records = append(entry.Records, Record{
		Day:      day,
		Rank:     player.Rank,
		Time:     player.Time,
		Seconds:  daystats.ParseTimeToSeconds(player.Time),
		BoxCount: player.BoxCount,
	})
}

// sortedNames orders canonical names ignoring case and accents. Names that
// collate equal keep first-seen order.
func sortedNames(entries []*Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	c := collate.New(language.English, collate.Loose)
	sort.SliceStable(names, func(i, j int) bool {
		return c.CompareString(names[i], names[j]) < 0
	})
	return names
}

// Lookup returns the entry for an already normalized key.
func (idx *Index) Lookup(key string) (*Entry, bool) {
	entry, ok := idx.entries[key]
	return entry, ok
}

// Suggestions returns the collated list of canonical player names.
func (idx *Index) Suggestions() []string {
	out := make([]string, len(idx.suggestions))
	copy(out, idx.suggestions)
	return out
}

// Len returns the number of distinct players.
func (idx *Index) Len() int {
	return len(idx.order)
}
