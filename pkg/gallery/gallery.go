// Package gallery derives read-only views over saved memories.
// Every projection is a pure function of its input slice; mutations go
// through the store and views are rebuilt from LoadAll afterwards.
package gallery

import (
	"sort"
	"strings"

	"github.com/lumabooth/luma/internal/store"
)

// Query narrows a listing. The zero value selects everything.
type Query struct {
	FavoritesOnly  bool         `json:"favoritesOnly"`
	WithReflection bool         `json:"withReflection"`
	Moods          []store.Mood `json:"moods,omitempty"`
	Limit          int          `json:"limit,omitempty"`
}

// Project filters and orders memories for display, newest first.
// The input slice is never modified.
func Project(memories []*store.Memory, q Query) []*store.Memory {
	moodSet := make(map[store.Mood]bool, len(q.Moods))
	for _, m := range q.Moods {
		moodSet[m] = true
	}

	out := make([]*store.Memory, 0, len(memories))
	for _, m := range memories {
		if q.FavoritesOnly && !m.IsFavorite {
			continue
		}
		if q.WithReflection && strings.TrimSpace(m.Reflection) == "" {
			continue
		}
		if len(moodSet) > 0 && !moodSet[m.Mood] {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Journal lists memories that carry a written reflection, newest first.
func Journal(memories []*store.Memory) []*store.Memory {
	return Project(memories, Query{WithReflection: true})
}

// Favorites lists favorited memories, newest first.
func Favorites(memories []*store.Memory) []*store.Memory {
	return Project(memories, Query{FavoritesOnly: true})
}

// MoodCounts tallies memories per mood for the journal's filter chips.
func MoodCounts(memories []*store.Memory) map[store.Mood]int {
	counts := make(map[store.Mood]int)
	for _, m := range memories {
		if m.Mood != "" {
			counts[m.Mood]++
		}
	}
	return counts
}
