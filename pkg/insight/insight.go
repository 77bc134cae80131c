// Package insight tags journal reflections with mood suggestions and
// display keywords. Matching is dictionary-driven: an Aho-Corasick
// automaton scans the text for mood-evocative phrases in O(n).
package insight

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/lumabooth/luma/internal/store"
)

// moodKeywords maps each mood to the phrases that evoke it.
// Patterns are matched case-insensitively against whole reflections.
var moodKeywords = map[store.Mood][]string{
	store.MoodCalm: {
		"calm", "quiet", "still", "slow", "breathe", "rest",
		"unhurried", "settled", "soft light",
	},
	store.MoodJoyful: {
		"joy", "joyful", "happy", "laugh", "laughing", "smile",
		"fun", "celebrate", "giggle", "dancing",
	},
	store.MoodNostalgic: {
		"remember", "memory", "miss", "back then", "childhood",
		"old times", "used to", "nostalgic", "faded",
	},
	store.MoodPeaceful: {
		"peace", "peaceful", "serene", "gentle", "tranquil",
		"sunset", "warm", "cozy", "home",
	},
}

// Tagger suggests moods and extracts keywords from reflection text.
type Tagger struct {
	ac           *ahocorasick.Automaton
	patternMoods []store.Mood // pattern index -> mood
	stop         *stopwords.Stopwords
}

// NewTagger compiles the mood dictionary.
func NewTagger() (*Tagger, error) {
	var patterns []string
	var moods []store.Mood
	for _, mood := range []store.Mood{
		store.MoodCalm, store.MoodJoyful, store.MoodNostalgic, store.MoodPeaceful,
	} {
		for _, kw := range moodKeywords[mood] {
			patterns = append(patterns, kw)
			moods = append(moods, mood)
		}
	}

	// LeftmostLongest so "back then" wins over any shorter overlap.
	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("compiling mood dictionary: %w", err)
	}

	return &Tagger{
		ac:           ac,
		patternMoods: moods,
		stop:         stopwords.MustGet("en"),
	}, nil
}

// SuggestMood scans the reflection and returns the mood whose keywords
// appear most often. Text that evokes nothing returns ok=false; that is
// not an error, journals are free-form.
func (t *Tagger) SuggestMood(reflection string) (store.Mood, bool) {
	if reflection == "" {
		return "", false
	}

	haystack := []byte(strings.ToLower(reflection))
	counts := make(map[store.Mood]int)
	for _, m := range t.ac.FindAllOverlapping(haystack) {
		counts[t.patternMoods[m.PatternID]]++
	}
	if len(counts) == 0 {
		return "", false
	}

	// Deterministic tie-break: highest count, then mood name order.
	best := store.Mood("")
	bestCount := 0
	for _, mood := range []store.Mood{
		store.MoodCalm, store.MoodJoyful, store.MoodNostalgic, store.MoodPeaceful,
	} {
		if c := counts[mood]; c > bestCount {
			best, bestCount = mood, c
		}
	}
	return best, true
}

// Keywords extracts up to limit display keywords from the reflection,
// most frequent first. Stopwords and short tokens are dropped.
func (t *Tagger) Keywords(reflection string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	counts := make(map[string]int)
	first := make(map[string]int) // token -> first position, for stable order
	pos := 0
	for _, raw := range strings.FieldsFunc(reflection, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		tok := strings.ToLower(strings.Trim(raw, "'"))
		if len(tok) < 3 {
			continue
		}
		if t.stop != nil && t.stop.Contains(tok) {
			continue
		}
		if _, seen := counts[tok]; !seen {
			first[tok] = pos
		}
		counts[tok]++
		pos++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return first[keys[i]] < first[keys[j]]
	})

	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
