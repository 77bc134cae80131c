// Package store provides SQLite-backed persistence for Luma.
// This is the unified data layer replacing the IndexedDB object store in TypeScript.
package store

import "errors"

// DefaultCaption is applied when a memory is saved without one.
const DefaultCaption = "a beautiful moment ✨"

// Mood is a small fixed vocabulary describing a saved memory.
type Mood string

const (
	MoodCalm      Mood = "calm"
	MoodJoyful    Mood = "joyful"
	MoodNostalgic Mood = "nostalgic"
	MoodPeaceful  Mood = "peaceful"
)

// KnownMood reports whether m is one of the fixed mood values.
// Unknown moods are stored as-is; views simply never match them.
func KnownMood(m Mood) bool {
	switch m {
	case MoodCalm, MoodJoyful, MoodNostalgic, MoodPeaceful:
		return true
	}
	return false
}

// Memory is the sole persistent entity: one saved photo or flattened collage.
// Image holds the encoded raster payload (data-URI or raw encoded bytes) and
// is immutable after creation; Timestamp is set once and drives the default
// newest-first ordering.
type Memory struct {
	ID         string `json:"id"`
	Image      string `json:"image"`
	Caption    string `json:"caption"`
	Reflection string `json:"reflection,omitempty"`
	Mood       Mood   `json:"mood,omitempty"`
	IsFavorite bool   `json:"isFavorite"`
	Timestamp  int64  `json:"timestamp"`
}

// MemoryUpdate is a partial update over the mutable fields of a Memory.
// Nil fields are left untouched; Image and Timestamp can never be patched.
type MemoryUpdate struct {
	Caption    *string `json:"caption,omitempty"`
	Reflection *string `json:"reflection,omitempty"`
	Mood       *Mood   `json:"mood,omitempty"`
	IsFavorite *bool   `json:"isFavorite,omitempty"`
}

// Empty reports whether the update patches nothing.
func (u MemoryUpdate) Empty() bool {
	return u.Caption == nil && u.Reflection == nil && u.Mood == nil && u.IsFavorite == nil
}

// ErrNotFound is returned by UpdateFields when no memory has the given id.
// Deletes are tolerant and never return it.
var ErrNotFound = errors.New("memory not found")

// Storer defines the interface for memory persistence.
// SQLiteStore is the sole implementation.
type Storer interface {
	// Memories
	SaveAll(records []*Memory) error
	LoadAll() ([]*Memory, error)
	Get(id string) (*Memory, error)
	DeleteOne(id string) error
	UpdateFields(id string, update MemoryUpdate) error
	Count() (int, error)

	// Color-signature similarity (vec0)
	PutEmbedding(id string, signature []float32) error
	SimilarMemories(id string, k int) ([]string, error)

	// Settings (app preferences persisted across sessions)
	PutSetting(key, value string) error
	GetSetting(key string) (string, bool, error)

	// Export/Import (database serialization for OPFS/file sync)
	Export() ([]byte, error)
	Import(data []byte) error

	// Lifecycle
	Close() error
}
