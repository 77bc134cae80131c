// Package store provides SQLite-backed persistence for Luma.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
	"go.uber.org/zap"
)

// SQLiteStore is the SQLite-backed data store.
// Thread-safe; serializes its own writes so callers need no external locking.
type SQLiteStore struct {
	mu  sync.RWMutex
	db  *sql.DB
	log *zap.Logger
}

// schema defines the memories table plus the vec0 similarity index
// and the settings table that backs persisted app preferences.
const schema = `
-- Memories: one row per saved photo or flattened collage.
-- The image payload is embedded (data-URI), keeping the store self-contained.
CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    image TEXT NOT NULL,
    caption TEXT NOT NULL,
    reflection TEXT,
    mood TEXT,
    is_favorite INTEGER NOT NULL DEFAULT 0,
    timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_memories_mood ON memories(mood);
CREATE INDEX IF NOT EXISTS idx_memories_favorite ON memories(is_favorite) WHERE is_favorite = 1;

-- Settings: key-value preferences (animation speed, sound cues, ...).
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// vecSchema is created separately: vec0 virtual tables cannot use IF NOT EXISTS
// inside the same batch on every sqlite-vec version, so probe first.
const vecSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS memory_vec USING vec0(
    memory_id TEXT PRIMARY KEY,
    signature FLOAT[64]
);
`

// SignatureDim is the dimensionality of the color signature stored per memory.
const SignatureDim = 64

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:", zap.NewNop())
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
// Schema creation is implicit and idempotent.
func NewSQLiteStoreWithDSN(dsn string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(vecSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create vec schema: %w", err)
	}

	log.Debug("store opened", zap.String("dsn", dsn))
	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Memory CRUD
// =============================================================================

// SaveAll upserts one or more memories in a single transaction.
// Records without a timestamp receive one at save time; records without a
// caption receive the placeholder. The batch either commits whole or the
// store surfaces an error with nothing persisted and the caller's records
// unmodified.
func (s *SQLiteStore) SaveAll(records []*Memory) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// defaults are written back to the records only after the commit,
	// so a failed batch leaves the caller's inputs untouched
	now := time.Now().UnixMilli()
	timestamps := make([]int64, len(records))
	captions := make([]string, len(records))
	for i, m := range records {
		if m.ID == "" {
			return fmt.Errorf("save memory: empty id")
		}
		timestamps[i] = m.Timestamp
		if timestamps[i] == 0 {
			timestamps[i] = now
		}
		captions[i] = m.Caption
		if captions[i] == "" {
			captions[i] = DefaultCaption
		}

		_, err := tx.Exec(`
			INSERT INTO memories (id, image, caption, reflection, mood, is_favorite, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				image = excluded.image,
				caption = excluded.caption,
				reflection = excluded.reflection,
				mood = excluded.mood,
				is_favorite = excluded.is_favorite
		`, m.ID, m.Image, captions[i], m.Reflection, string(m.Mood), boolToInt(m.IsFavorite), timestamps[i])
		if err != nil {
			return fmt.Errorf("save memory %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	for i, m := range records {
		m.Timestamp = timestamps[i]
		m.Caption = captions[i]
	}

	s.log.Debug("memories saved", zap.Int("count", len(records)))
	return nil
}

// LoadAll returns every memory, newest first.
// A fresh store yields an empty slice, never an error.
func (s *SQLiteStore) LoadAll() ([]*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, image, caption, reflection, mood, is_favorite, timestamp
		FROM memories ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	defer rows.Close()

	memories := []*Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}

	return memories, rows.Err()
}

// Get retrieves a single memory by ID. Returns nil if not found.
func (s *SQLiteStore) Get(id string) (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, image, caption, reflection, mood, is_favorite, timestamp
		FROM memories WHERE id = ?
	`, id)

	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteOne removes a memory and its signature.
// Deleting an id that does not exist is a no-op, not an error.
func (s *SQLiteStore) DeleteOne(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM memory_vec WHERE memory_id = ?", id); err != nil {
		return fmt.Errorf("delete signature %s: %w", id, err)
	}
	if _, err := s.db.Exec("DELETE FROM memories WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete memory %s: %w", id, err)
	}
	return nil
}

// UpdateFields merges the non-nil fields of update into an existing memory.
// The image payload and timestamp are never touched. Returns ErrNotFound if
// no memory has the given id; silently dropping an edit would be surprising.
func (s *SQLiteStore) UpdateFields(id string, update MemoryUpdate) error {
	if update.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if update.Caption != nil {
		set = append(set, "caption = ?")
		args = append(args, *update.Caption)
	}
	if update.Reflection != nil {
		set = append(set, "reflection = ?")
		args = append(args, *update.Reflection)
	}
	if update.Mood != nil {
		set = append(set, "mood = ?")
		args = append(args, string(*update.Mood))
	}
	if update.IsFavorite != nil {
		set = append(set, "is_favorite = ?")
		args = append(args, boolToInt(*update.IsFavorite))
	}
	args = append(args, id)

	res, err := s.db.Exec("UPDATE memories SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update memory %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update memory %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update memory %s: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the total number of memories.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM memories").Scan(&count)
	return count, err
}

// =============================================================================
// Color-signature similarity (sqlite-vec)
// =============================================================================

// PutEmbedding stores or replaces the color signature for a memory.
func (s *SQLiteStore) PutEmbedding(id string, signature []float32) error {
	if len(signature) != SignatureDim {
		return fmt.Errorf("put embedding %s: want %d dims, got %d", id, SignatureDim, len(signature))
	}

	vec, err := json.Marshal(signature)
	if err != nil {
		return fmt.Errorf("put embedding %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// vec0 virtual tables don't support ON CONFLICT; delete + insert instead.
	if _, err := s.db.Exec("DELETE FROM memory_vec WHERE memory_id = ?", id); err != nil {
		return fmt.Errorf("put embedding %s: %w", id, err)
	}
	_, err = s.db.Exec("INSERT INTO memory_vec (memory_id, signature) VALUES (?, ?)", id, string(vec))
	if err != nil {
		return fmt.Errorf("put embedding %s: %w", id, err)
	}
	return nil
}

// SimilarMemories returns up to k memory ids ordered by color-signature
// distance to the given memory. The memory itself is excluded. Memories
// without a stored signature never appear.
func (s *SQLiteStore) SimilarMemories(id string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var vec string
	err := s.db.QueryRow("SELECT vec_to_json(signature) FROM memory_vec WHERE memory_id = ?", id).Scan(&vec)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("similar memories %s: %w", id, err)
	}

	// k+1 because the anchor memory matches itself at distance 0.
	rows, err := s.db.Query(`
		SELECT memory_id FROM memory_vec
		WHERE signature MATCH ? AND k = ?
		ORDER BY distance
	`, vec, k+1)
	if err != nil {
		return nil, fmt.Errorf("similar memories %s: %w", id, err)
	}
	defer rows.Close()

	ids := make([]string, 0, k)
	for rows.Next() {
		var mid string
		if err := rows.Scan(&mid); err != nil {
			return nil, err
		}
		if mid == id {
			continue
		}
		ids = append(ids, mid)
	}
	if len(ids) > k {
		ids = ids[:k]
	}

	return ids, rows.Err()
}

// =============================================================================
// Settings
// =============================================================================

// PutSetting stores a preference value under key.
func (s *SQLiteStore) PutSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns the stored value and whether it exists.
func (s *SQLiteStore) GetSetting(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// =============================================================================
// Export / Import
// =============================================================================

type exportData struct {
	Memories []*Memory         `json:"memories"`
	Settings map[string]string `json:"settings,omitempty"`
}

// Export serializes all tables to JSON bytes.
// Portable across store instances; signatures are recomputed on import by the caller.
func (s *SQLiteStore) Export() ([]byte, error) {
	memories, err := s.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("export memories: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := map[string]string{}
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return json.Marshal(exportData{Memories: memories, Settings: settings})
}

// Import restores the store from an exported JSON byte slice.
// Clears all existing data and re-inserts from the export.
func (s *SQLiteStore) Import(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var importData exportData
	if err := json.Unmarshal(data, &importData); err != nil {
		return fmt.Errorf("import unmarshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("import begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"memory_vec", "memories", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, m := range importData.Memories {
		_, err := tx.Exec(`
			INSERT INTO memories (id, image, caption, reflection, mood, is_favorite, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.Image, m.Caption, m.Reflection, string(m.Mood), boolToInt(m.IsFavorite), m.Timestamp)
		if err != nil {
			return fmt.Errorf("import memory %s: %w", m.ID, err)
		}
	}

	now := time.Now().UnixMilli()
	for k, v := range importData.Settings {
		if _, err := tx.Exec("INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)", k, v, now); err != nil {
			return fmt.Errorf("import setting %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// Helpers
// =============================================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row rowScanner) (*Memory, error) {
	var m Memory
	var reflection, mood sql.NullString
	var isFavorite int

	if err := row.Scan(&m.ID, &m.Image, &m.Caption, &reflection, &mood, &isFavorite, &m.Timestamp); err != nil {
		return nil, err
	}

	m.IsFavorite = isFavorite != 0
	if reflection.Valid {
		m.Reflection = reflection.String
	}
	if mood.Valid {
		m.Mood = Mood(mood.String)
	}
	return &m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time interface check
var _ Storer = (*SQLiteStore)(nil)
