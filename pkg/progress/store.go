package progress

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const keyPrefix = "hsk-progress-"

// Store reads and writes the learned-word set for each level. Each level
// owns a single row holding a JSON-encoded array of word identifiers;
// every save rewrites the whole row, so a toggle is one durable write.
type Store struct {
	db DBExecutor
}

// NewStore creates a store over the given connection or transaction.
func NewStore(db DBExecutor) *Store {
	return &Store{db: db}
}

func levelKey(level string) string { return keyPrefix + level }

// Load returns the learned set for a level. A missing row or a value that
// fails to decode yields an empty set: corrupt progress is treated as no
// progress rather than surfaced as an error.
func (s *Store) Load(level string) (Set, error) {
	var encoded string
	err := s.db.QueryRow(`SELECT word_ids FROM progress WHERE key = ?`, levelKey(level)).Scan(&encoded)
	if err == sql.ErrNoRows {
		return NewSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress for level %s: %w", level, err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(encoded), &ids); err != nil {
		return NewSet(), nil
	}
	return NewSet(ids...), nil
}

// Save persists the full learned set for a level.
func (s *Store) Save(level string, set Set) error {
	encoded, err := json.Marshal(set.Sorted())
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO progress (key, word_ids, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		  word_ids = excluded.word_ids,
		  updated_at = excluded.updated_at`,
		levelKey(level), string(encoded), time.Now())
	if err != nil {
		return fmt.Errorf("save progress for level %s: %w", level, err)
	}
	return nil
}

// Reset removes all recorded progress for a level.
func (s *Store) Reset(level string) error {
	if _, err := s.db.Exec(`DELETE FROM progress WHERE key = ?`, levelKey(level)); err != nil {
		return fmt.Errorf("reset progress for level %s: %w", level, err)
	}
	return nil
}
