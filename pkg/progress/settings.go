package progress

import "database/sql"

// Setting keys shared by the study and reader views.
const (
	KeyThemeColor = "hsk-color"
	KeyThemeMode  = "hsk-mode"
)

// Settings is a small string key-value store for UI preferences
// (theme color, light/dark/system mode).
type Settings struct {
	db DBExecutor
}

// NewSettings creates a settings store over the given connection.
func NewSettings(db DBExecutor) *Settings {
	return &Settings{db: db}
}

// Get returns the stored value for key, or fallback when absent.
func (s *Settings) Get(key, fallback string) string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows || err != nil {
		return fallback
	}
	return value
}

// Put stores a value, replacing any previous one.
func (s *Settings) Put(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
