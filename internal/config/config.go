package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// DataDir holds local copies of the level and book JSON files.
	DataDir string
	// BaseURL is the remote site the data files are fetched from when
	// they are not present locally.
	BaseURL string
	// CacheDir stores downloaded data files and synthesized audio.
	CacheDir string
	// DBPath is the SQLite database location.
	DBPath string

	// TTSEngine selects the speech backend: say, google or elevenlabs.
	TTSEngine        string
	ElevenLabsAPIKey string
	// PlayerCommand plays downloaded audio, e.g. "afplay" or "mpg123 -q".
	PlayerCommand []string

	// ReportURL is the issue-report page; the study view appends context.
	ReportURL string
}

func Load() *Config {
	// Missing .env just means the system environment decides everything.
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".hskhub")

	return &Config{
		DataDir:          getEnv("HSKHUB_DATA_DIR", "data"),
		BaseURL:          getEnv("HSKHUB_BASE_URL", ""),
		CacheDir:         getEnv("HSKHUB_CACHE_DIR", filepath.Join(stateDir, "cache")),
		DBPath:           getEnv("HSKHUB_DB", filepath.Join(stateDir, "hskhub.db")),
		TTSEngine:        getEnv("HSKHUB_TTS", "say"),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
		PlayerCommand:    strings.Fields(getEnv("HSKHUB_PLAYER", "afplay")),
		ReportURL:        getEnv("HSKHUB_REPORT_URL", "https://github.com/hskhub/hskhub/issues/new"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
