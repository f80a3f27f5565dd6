package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const translateTTSURL = "https://translate.google.com/translate_tts"

// GoogleEngine fetches MP3 audio from the public translate TTS endpoint
// and plays it through an external player command. Results are cached on
// disk keyed by a hash of language and text, so repeated sentences cost
// one network round trip total.
type GoogleEngine struct {
	cacheDir   string
	player     []string
	lang       string
	httpClient *http.Client
}

// NewGoogleEngine creates the engine. player is the playback command
// (e.g. ["afplay"] or ["mpg123", "-q"]); the audio path is appended.
func NewGoogleEngine(cacheDir string, player []string) *GoogleEngine {
	os.MkdirAll(cacheDir, 0o755)
	return &GoogleEngine{
		cacheDir: cacheDir,
		player:   player,
		lang:     "zh-CN",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Voices returns the single unnamed service voice. Nothing here is
// classifiable by gender, so sequences degrade to one voice for all
// speakers — the documented graceful fallback.
func (e *GoogleEngine) Voices() []Voice {
	return []Voice{{Name: "Google " + e.lang, Lang: e.lang}}
}

func (e *GoogleEngine) cacheKey(text string) string {
	h := sha256.Sum256([]byte(e.lang + ":" + text))
	return hex.EncodeToString(h[:16])
}

// Speak synthesizes (or reuses cached audio for) the text and blocks
// until the player process exits.
func (e *GoogleEngine) Speak(ctx context.Context, u Utterance) error {
	path := filepath.Join(e.cacheDir, e.cacheKey(u.Text)+".mp3")
	if _, err := os.Stat(path); err != nil {
		if err := e.fetch(ctx, u.Text, path); err != nil {
			return err
		}
	}
	if len(e.player) == 0 {
		return fmt.Errorf("no audio player configured")
	}
	args := append(append([]string{}, e.player[1:]...), path)
	return exec.CommandContext(ctx, e.player[0], args...).Run()
}

func (e *GoogleEngine) fetch(ctx context.Context, text, path string) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", e.lang)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, translateTTSURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts request failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Cancel is a no-op; the player process dies with the Speak context.
func (e *GoogleEngine) Cancel() {}
