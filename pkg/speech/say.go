package speech

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// baseWPM is the default speaking rate of the system synthesizer; the
// utterance rate scales it.
const baseWPM = 175

// SayEngine speaks through the local `say` command (macOS). Voices are
// listed once at construction and filtered to Chinese ones, whose names
// (Tingting, Meijia, ...) feed the gender classification heuristic.
type SayEngine struct {
	voices []Voice
	runner func(ctx context.Context, name string, args ...string) error
}

// NewSayEngine lists available voices best-effort; a missing or failing
// `say` binary simply yields an empty catalog and default-voice playback.
func NewSayEngine() *SayEngine {
	e := &SayEngine{
		runner: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
	if out, err := exec.Command("say", "-v", "?").Output(); err == nil {
		e.voices = parseSayVoices(out)
	}
	return e
}

// parseSayVoices reads `say -v ?` output lines of the form
// "Tingting            zh_CN    # ..." keeping only Chinese voices.
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, rest, found := strings.Cut(line, "  ")
		if !found {
			continue
		}
		rest = strings.TrimSpace(rest)
		lang, _, _ := strings.Cut(rest, " ")
		lang = strings.TrimSpace(lang)
		if !strings.Contains(lang, "zh") && !strings.Contains(lang, "CN") {
			continue
		}
		voices = append(voices, Voice{Name: strings.TrimSpace(name), Lang: lang})
	}
	return voices
}

// Voices returns the Chinese voices found on the system.
func (e *SayEngine) Voices() []Voice { return e.voices }

// Speak runs one utterance and blocks until the process exits. Context
// cancellation kills the process, so Cancel has nothing extra to do.
func (e *SayEngine) Speak(ctx context.Context, u Utterance) error {
	args := []string{}
	if u.Voice.Name != "" {
		args = append(args, "-v", u.Voice.Name)
	}
	rate := u.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	args = append(args, "-r", strconv.Itoa(int(baseWPM*rate)), "--", u.Text)
	return e.runner(ctx, "say", args...)
}

// Cancel is a no-op; cancellation happens through the Speak context.
func (e *SayEngine) Cancel() {}
