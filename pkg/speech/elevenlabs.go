package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// ElevenLabsEngine streams synthesis over the ElevenLabs websocket API.
// Each Speak dials a fresh connection, sends the text, collects the audio
// chunks and plays the result through the configured player command.
type ElevenLabsEngine struct {
	apiKey  string
	modelID string
	player  []string

	interrupted atomic.Bool
	conn        *websocket.Conn
	connMu      sync.Mutex
}

// Multilingual voices usable for Mandarin playback.
var elevenLabsVoices = []Voice{
	{Name: "Rachel", ID: "21m00Tcm4TlvDq8ikWAM", Lang: "zh-CN"},
	{Name: "Adam", ID: "pNInz6obpgDQGcFmaJgB", Lang: "zh-CN"},
	{Name: "Bella", ID: "EXAVITQu4vr4xnSDxMaL", Lang: "zh-CN"},
	{Name: "Josh", ID: "TxGEqnHWrfWFTfGW9XjX", Lang: "zh-CN"},
}

// NewElevenLabsEngine creates the engine with the low-latency flash model.
func NewElevenLabsEngine(apiKey string, player []string) *ElevenLabsEngine {
	return &ElevenLabsEngine{
		apiKey:  apiKey,
		modelID: "eleven_flash_v2_5",
		player:  player,
	}
}

// Voices returns the fixed multilingual catalog.
func (e *ElevenLabsEngine) Voices() []Voice { return elevenLabsVoices }

// Cancel interrupts the current synthesis by closing the websocket.
func (e *ElevenLabsEngine) Cancel() {
	e.interrupted.Store(true)
	e.connMu.Lock()
	if e.conn != nil {
		e.conn.Close()
	}
	e.connMu.Unlock()
}

// Speak streams one utterance and blocks until playback finishes.
func (e *ElevenLabsEngine) Speak(ctx context.Context, u Utterance) error {
	e.interrupted.Store(false)

	voiceID := u.Voice.ID
	if voiceID == "" {
		voiceID = elevenLabsVoices[0].ID
	}
	audio, err := e.stream(ctx, voiceID, u.Text)
	if err != nil {
		return err
	}
	if len(audio) == 0 {
		return fmt.Errorf("elevenlabs: no audio returned")
	}

	f, err := os.CreateTemp("", "hskhub-tts-*.mp3")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(audio); err != nil {
		f.Close()
		return err
	}
	f.Close()

	if len(e.player) == 0 {
		return fmt.Errorf("no audio player configured")
	}
	args := append(append([]string{}, e.player[1:]...), f.Name())
	return exec.CommandContext(ctx, e.player[0], args...).Run()
}

func (e *ElevenLabsEngine) stream(ctx context.Context, voiceID, text string) ([]byte, error) {
	url := fmt.Sprintf("wss://api.elevenlabs.io/v1/text-to-speech/%s/stream-input?model_id=%s&output_format=mp3_44100_128", voiceID, e.modelID)

	header := http.Header{}
	header.Set("xi-api-key", e.apiKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs connect: %w", err)
	}

	e.connMu.Lock()
	e.conn = conn
	e.connMu.Unlock()
	defer func() {
		e.connMu.Lock()
		e.conn = nil
		e.connMu.Unlock()
		conn.Close()
	}()

	payload := map[string]interface{}{
		"text":                   text,
		"try_trigger_generation": true,
	}
	if err := conn.WriteJSON(payload); err != nil {
		return nil, fmt.Errorf("elevenlabs send: %w", err)
	}
	// Empty text signals end of input.
	if err := conn.WriteJSON(map[string]string{"text": ""}); err != nil {
		return nil, fmt.Errorf("elevenlabs end signal: %w", err)
	}

	var audio []byte
	for {
		if e.interrupted.Load() || ctx.Err() != nil {
			return nil, context.Canceled
		}
		var msg struct {
			Audio   string `json:"audio"`
			IsFinal bool   `json:"isFinal"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if e.interrupted.Load() {
				return nil, context.Canceled
			}
			// The server closes the socket once generation completes.
			break
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("elevenlabs decode audio: %w", err)
			}
			audio = append(audio, chunk...)
		}
		if msg.IsFinal {
			break
		}
	}
	return audio, nil
}
