package speech

import (
	"context"
	"log"
	"sync"
)

// DefaultRate is slightly slower than natural speed for clarity.
const DefaultRate = 0.9

// Utterance is one synthesis request.
type Utterance struct {
	Text  string
	Voice Voice
	Rate  float64
}

// Engine synthesizes speech. Speak blocks until the utterance finishes or
// ctx is canceled; Cancel aborts any in-flight synthesis promptly.
type Engine interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) error
	Cancel()
}

// Events are the sequencer's callbacks into the hosting view. OnStart
// drives the highlight/scroll of the playing sentence, OnEnd clears it,
// OnDone restores the control's icon when the sequence finishes or is
// stopped for any reason.
type Events struct {
	OnStart func(control string, index int)
	OnEnd   func(control string, index int)
	OnError func(control string, index int, err error)
	OnDone  func(control string)
}

// Sequencer plays one section's sentences in order, one utterance at a
// time. At most one sequence is active process-wide; starting a new one
// stops the current one first.
type Sequencer struct {
	engine   Engine
	classify Classifier
	logger   *log.Logger
	rate     float64

	mu      sync.Mutex
	control string
	cancel  context.CancelFunc
	gen     int
}

// NewSequencer wires an engine and an optional classifier (nil uses
// KeywordClassifier) and logger.
func NewSequencer(engine Engine, classify Classifier, logger *log.Logger) *Sequencer {
	return &Sequencer{
		engine:   engine,
		classify: classify,
		logger:   logger,
		rate:     DefaultRate,
	}
}

// Playing returns the control whose sequence is active, or "".
func (s *Sequencer) Playing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.control
}

// Toggle implements the playback control contract: invoked on the control
// that is already playing it stops; invoked while a different control
// plays it stops that one and starts this one. Returns true when a new
// sequence was started.
func (s *Sequencer) Toggle(ctx context.Context, control string, lines []Line, ev Events) bool {
	s.mu.Lock()
	if s.control == control && control != "" {
		s.stopLocked()
		s.mu.Unlock()
		return false
	}
	if s.control != "" {
		s.stopLocked()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.control = control
	s.cancel = cancel
	s.mu.Unlock()

	asg := AssignVoices(lines, s.engine.Voices(), s.classify)
	go s.run(runCtx, gen, control, lines, asg, ev)
	return true
}

// Stop cancels the active sequence, if any. The running goroutine clears
// the current highlight and fires OnDone on its way out.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Sequencer) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.engine.Cancel()
	s.control = ""
	// Invalidate the in-flight goroutine's state cleanup.
	s.gen++
}

func (s *Sequencer) run(ctx context.Context, gen int, control string, lines []Line, asg Assignment, ev Events) {
	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.control = ""
			s.cancel = nil
		}
		s.mu.Unlock()
		if ev.OnDone != nil {
			ev.OnDone(control)
		}
	}()

	for i, line := range lines {
		if ctx.Err() != nil {
			return
		}
		if ev.OnStart != nil {
			ev.OnStart(control, i)
		}
		err := s.engine.Speak(ctx, Utterance{
			Text:  line.SpokenText(),
			Voice: asg.VoiceFor(line.Speaker),
			Rate:  s.rate,
		})
		if ev.OnEnd != nil {
			ev.OnEnd(control, i)
		}
		if err != nil {
			if ctx.Err() == nil {
				s.logf("speech: sentence %d failed: %v", i, err)
				if ev.OnError != nil {
					ev.OnError(control, i, err)
				}
			}
			// A failed sentence ends the sequence; there is no
			// auto-advance past a synthesis error.
			return
		}
	}
}

func (s *Sequencer) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
