package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeEngine records spoken utterances and lets tests inject failures or
// block mid-utterance.
type fakeEngine struct {
	mu     sync.Mutex
	spoken []Utterance
	failAt int // index that fails; -1 for none
	block  chan struct{}
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{failAt: -1}
}

func (e *fakeEngine) Voices() []Voice {
	return []Voice{{Name: "Huihui"}, {Name: "Kangkang"}}
}

func (e *fakeEngine) Speak(ctx context.Context, u Utterance) error {
	e.mu.Lock()
	idx := len(e.spoken)
	e.spoken = append(e.spoken, u)
	block := e.block
	e.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if idx == e.failAt {
		return errors.New("synthesis failed")
	}
	return ctx.Err()
}

func (e *fakeEngine) Cancel() {}

func (e *fakeEngine) utterances() []Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Utterance, len(e.spoken))
	copy(out, e.spoken)
	return out
}

// recorder collects sequencer events in order.
type recorder struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) callbacks() Events {
	return Events{
		OnStart: func(control string, i int) { r.add("start") },
		OnEnd:   func(control string, i int) { r.add("end") },
		OnError: func(control string, i int, err error) { r.add("error") },
		OnDone: func(control string) {
			r.add("done")
			close(r.done)
		},
	}
}

func (r *recorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not finish")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func TestSequencerPlaysInOrder(t *testing.T) {
	engine := newFakeEngine()
	seq := NewSequencer(engine, nil, nil)
	rec := newRecorder()

	lines := ParseLines([]string{"小明：你好", "小红：你好", "他们笑了。"})
	if !seq.Toggle(context.Background(), "s1", lines, rec.callbacks()) {
		t.Fatal("expected a new sequence to start")
	}
	events := rec.wait(t)

	want := []string{"start", "end", "start", "end", "start", "end", "done"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: expected %q, got %q (all: %v)", i, want[i], events[i], events)
		}
	}

	spoken := engine.utterances()
	if len(spoken) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(spoken))
	}
	if spoken[0].Text != "你好" {
		t.Errorf("labeled line must be spoken without the speaker name, got %q", spoken[0].Text)
	}
	if spoken[2].Text != "他们笑了。" {
		t.Errorf("narration spoken in full, got %q", spoken[2].Text)
	}
	if seq.Playing() != "" {
		t.Errorf("finished sequence should clear the playing control, got %q", seq.Playing())
	}
}

func TestSequencerSpeakerVoices(t *testing.T) {
	engine := newFakeEngine()
	seq := NewSequencer(engine, nil, nil)
	rec := newRecorder()

	lines := ParseLines([]string{"小明：你好", "小红：你好", "小明：再见"})
	seq.Toggle(context.Background(), "s1", lines, rec.callbacks())
	rec.wait(t)

	spoken := engine.utterances()
	if spoken[0].Voice != spoken[2].Voice {
		t.Errorf("the same speaker must keep the same voice: %+v vs %+v", spoken[0].Voice, spoken[2].Voice)
	}
	if spoken[0].Voice == spoken[1].Voice {
		t.Errorf("two speakers should get different voices, both got %+v", spoken[0].Voice)
	}
}

func TestSequencerToggleStops(t *testing.T) {
	engine := newFakeEngine()
	engine.block = make(chan struct{})
	seq := NewSequencer(engine, nil, nil)
	rec := newRecorder()

	lines := ParseLines([]string{"一", "二", "三"})
	seq.Toggle(context.Background(), "s1", lines, rec.callbacks())

	waitFor(t, func() bool { return len(engine.utterances()) == 1 })
	if seq.Playing() != "s1" {
		t.Fatalf("expected s1 playing, got %q", seq.Playing())
	}

	if started := seq.Toggle(context.Background(), "s1", lines, Events{}); started {
		t.Error("toggling the active control must stop, not restart")
	}
	if seq.Playing() != "" {
		t.Errorf("expected nothing playing after toggle, got %q", seq.Playing())
	}

	rec.wait(t)
	if got := len(engine.utterances()); got != 1 {
		t.Errorf("stopped sequence must not speak further lines, spoke %d", got)
	}
}

func TestSequencerSwitchControlStopsPrevious(t *testing.T) {
	engine := newFakeEngine()
	engine.block = make(chan struct{})
	seq := NewSequencer(engine, nil, nil)
	rec1 := newRecorder()

	lines1 := ParseLines([]string{"一", "二"})
	seq.Toggle(context.Background(), "s1", lines1, rec1.callbacks())
	waitFor(t, func() bool { return len(engine.utterances()) == 1 })

	engine.mu.Lock()
	engine.block = nil
	engine.mu.Unlock()

	rec2 := newRecorder()
	lines2 := ParseLines([]string{"三"})
	if !seq.Toggle(context.Background(), "s2", lines2, rec2.callbacks()) {
		t.Fatal("expected the second sequence to start")
	}
	rec1.wait(t)
	rec2.wait(t)

	spoken := engine.utterances()
	if last := spoken[len(spoken)-1]; last.Text != "三" {
		t.Errorf("expected the new control's line last, got %q", last.Text)
	}
	if seq.Playing() != "" {
		t.Errorf("expected nothing playing, got %q", seq.Playing())
	}
}

func TestSequencerErrorStopsSequence(t *testing.T) {
	engine := newFakeEngine()
	engine.failAt = 1
	seq := NewSequencer(engine, nil, nil)
	rec := newRecorder()

	lines := ParseLines([]string{"一", "二", "三"})
	seq.Toggle(context.Background(), "s1", lines, rec.callbacks())
	events := rec.wait(t)

	if got := len(engine.utterances()); got != 2 {
		t.Errorf("a failed sentence must end the sequence, spoke %d lines", got)
	}
	var sawError bool
	for _, ev := range events {
		if ev == "error" {
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("expected an error event, got %v", events)
	}
	if events[len(events)-1] != "done" {
		t.Errorf("done must fire even after an error, got %v", events)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
