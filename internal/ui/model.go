// Package ui is the terminal front end: the vocabulary study table and
// the reader view with voiced playback, both driven by one Bubble Tea
// model.
package ui

import (
	"context"
	"log"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hskhub/hskhub/pkg/book"
	"github.com/hskhub/hskhub/pkg/progress"
	"github.com/hskhub/hskhub/pkg/speech"
	"github.com/hskhub/hskhub/pkg/study"
	"github.com/hskhub/hskhub/pkg/vocab"
)

// view selects the active screen.
type view int

const (
	viewStudy view = iota
	viewReader
)

// scrollTopThreshold is the offset past which the back-to-top hint shows.
const scrollTopThreshold = 20

// Deps are the wired services the UI runs on.
type Deps struct {
	Source    *vocab.Source
	Store     *progress.Store
	Settings  *progress.Settings
	Sequencer *speech.Sequencer
	Logger    *log.Logger

	Level     string
	Variant   string
	ReportURL string
}

// vocabLoadedMsg carries a finished level load. Gen guards against a
// stale response landing after the user switched variants again.
type vocabLoadedMsg struct {
	gen     int
	variant string
	groups  []vocab.Group
	set     progress.Set
	err     error
}

// bookLoadedMsg carries the reader content.
type bookLoadedMsg struct {
	book *book.Book
	err  error
}

// speechMsg is one sequencer event forwarded into the update loop.
type speechMsg struct {
	kind    string // start, end, error, done
	control string
	index   int
	err     error
}

type Model struct {
	deps  Deps
	theme Theme

	view          view
	width, height int

	// study state
	table   *study.Table
	cursor  int
	offset  int
	loading bool
	loadErr string
	loadGen int
	variant string
	confirm bool
	copied  string

	// reader state
	book        *book.Book
	bookErr     string
	chapter     int
	readCursor  int
	readOffset  int
	showPinyin  bool
	showMeaning bool
	revealed    map[string]bool
	playControl string
	playIndex   int

	speechCh chan speechMsg
}

// NewModel creates the UI model; the first level load starts in Init.
func NewModel(deps Deps) *Model {
	return &Model{
		deps:      deps,
		theme:     LoadTheme(deps.Settings),
		variant:   deps.Variant,
		loading:   true,
		revealed:  make(map[string]bool),
		playIndex: -1,
		speechCh:  make(chan speechMsg, 32),
	}
}

func (m *Model) Init() tea.Cmd {
	m.loadGen++
	return tea.Batch(
		m.loadVocabCmd(m.loadGen, m.variant),
		m.loadBookCmd(),
		m.listenSpeechCmd(),
	)
}

// loadVocabCmd fetches and normalizes a level plus its saved progress.
func (m *Model) loadVocabCmd(gen int, variant string) tea.Cmd {
	return func() tea.Msg {
		groups, err := m.deps.Source.LoadLevel(context.Background(), m.deps.Level, variant)
		if err != nil {
			return vocabLoadedMsg{gen: gen, variant: variant, err: err}
		}
		set, err := m.deps.Store.Load(m.deps.Level)
		if err != nil {
			return vocabLoadedMsg{gen: gen, variant: variant, err: err}
		}
		return vocabLoadedMsg{gen: gen, variant: variant, groups: groups, set: set}
	}
}

func (m *Model) loadBookCmd() tea.Cmd {
	return func() tea.Msg {
		b, err := book.Load(context.Background(), m.deps.Source)
		return bookLoadedMsg{book: b, err: err}
	}
}

// listenSpeechCmd forwards the next sequencer event to Update.
func (m *Model) listenSpeechCmd() tea.Cmd {
	return func() tea.Msg {
		return <-m.speechCh
	}
}

// speechEvents bridges sequencer callbacks into the message loop without
// blocking the playback goroutine.
func (m *Model) speechEvents() speech.Events {
	push := func(msg speechMsg) {
		select {
		case m.speechCh <- msg:
		default:
		}
	}
	return speech.Events{
		OnStart: func(control string, i int) { push(speechMsg{kind: "start", control: control, index: i}) },
		OnEnd:   func(control string, i int) { push(speechMsg{kind: "end", control: control, index: i}) },
		OnError: func(control string, i int, err error) {
			push(speechMsg{kind: "error", control: control, index: i, err: err})
		},
		OnDone: func(control string) { push(speechMsg{kind: "done", control: control}) },
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case vocabLoadedMsg:
		// Stale loads from an earlier variant switch are dropped whole.
		if msg.gen != m.loadGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.variant = msg.variant
		m.table = study.NewTable(msg.groups, msg.set, func(set progress.Set) error {
			return m.deps.Store.Save(m.deps.Level, set)
		})
		m.cursor = 0
		m.offset = 0
		return m, nil

	case bookLoadedMsg:
		if msg.err != nil {
			m.bookErr = msg.err.Error()
			return m, nil
		}
		m.book = msg.book
		return m, nil

	case speechMsg:
		switch msg.kind {
		case "start":
			m.playControl = msg.control
			m.playIndex = msg.index
			m.scrollReaderTo(msg.control, msg.index)
		case "end":
			if m.playControl == msg.control && m.playIndex == msg.index {
				m.playIndex = -1
			}
		case "error":
			m.bookErr = "playback failed: " + msg.err.Error()
		case "done":
			if m.playControl == msg.control {
				m.playControl = ""
				m.playIndex = -1
			}
		}
		return m, m.listenSpeechCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.deps.Sequencer.Stop()
		return m, tea.Quit
	case "tab":
		if m.view == viewStudy {
			m.view = viewReader
		} else {
			m.deps.Sequencer.Stop()
			m.view = viewStudy
		}
		return m, nil
	}

	if m.view == viewReader {
		return m.handleReaderKey(msg)
	}
	return m.handleStudyKey(msg)
}

// reportIssueURL builds the issue link with the current study context.
func reportIssueURL(base, level, variant, word string) string {
	q := url.Values{}
	title := "HSK" + level
	if variant != "" {
		title += " " + variant
	}
	if word != "" {
		title += ": " + word
	}
	q.Set("title", title)
	return base + "?" + q.Encode()
}

func (m *Model) View() string {
	if m.view == viewReader {
		return m.readerView()
	}
	return m.studyView()
}
