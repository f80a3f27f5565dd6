package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hskhub/hskhub/pkg/book"
	"github.com/hskhub/hskhub/pkg/speech"
)

// readerRow is one line of the reader layout: a section header (the
// playback control) or a sentence card.
type readerRow struct {
	header  bool
	section int
	line    int
}

// sectionControl names a section for the sequencer; at most one control
// plays at a time across the whole app.
func sectionControl(chapter, section int) string {
	return fmt.Sprintf("%d:%d", chapter, section)
}

func (m *Model) currentChapter() *book.Chapter {
	if m.book == nil || m.chapter >= len(m.book.Chapters) {
		return nil
	}
	return &m.book.Chapters[m.chapter]
}

func (m *Model) readerRows() []readerRow {
	ch := m.currentChapter()
	if ch == nil {
		return nil
	}
	var rows []readerRow
	for s, section := range ch.Sections {
		rows = append(rows, readerRow{header: true, section: s})
		for l := range section.Sentences {
			rows = append(rows, readerRow{section: s, line: l})
		}
	}
	return rows
}

func (m *Model) sectionLines(section book.Section) []speech.Line {
	sentences := make([]string, len(section.Sentences))
	for i, s := range section.Sentences {
		sentences[i] = s.Hanzi
	}
	return speech.ParseLines(sentences)
}

func (m *Model) handleReaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ch := m.currentChapter()
	if ch == nil {
		return m, nil
	}
	rows := m.readerRows()

	switch msg.String() {
	case "j", "down":
		if m.readCursor < len(rows)-1 {
			m.readCursor++
		}
	case "k", "up":
		if m.readCursor > 0 {
			m.readCursor--
		}
	case "g":
		m.readCursor = 0
		m.readOffset = 0
	case "h", "[":
		m.switchChapter(m.chapter - 1)
	case "l", "]":
		m.switchChapter(m.chapter + 1)
	case "y":
		m.showPinyin = !m.showPinyin
	case "t":
		m.showMeaning = !m.showMeaning
	case "enter":
		if m.readCursor < len(rows) {
			row := rows[m.readCursor]
			if row.header {
				return m, m.toggleSection(row.section)
			}
			key := m.revealKey(row)
			m.revealed[key] = !m.revealed[key]
		}
	case "p", " ":
		if m.readCursor < len(rows) {
			return m, m.toggleSection(rows[m.readCursor].section)
		}
	}
	return m, nil
}

// switchChapter stops any playback before moving; highlights never
// survive across chapters.
func (m *Model) switchChapter(to int) {
	if m.book == nil || to < 0 || to >= len(m.book.Chapters) {
		return
	}
	m.deps.Sequencer.Stop()
	m.playControl = ""
	m.playIndex = -1
	m.chapter = to
	m.readCursor = 0
	m.readOffset = 0
}

// toggleSection starts or stops playback of one section.
func (m *Model) toggleSection(section int) tea.Cmd {
	ch := m.currentChapter()
	if ch == nil || section >= len(ch.Sections) {
		return nil
	}
	control := sectionControl(m.chapter, section)
	lines := m.sectionLines(ch.Sections[section])
	started := m.deps.Sequencer.Toggle(context.Background(), control, lines, m.speechEvents())
	if !started {
		m.playControl = ""
		m.playIndex = -1
	}
	return nil
}

// scrollReaderTo moves the reader window so the playing sentence is
// visible.
func (m *Model) scrollReaderTo(control string, index int) {
	var chapter, section int
	if _, err := fmt.Sscanf(control, "%d:%d", &chapter, &section); err != nil {
		return
	}
	if chapter != m.chapter {
		return
	}
	for i, row := range m.readerRows() {
		if !row.header && row.section == section && row.line == index {
			m.readCursor = i
			return
		}
	}
}

func (m *Model) revealKey(row readerRow) string {
	return fmt.Sprintf("%d:%d:%d", m.chapter, row.section, row.line)
}

func (m *Model) readerView() string {
	var b strings.Builder

	if m.book == nil {
		if m.bookErr != "" {
			return m.theme.Error.Render("Could not load reader: "+m.bookErr) + "\n\nPress tab to go back.\n"
		}
		return "Loading reader...\n"
	}
	ch := m.currentChapter()
	if ch == nil {
		return "No chapters.\n"
	}

	title := fmt.Sprintf("Chapter %s: %s", ch.ID, ch.Title)
	if ch.TitleMeaning != "" {
		title += " - " + ch.TitleMeaning
	}
	b.WriteString(m.theme.Title.Render(title) + "\n")
	if ch.TitlePinyin != "" && m.showPinyin {
		b.WriteString(m.theme.Gloss.Render(ch.TitlePinyin) + "\n")
	}
	b.WriteString(fmt.Sprintf("Chapter %d/%d\n\n", m.chapter+1, len(m.book.Chapters)))

	rows := m.readerRows()
	height := m.contentHeight()
	if m.readCursor < m.readOffset {
		m.readOffset = m.readCursor
	}
	if m.readCursor >= m.readOffset+height {
		m.readOffset = m.readCursor - height + 1
	}

	end := m.readOffset + height
	if end > len(rows) {
		end = len(rows)
	}
	for i := m.readOffset; i < end; i++ {
		b.WriteString(m.renderReaderRow(ch, rows[i], i == m.readCursor) + "\n")
	}

	b.WriteString("\n" + m.readerStatus())
	return b.String()
}

func (m *Model) renderReaderRow(ch *book.Chapter, row readerRow, current bool) string {
	prefix := "  "
	if current {
		prefix = m.theme.Cursor.Render("› ")
	}

	section := ch.Sections[row.section]
	if row.header {
		icon := "▶"
		if m.playControl == sectionControl(m.chapter, row.section) {
			icon = "■"
		}
		return prefix + m.theme.UnitHeader.Render(fmt.Sprintf("%s %s", icon, section.Title))
	}

	sentence := section.Sentences[row.line]
	speaker, content := speech.SplitSpeaker(sentence.Hanzi)

	var text string
	if speaker != "" {
		style := m.theme.SpeakerA
		if speakerIndex(m.sectionLines(section), speaker)%2 == 1 {
			style = m.theme.SpeakerB
		}
		text = style.Render(speaker+"：") + content
	} else {
		text = m.theme.Narration.Render(sentence.Hanzi)
	}

	playing := m.playControl == sectionControl(m.chapter, row.section) && m.playIndex == row.line
	if playing {
		text = m.theme.Playing.Render("♪ " + sentence.Hanzi)
	}

	line := prefix + "  " + text
	if m.showPinyin && sentence.Pinyin != "" {
		line += "\n" + prefix + "    " + m.theme.Gloss.Render(sentence.Pinyin)
	}
	if (m.showMeaning || m.revealed[m.revealKey(row)]) && sentence.Meaning != "" {
		line += "\n" + prefix + "    " + m.theme.Gloss.Render(sentence.Meaning)
	}
	return line
}

// speakerIndex returns a speaker's first-seen position in the section.
func speakerIndex(lines []speech.Line, speaker string) int {
	for i, sp := range speech.Speakers(lines) {
		if sp == speaker {
			return i
		}
	}
	return 0
}

func (m *Model) readerStatus() string {
	parts := []string{
		"p:play/stop", "enter:reveal", "y:pinyin", "t:meaning",
		"h/l:chapter", "tab:study", "q:quit",
	}
	status := strings.Join(parts, "  ")
	return m.theme.Status.Width(maxInt(m.width, len(status))).Render(status)
}
