package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hskhub/hskhub/pkg/progress"
	"github.com/hskhub/hskhub/pkg/study"
)

func (m *Model) handleStudyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.table == nil {
		// Only reload and quit work before a level is on screen.
		if msg.String() == "v" {
			return m.switchVariant()
		}
		return m, nil
	}

	visible := m.table.Visible()

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
		m.offset = 0
	case "G":
		m.cursor = len(visible) - 1
	case "enter", " ":
		if m.cursor < len(visible) {
			row := visible[m.cursor]
			if row.Kind != study.RowWord {
				m.table.Toggle(row.Node)
				m.clampCursor()
			}
		}
	case "x":
		if m.cursor < len(visible) {
			row := visible[m.cursor]
			var err error
			if row.Kind == study.RowWord {
				err = m.table.ToggleWord(row.Word.ID)
			} else {
				err = m.table.SetNodeLearned(row.Node, !row.Checked)
			}
			if err != nil {
				m.loadErr = "save failed: " + err.Error()
			}
		}
	case "a":
		if m.table.AllExpanded() {
			m.table.CollapseAll()
		} else {
			m.table.ExpandAll()
		}
		m.clampCursor()
	case "v":
		return m.switchVariant()
	case "D":
		mode := "dark"
		if m.theme.Mode == "dark" {
			mode = "light"
		}
		if m.deps.Settings != nil {
			_ = m.deps.Settings.Put(progress.KeyThemeMode, mode)
		}
		m.theme = NewTheme(m.theme.Accent, mode)
	case "R":
		m.confirm = true
	case "c":
		if m.cursor < len(visible) && visible[m.cursor].Kind == study.RowWord {
			word := visible[m.cursor].Word.ID
			if err := clipboard.WriteAll(word); err == nil {
				m.copied = word
			}
		}
	case "i":
		word := ""
		if m.cursor < len(visible) && visible[m.cursor].Kind == study.RowWord {
			word = visible[m.cursor].Word.ID
		}
		link := reportIssueURL(m.deps.ReportURL, m.deps.Level, m.variant, word)
		if err := clipboard.WriteAll(link); err == nil {
			m.copied = link
		}
	}
	return m, nil
}

// switchVariant flips between the standard and Supertest word lists,
// bumping the load generation so a slow earlier fetch cannot clobber it.
func (m *Model) switchVariant() (tea.Model, tea.Cmd) {
	next := ""
	if m.variant == "" {
		next = "Supertest"
	}
	m.loading = true
	m.loadGen++
	return m, m.loadVocabCmd(m.loadGen, next)
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirm = false
		if err := m.table.ResetAll(); err != nil {
			m.loadErr = "reset failed: " + err.Error()
			return m, nil
		}
		// Reload rather than patch the table in place.
		m.loading = true
		m.loadGen++
		return m, m.loadVocabCmd(m.loadGen, m.variant)
	default:
		m.confirm = false
	}
	return m, nil
}

func (m *Model) clampCursor() {
	visible := m.table.Visible()
	if m.cursor >= len(visible) {
		m.cursor = len(visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) studyView() string {
	var b strings.Builder

	title := "HSK " + m.deps.Level
	if m.variant != "" {
		title += " · " + m.variant
	}
	b.WriteString(m.theme.Title.Render(title) + "\n")

	if m.loading {
		b.WriteString("\nLoading word list...\n")
		return b.String()
	}
	if m.loadErr != "" {
		b.WriteString("\n" + m.theme.Error.Render("Could not load word list: "+m.loadErr) + "\n")
		b.WriteString("\nPress v to switch list, q to quit.\n")
		if m.table == nil {
			return b.String()
		}
	}
	if m.confirm {
		dialog := m.theme.Dialog.Render("Reset all progress for this level?\n\n[y] yes   [any key] no")
		return b.String() + "\n" + lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, dialog)
	}

	learned, total := m.table.Summary()
	percent := m.table.Percent()
	bar := m.theme.ProgressBar(percent, 24)
	summary := fmt.Sprintf("%s %d%%  %d/%d words", bar, percent, learned, total)
	if percent == 100 {
		summary += "  all done!"
	}
	b.WriteString(summary + "\n\n")

	visible := m.table.Visible()
	height := m.contentHeight()
	m.scrollStudy(len(visible), height)

	end := m.offset + height
	if end > len(visible) {
		end = len(visible)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(visible[i], i == m.cursor) + "\n")
	}

	b.WriteString("\n" + m.statusLine(len(visible)))
	return b.String()
}

func (m *Model) contentHeight() int {
	h := m.height - 7
	if h < 5 {
		h = 5
	}
	return h
}

// scrollStudy keeps the cursor inside the visible window.
func (m *Model) scrollStudy(count, height int) {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	if m.offset > count-1 {
		m.offset = count - 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) renderRow(row study.Row, current bool) string {
	var line string
	switch row.Kind {
	case study.RowUnitHeader:
		marker := "▸"
		if m.table.Expanded(row.Node) {
			marker = "▾"
		}
		line = fmt.Sprintf("%s %s %s (%d)", marker, checkbox(row.Checked), row.Title, row.WordTotal)
		line = m.theme.UnitHeader.Render(line)
	case study.RowLessonHeader:
		marker := "▸"
		if m.table.Expanded(row.Node) {
			marker = "▾"
		}
		line = fmt.Sprintf("%s %s %s (%d)", marker, checkbox(row.Checked), row.Title, row.WordTotal)
		line = m.theme.LessonHeader.Render(line)
	default:
		w := row.Word
		text := fmt.Sprintf("%4d %s %s  %s  %s", row.Serial, checkbox(row.Checked), w.ID, w.Pronunciation, w.Meaning)
		if w.PartOfSpeech != "" {
			text += "  (" + w.PartOfSpeech + ")"
		}
		style := m.theme.WordRow
		if row.Checked {
			style = m.theme.Learned
		}
		line = style.PaddingLeft(4).Render(text)
	}
	if current {
		return m.theme.Cursor.Render("› ") + line
	}
	return "  " + line
}

func (m *Model) statusLine(visibleCount int) string {
	expandLabel := "a:expand all"
	if m.table.AllExpanded() {
		expandLabel = "a:collapse all"
	}
	parts := []string{
		fmt.Sprintf("%d/%d", m.cursor+1, visibleCount),
		"x:toggle", "enter:open", expandLabel, "v:switch list",
		"tab:reader", "c:copy", "D:theme", "R:reset", "q:quit",
	}
	if m.offset > scrollTopThreshold {
		parts = append(parts, "g:top")
	}
	status := strings.Join(parts, "  ")
	if m.copied != "" {
		status += "  copied: " + m.copied
	}
	return m.theme.Status.Width(maxInt(m.width, len(status))).Render(status)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
