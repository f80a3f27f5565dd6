package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hskhub/hskhub/pkg/progress"
)

// Theme derives the view styles from the persisted color and mode
// settings so the app looks the same across runs.
type Theme struct {
	Accent string
	Mode   string

	Title        lipgloss.Style
	UnitHeader   lipgloss.Style
	LessonHeader lipgloss.Style
	WordRow      lipgloss.Style
	Learned      lipgloss.Style
	Cursor       lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Dialog       lipgloss.Style
	ProgressFill lipgloss.Style
	ProgressRest lipgloss.Style

	SpeakerA  lipgloss.Style
	SpeakerB  lipgloss.Style
	Narration lipgloss.Style
	Playing   lipgloss.Style
	Gloss     lipgloss.Style
}

// LoadTheme reads the saved accent color and mode, falling back to a blue
// accent in dark mode.
func LoadTheme(settings *progress.Settings) Theme {
	accent := "39"
	mode := "dark"
	if settings != nil {
		accent = settings.Get(progress.KeyThemeColor, accent)
		mode = settings.Get(progress.KeyThemeMode, mode)
	}
	return NewTheme(accent, mode)
}

// NewTheme builds the style set for an accent color and light/dark mode.
func NewTheme(accent, mode string) Theme {
	text := lipgloss.Color("252")
	dim := lipgloss.Color("244")
	if mode == "light" {
		text = lipgloss.Color("235")
		dim = lipgloss.Color("242")
	}
	ac := lipgloss.Color(accent)

	return Theme{
		Accent: accent,
		Mode:   mode,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(ac).
			Padding(0, 1),
		UnitHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(ac),
		LessonHeader: lipgloss.NewStyle().
			Foreground(ac).
			PaddingLeft(2),
		WordRow: lipgloss.NewStyle().
			Foreground(text),
		Learned: lipgloss.NewStyle().
			Foreground(dim).
			Strikethrough(true),
		Cursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("236")),
		Status: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("234")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 1),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ac).
			Padding(1, 2),
		ProgressFill: lipgloss.NewStyle().Foreground(ac),
		ProgressRest: lipgloss.NewStyle().Foreground(dim),

		SpeakerA: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		SpeakerB: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75")),
		Narration: lipgloss.NewStyle().
			Italic(true).
			Foreground(dim),
		Playing: lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")),
		Gloss: lipgloss.NewStyle().
			Foreground(dim),
	}
}

// ProgressBar renders a fixed-width completion bar.
func (t Theme) ProgressBar(percent, width int) string {
	if width < 4 {
		width = 4
	}
	filled := percent * width / 100
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += t.ProgressFill.Render("█")
		} else {
			bar += t.ProgressRest.Render("░")
		}
	}
	return bar
}
