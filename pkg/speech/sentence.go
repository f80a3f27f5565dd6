// Package speech turns dialogue sentences into sequenced synthesized
// utterances with per-speaker voice assignment.
package speech

import (
	"strings"
	"unicode/utf8"
)

// Line is one playback sentence with its speaker label split off.
type Line struct {
	// Speaker is the trimmed label before the colon separator, empty when
	// the sentence carries no label.
	Speaker string
	// Content is the trimmed remainder after the separator.
	Content string
	// Raw is the sentence exactly as displayed.
	Raw string
}

// SpokenText is what gets synthesized: the content without the speaker
// name, or the full sentence when no speaker was detected.
func (l Line) SpokenText() string {
	if l.Speaker != "" {
		return l.Content
	}
	return l.Raw
}

// SplitSpeaker splits a sentence at the first ASCII or full-width colon
// into a speaker label and content. A sentence with no separator, or one
// starting with a separator, has no speaker. The split never changes the
// displayed text, only what is spoken.
func SplitSpeaker(s string) (speaker, content string) {
	for i, r := range s {
		if r != ':' && r != '：' {
			continue
		}
		if i == 0 {
			break
		}
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+utf8.RuneLen(r):])
	}
	return "", s
}

// ParseLines splits each sentence into a Line.
func ParseLines(sentences []string) []Line {
	lines := make([]Line, len(sentences))
	for i, s := range sentences {
		speaker, content := SplitSpeaker(s)
		lines[i] = Line{Speaker: speaker, Content: content, Raw: s}
	}
	return lines
}

// Speakers returns the distinct speaker labels in first-seen order,
// skipping unlabeled lines.
func Speakers(lines []Line) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lines {
		if l.Speaker == "" || seen[l.Speaker] {
			continue
		}
		seen[l.Speaker] = true
		out = append(out, l.Speaker)
	}
	return out
}
