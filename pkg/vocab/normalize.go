package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// rawWord matches a word record in any of the source files. HSK 1-3 files
// use "type" for the part of speech while the HSK 4 files use "pos".
type rawWord struct {
	Hanzi           string `json:"hanzi"`
	Pinyin          string `json:"pinyin"`
	Meaning         string `json:"meaning"`
	Type            string `json:"type"`
	Pos             string `json:"pos"`
	Sentence        string `json:"sentence"`
	SentencePinyin  string `json:"sentence_pinyin"`
	SentenceMeaning string `json:"sentence_meaning"`
}

type rawDocument struct {
	Chapters map[string]rawChapter `json:"chapters"`
	Units    map[string]rawUnit    `json:"units"`
}

type rawChapter struct {
	Title        string       `json:"title"`
	TitleMeaning string       `json:"title_meaning"`
	Sections     []rawSection `json:"sections"`
}

type rawSection struct {
	Title string    `json:"title"`
	Words []rawWord `json:"words"`
}

type rawUnit struct {
	Title   string               `json:"title"`
	Words   []rawWord            `json:"words"`
	Lessons map[string]rawLesson `json:"lessons"`
}

type rawLesson struct {
	Title string    `json:"title"`
	Words []rawWord `json:"words"`
}

// Normalize converts raw vocabulary JSON in any of the recognized source
// shapes into an ordered sequence of canonical groups:
//
//  1. a bare array of words -> one untitled leaf group
//  2. a "chapters" map -> one leaf group per chapter, section word lists
//     concatenated, synthesized "Chapter N: ..." titles
//  3. a "units" map with words directly on each unit -> one leaf group per unit
//  4. a "units" map with a "lessons" map per unit -> one parent group per
//     unit with a leaf group per lesson
//
// Map keys are sorted by numeric value, not lexicographically. An
// unrecognized shape yields zero groups; callers treat that as a load error.
func Normalize(raw []byte) ([]Group, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var words []rawWord
		if err := json.Unmarshal(trimmed, &words); err != nil {
			return nil, fmt.Errorf("parse word list: %w", err)
		}
		return []Group{{Words: convertWords(words)}}, nil
	}

	var doc rawDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse vocabulary file: %w", err)
	}

	if len(doc.Chapters) > 0 {
		return normalizeChapters(doc.Chapters), nil
	}
	if len(doc.Units) > 0 {
		return normalizeUnits(doc.Units), nil
	}
	return nil, nil
}

func normalizeChapters(chapters map[string]rawChapter) []Group {
	groups := make([]Group, 0, len(chapters))
	for _, key := range sortedNumericKeys(chapters) {
		ch := chapters[key]
		var words []rawWord
		for _, section := range ch.Sections {
			words = append(words, section.Words...)
		}
		title := fmt.Sprintf("Chapter %s: %s", key, ch.Title)
		if ch.TitleMeaning != "" {
			title += " - " + ch.TitleMeaning
		}
		groups = append(groups, Group{Title: title, Words: convertWords(words)})
	}
	return groups
}

func normalizeUnits(units map[string]rawUnit) []Group {
	groups := make([]Group, 0, len(units))
	for _, key := range sortedNumericKeys(units) {
		unit := units[key]
		title := unit.Title
		if title == "" {
			title = "Unit " + key
		}

		if len(unit.Lessons) == 0 {
			groups = append(groups, Group{Title: title, Words: convertWords(unit.Words)})
			continue
		}

		parent := Group{Title: title}
		for _, lKey := range sortedNumericKeys(unit.Lessons) {
			lesson := unit.Lessons[lKey]
			lTitle := lesson.Title
			if lTitle == "" {
				lTitle = "Lesson " + lKey
			}
			parent.SubGroups = append(parent.SubGroups, Group{
				Title: lTitle,
				Words: convertWords(lesson.Words),
			})
		}
		groups = append(groups, parent)
	}
	return groups
}

// sortedNumericKeys sorts map keys by integer value ascending, so "10"
// comes after "9". Non-numeric keys sort after all numeric ones, amongst
// themselves by string order to keep the result deterministic.
func sortedNumericKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iOK := parseKey(keys[i])
		nj, jOK := parseKey(keys[j])
		switch {
		case iOK && jOK:
			return ni < nj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func parseKey(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func convertWords(raw []rawWord) []Word {
	words := make([]Word, 0, len(raw))
	for _, rw := range raw {
		pos := rw.Type
		if pos == "" {
			pos = rw.Pos
		}
		w := Word{
			ID:            rw.Hanzi,
			Pronunciation: rw.Pinyin,
			Meaning:       rw.Meaning,
			PartOfSpeech:  pos,
		}
		if rw.Sentence != "" {
			w.Example = &ExampleSentence{
				Text:          rw.Sentence,
				Pronunciation: rw.SentencePinyin,
				Meaning:       rw.SentenceMeaning,
			}
		}
		words = append(words, w)
	}
	return words
}
