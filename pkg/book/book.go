// Package book loads the reader content file (data/hsk4book.json):
// a set of chapters, each holding titled sections of dialogue sentences.
package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/hskhub/hskhub/pkg/vocab"
)

// File is the reader content file name resolved against a Source.
const File = "hsk4book.json"

// ErrEmptyBook is returned when the file parses but holds no chapters.
var ErrEmptyBook = errors.New("book contains no chapters")

// Book is the parsed reader content with chapters in numeric ID order.
type Book struct {
	Level    string
	Chapters []Chapter
}

// Chapter is one reading chapter.
type Chapter struct {
	ID           string
	Title        string
	TitlePinyin  string
	TitleMeaning string
	Sections     []Section
}

// Section is a titled run of dialogue sentences.
type Section struct {
	Title     string
	Sentences []Sentence
}

// Sentence is one displayed line: hanzi with pinyin and meaning glosses.
type Sentence struct {
	Hanzi   string `json:"hanzi"`
	Pinyin  string `json:"pinyin"`
	Meaning string `json:"meaning"`
}

type rawBook struct {
	Info struct {
		Level string `json:"level"`
	} `json:"info"`
	Chapters map[string]rawChapter `json:"chapters"`
}

type rawChapter struct {
	Title        string       `json:"title"`
	TitlePinyin  string       `json:"title_pinyin"`
	TitleMeaning string       `json:"title_meaning"`
	Sections     []rawSection `json:"sections"`
}

type rawSection struct {
	Title string     `json:"title"`
	Words []Sentence `json:"words"`
}

// Parse decodes book JSON. Chapter keys sort numerically ("10" after "9");
// untitled sections get a "Text N" fallback title.
func Parse(raw []byte) (*Book, error) {
	var rb rawBook
	if err := json.Unmarshal(raw, &rb); err != nil {
		return nil, fmt.Errorf("parse book file: %w", err)
	}
	if len(rb.Chapters) == 0 {
		return nil, ErrEmptyBook
	}

	keys := make([]string, 0, len(rb.Chapters))
	for k := range rb.Chapters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iErr := strconv.Atoi(keys[i])
		nj, jErr := strconv.Atoi(keys[j])
		if iErr == nil && jErr == nil {
			return ni < nj
		}
		if iErr == nil {
			return true
		}
		if jErr == nil {
			return false
		}
		return keys[i] < keys[j]
	})

	b := &Book{Level: rb.Info.Level}
	for _, key := range keys {
		rc := rb.Chapters[key]
		ch := Chapter{
			ID:           key,
			Title:        rc.Title,
			TitlePinyin:  rc.TitlePinyin,
			TitleMeaning: rc.TitleMeaning,
		}
		for i, rs := range rc.Sections {
			title := rs.Title
			if title == "" {
				title = fmt.Sprintf("Text %d", i+1)
			}
			ch.Sections = append(ch.Sections, Section{Title: title, Sentences: rs.Words})
		}
		b.Chapters = append(b.Chapters, ch)
	}
	return b, nil
}

// Load fetches and parses the book through the shared data source.
func Load(ctx context.Context, src *vocab.Source) (*Book, error) {
	raw, err := src.Fetch(ctx, File)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
