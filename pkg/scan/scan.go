// Package scan measures how much of a real-world article is covered by a
// level's vocabulary. It extracts readable text from a page, segments it
// into words and counts occurrences of level words, recording the result
// so coverage can be compared across articles.
package scan

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/go-ego/gse"
	readability "github.com/go-shiori/go-readability"

	"github.com/hskhub/hskhub/pkg/progress"
	"github.com/hskhub/hskhub/pkg/vocab"
)

// Segmenter cuts Chinese text into words. *gse.Segmenter satisfies it;
// tests inject a deterministic fake.
type Segmenter interface {
	Cut(text string, hmm ...bool) []string
}

// NewSegmenter loads the default dictionary and registers every level
// word with a high frequency so multi-character vocabulary items win
// over their single-character splits.
func NewSegmenter(groups []vocab.Group) (*gse.Segmenter, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmenter dictionary: %w", err)
	}
	for _, g := range groups {
		for _, id := range g.WordIDs() {
			_ = seg.AddToken(id, 100, "n")
		}
	}
	return &seg, nil
}

// Report is the outcome of scanning one article against a level.
type Report struct {
	URL   string
	Title string
	Level string

	Sentences int
	// WordCounts maps each level word found in the article to its
	// occurrence count.
	WordCounts map[string]int
	// TotalWords is the size of the level vocabulary.
	TotalWords int
	// LearnedSeen is how many of the found words are already learned.
	LearnedSeen int
}

// Matched is the number of distinct level words the article uses.
func (r *Report) Matched() int { return len(r.WordCounts) }

// Coverage is the fraction of the level vocabulary the article exercises.
func (r *Report) Coverage() float64 {
	if r.TotalWords == 0 {
		return 0
	}
	return float64(r.Matched()) / float64(r.TotalWords)
}

// LearnedCoverage is the fraction of the article's level words that are
// already learned.
func (r *Report) LearnedCoverage() float64 {
	if r.Matched() == 0 {
		return 0
	}
	return float64(r.LearnedSeen) / float64(r.Matched())
}

// Scanner runs coverage scans. DB is optional; when set, each scan is
// recorded with its per-word occurrence counts.
type Scanner struct {
	Seg     Segmenter
	Client  *http.Client
	DB      progress.DBExecutor
	Workers int
	Logger  *log.Logger
}

// NewScanner creates a scanner with one worker per CPU.
func NewScanner(seg Segmenter, db progress.DBExecutor) *Scanner {
	return &Scanner{
		Seg:     seg,
		DB:      db,
		Workers: runtime.NumCPU(),
	}
}

// ScanURL fetches a page, extracts its readable text and scans it.
func (s *Scanner) ScanURL(ctx context.Context, pageURL, level string, groups []vocab.Group, learned progress.Set) (*Report, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch article: status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, 10*1024*1024), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	report, err := s.ScanText(ctx, article.TextContent, level, groups, learned)
	if err != nil {
		return nil, err
	}
	report.URL = pageURL
	report.Title = article.Title
	if s.DB != nil {
		if err := s.record(report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// ScanText scans already-extracted text. Sentences are segmented
// concurrently; counts are merged in sentence order.
func (s *Scanner) ScanText(ctx context.Context, text, level string, groups []vocab.Group, learned progress.Set) (*Report, error) {
	lexicon := make(map[string]bool)
	total := 0
	for _, g := range groups {
		for _, id := range g.WordIDs() {
			if !lexicon[id] {
				lexicon[id] = true
				total++
			}
		}
	}

	sentences := SplitSentences(text)
	counts := make([]map[string]int, len(sentences))

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	pool := newWorkerPool(workers, workers*2)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.start(ctx)

	for i, sentence := range sentences {
		idx, sent := i, sentence
		err := pool.submit(ctx, func(ctx context.Context) error {
			found := make(map[string]int)
			for _, token := range s.Seg.Cut(sent, true) {
				if lexicon[token] {
					found[token]++
				}
			}
			counts[idx] = found
			return nil
		})
		if err != nil {
			pool.close()
			return nil, err
		}
	}
	pool.close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Level:      level,
		Sentences:  len(sentences),
		WordCounts: make(map[string]int),
		TotalWords: total,
	}
	for _, found := range counts {
		for word, n := range found {
			report.WordCounts[word] += n
		}
	}
	for word := range report.WordCounts {
		if learned.Has(word) {
			report.LearnedSeen++
		}
	}
	return report, nil
}

// record persists the scan and its per-word counts.
func (s *Scanner) record(r *Report) error {
	res, err := s.DB.Exec(`INSERT INTO article_scans
		(url, title, level, sentence_count, matched_count, learned_count, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.URL, r.Title, r.Level, r.Sentences, r.Matched(), r.LearnedSeen, time.Now())
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	for word, count := range r.WordCounts {
		if _, err := s.DB.Exec(`INSERT INTO word_occurrences (scan_id, word_id, count)
			VALUES (?, ?, ?)
			ON CONFLICT(scan_id, word_id) DO UPDATE SET count = excluded.count`,
			scanID, word, count); err != nil {
			return fmt.Errorf("record occurrence %s: %w", word, err)
		}
	}
	return nil
}

// SplitSentences breaks text on Chinese sentence enders and newlines.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		current.WriteRune(r)
		if r == '。' || r == '！' || r == '？' || r == '\n' {
			flush()
		}
	}
	flush()
	return sentences
}
