package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hskhub/hskhub/internal/config"
	"github.com/hskhub/hskhub/internal/ui"
	"github.com/hskhub/hskhub/pkg/progress"
	"github.com/hskhub/hskhub/pkg/scan"
	"github.com/hskhub/hskhub/pkg/speech"
	"github.com/hskhub/hskhub/pkg/vocab"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	levelFlag := flag.String("level", "4", "HSK level to study (1-6)")
	variantFlag := flag.String("variant", "", "word list variant, e.g. Supertest")
	dbFlag := flag.String("db", "", "path to SQLite database (overrides HSKHUB_DB)")
	dataFlag := flag.String("data", "", "local data directory (overrides HSKHUB_DATA_DIR)")
	scanFlag := flag.String("scan", "", "scan an article URL for level-word coverage and exit")
	flag.Parse()

	cfg := config.Load()
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *dataFlag != "" {
		cfg.DataDir = *dataFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatalf("Failed to create state directory: %v", err)
	}
	conn, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	if err := progress.InitDB(conn); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	source := &vocab.Source{
		Dir:      cfg.DataDir,
		BaseURL:  cfg.BaseURL,
		CacheDir: cfg.CacheDir,
	}
	store := progress.NewStore(conn)

	if *scanFlag != "" {
		runScan(ctx, conn, source, store, *levelFlag, *variantFlag, *scanFlag)
		return
	}

	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.DBPath), "hskhub.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	engine := newEngine(cfg, logger)
	sequencer := speech.NewSequencer(engine, speech.KeywordClassifier, logger)

	model := ui.NewModel(ui.Deps{
		Source:    source,
		Store:     store,
		Settings:  progress.NewSettings(conn),
		Sequencer: sequencer,
		Logger:    logger,
		Level:     *levelFlag,
		Variant:   *variantFlag,
		ReportURL: cfg.ReportURL,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("UI error: %v", err)
	}
}

// newEngine picks the speech backend from configuration.
func newEngine(cfg *config.Config, logger *log.Logger) speech.Engine {
	switch cfg.TTSEngine {
	case "google":
		return speech.NewGoogleEngine(filepath.Join(cfg.CacheDir, "tts"), cfg.PlayerCommand)
	case "elevenlabs":
		if cfg.ElevenLabsAPIKey == "" {
			logger.Println("ELEVENLABS_API_KEY not set, falling back to say")
			return speech.NewSayEngine()
		}
		return speech.NewElevenLabsEngine(cfg.ElevenLabsAPIKey, cfg.PlayerCommand)
	default:
		return speech.NewSayEngine()
	}
}

// runScan measures a page's vocabulary coverage and prints the report.
func runScan(ctx context.Context, conn *sql.DB, source *vocab.Source, store *progress.Store, level, variant, pageURL string) {
	groups, err := source.LoadLevel(ctx, level, variant)
	if err != nil {
		log.Fatalf("Failed to load word list: %v", err)
	}
	learned, err := store.Load(level)
	if err != nil {
		log.Fatalf("Failed to load progress: %v", err)
	}

	seg, err := scan.NewSegmenter(groups)
	if err != nil {
		log.Fatalf("Failed to build segmenter: %v", err)
	}

	scanner := scan.NewScanner(seg, conn)
	report, err := scanner.ScanURL(ctx, pageURL, level, groups, learned)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	fmt.Printf("Title: %s\n", report.Title)
	fmt.Printf("Sentences: %d\n", report.Sentences)
	fmt.Printf("Level words used: %d of %d (%.1f%% of the vocabulary)\n",
		report.Matched(), report.TotalWords, report.Coverage()*100)
	fmt.Printf("Already learned: %d of %d used words (%.1f%%)\n",
		report.LearnedSeen, report.Matched(), report.LearnedCoverage()*100)

	words := make([]string, 0, len(report.WordCounts))
	for w := range report.WordCounts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if report.WordCounts[words[i]] != report.WordCounts[words[j]] {
			return report.WordCounts[words[i]] > report.WordCounts[words[j]]
		}
		return words[i] < words[j]
	})
	fmt.Println("---------------------------------------------------")
	for _, w := range words {
		marker := " "
		if learned.Has(w) {
			marker = "x"
		}
		fmt.Printf("[%s] %-8s %d\n", marker, w, report.WordCounts[w])
	}
}
