package vocab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLevelFile(t *testing.T) {
	if got := LevelFile("3", ""); got != "hsk3.json" {
		t.Errorf("LevelFile(3) = %q", got)
	}
	if got := LevelFile("4", "Supertest"); got != "hsk4Supertest.json" {
		t.Errorf("LevelFile(4, Supertest) = %q", got)
	}
}

func TestLoadLevelFromDir(t *testing.T) {
	dir := t.TempDir()
	data := `[{"hanzi":"一","pinyin":"yī","meaning":"one"}]`
	if err := os.WriteFile(filepath.Join(dir, "hsk1.json"), []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src := &Source{Dir: dir}
	groups, err := src.LoadLevel(context.Background(), "1", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if WordCount(groups) != 1 {
		t.Fatalf("word count = %d", WordCount(groups))
	}
}

func TestLoadLevelRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/hsk2.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"hanzi":"二","pinyin":"èr","meaning":"two"}]`))
	}))
	defer srv.Close()

	src := &Source{BaseURL: srv.URL}
	groups, err := src.LoadLevel(context.Background(), "2", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if groups[0].Words[0].ID != "二" {
		t.Errorf("unexpected words: %+v", groups[0].Words)
	}

	if _, err := src.LoadLevel(context.Background(), "9", ""); err == nil {
		t.Fatalf("expected error for missing level")
	}
}

func TestLoadLevelRemoteCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`[{"hanzi":"三","pinyin":"sān","meaning":"three"}]`))
	}))
	defer srv.Close()

	src := &Source{BaseURL: srv.URL, CacheDir: t.TempDir()}
	for i := 0; i < 2; i++ {
		if _, err := src.LoadLevel(context.Background(), "3", ""); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("expected 1 remote hit, got %d", hits)
	}
}

func TestLoadLevelEmptyIsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hsk5.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	src := &Source{Dir: dir}
	_, err := src.LoadLevel(context.Background(), "5", "")
	if !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}

	// Unrecognized shape is the same load failure.
	if err := os.WriteFile(filepath.Join(dir, "hsk6.json"), []byte(`{"other":true}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err = src.LoadLevel(context.Background(), "6", "")
	if !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}
