package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	old := time.Now().Add(-48 * time.Hour).UTC()
	if err := s.Put(Entry{Key: "a", Kind: KindKeywords, Value: `["nasa","mars"]`, Provider: "gemini"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(Entry{Key: "b", Kind: KindSummary, Value: `"Markets rallied."`, CreatedAt: old}); err != nil {
		t.Fatalf("put: %v", err)
	}

	e, ok := s.Get("a")
	if !ok {
		t.Fatal("expected hit for stored key")
	}
	if e.Kind != KindKeywords || e.Value != `["nasa","mars"]` || e.Provider != "gemini" || e.UseCount != 1 {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped")
	}

	if err := s.Put(Entry{Key: "a", Kind: KindKeywords, Value: `["nasa"]`, Provider: "openai"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, _ = s.Get("a")
	if e.Value != `["nasa"]` || e.Provider != "openai" || e.UseCount != 2 {
		t.Errorf("expected upsert to replace value and bump use count, got %+v", e)
	}

	stats := s.Stats()
	if stats["total_items"] != 2 || stats["kind_keywords"] != 1 || stats["kind_summary"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}

	removed, err := s.Prune(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned entry, got %d", removed)
	}
	if _, ok := s.Get("b"); ok {
		t.Error("expected old entry to be pruned")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("expected fresh entry to survive")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStore(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "ai_cache.json"))
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ai_cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_cache.bolt")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	exerciseStore(t, s)

	if err := s.Put(Entry{Key: "kept", Kind: KindSummary, Value: `{}`}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open("bolt", path)
	if err != nil {
		t.Fatalf("reopen bolt: %v", err)
	}
	defer reopened.Close()
	if _, ok := reopened.Get("kept"); !ok {
		t.Error("entry lost after reopening the bolt file")
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewPostgresStore(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()
	if _, err := s.db.Exec(`DELETE FROM ai_cache`); err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)
}

func TestFileStore_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ai_cache.json")

	s := NewFileStore(path)
	if err := s.Put(Entry{Key: "k", Kind: KindSummary, Value: `"hello"`}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open("file", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	e, ok := reopened.Get("k")
	if !ok || e.Value != `"hello"` {
		t.Errorf("expected entry after reload, got %+v %v", e, ok)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open("file", path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mongo", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestKey(t *testing.T) {
	a := Key(KindKeywords, "Rover  lands", "Content")
	b := Key(KindKeywords, "rover lands", "content")
	if a != b {
		t.Error("expected case and whitespace to be normalized")
	}
	if a == Key(KindSummary, "rover lands", "content") {
		t.Error("expected kind to be part of the key")
	}
	if Key(KindKeywords, "ab", "c") == Key(KindKeywords, "a", "bc") {
		t.Error("expected part boundaries to matter")
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex key, got %d chars", len(a))
	}
}
