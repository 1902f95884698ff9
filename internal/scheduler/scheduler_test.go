package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/deusflow/newsflash/internal/storage"
)

func TestSchedulePruneAndStop(t *testing.T) {
	s := New(storage.NewMemoryStore(), time.Hour)
	defer s.Stop()

	if err := s.SchedulePrune("@hourly"); err != nil {
		t.Fatalf("SchedulePrune failed: %v", err)
	}
	// rescheduling replaces the previous entry
	if err := s.SchedulePrune("*/5 * * * *"); err != nil {
		t.Fatalf("SchedulePrune failed: %v", err)
	}
	s.Start()

	if n := len(s.cron.Entries()); n != 1 {
		t.Errorf("expected 1 cron entry, got %d", n)
	}
}

func TestSchedulePrune_InvalidSpec(t *testing.T) {
	s := New(storage.NewMemoryStore(), time.Hour)
	for _, spec := range []string{"", "every hour", "61 * * * *"} {
		if err := s.SchedulePrune(spec); err == nil {
			t.Errorf("expected error for %q", spec)
		}
	}
}

func TestPrune(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "ai.json"))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_ = store.Put(storage.Entry{Key: "old", Kind: storage.KindSummary, Value: `""`, CreatedAt: now.Add(-3 * time.Hour)})
	_ = store.Put(storage.Entry{Key: "new", Kind: storage.KindSummary, Value: `""`, CreatedAt: now.Add(-30 * time.Minute)})

	s := New(store, time.Hour)
	s.now = func() time.Time { return now }

	removed, err := s.Prune()
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	reloaded := storage.NewFileStore(store.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Get("new"); !ok {
		t.Error("expected pruned store to be flushed to disk")
	}
	if _, ok := reloaded.Get("old"); ok {
		t.Error("expected old entry to be gone on disk")
	}
}

func TestPrune_ZeroTTLKeepsEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	_ = store.Put(storage.Entry{Key: "old", Kind: storage.KindKeywords, Value: `["mars"]`, CreatedAt: time.Now().Add(-72 * time.Hour)})

	removed, err := New(store, 0).Prune()
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected nothing removed with a zero TTL, got %d", removed)
	}
	if _, ok := store.Get("old"); !ok {
		t.Error("entry should survive when entries never expire")
	}
}
