package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Kinds of cached AI results.
const (
	KindKeywords = "keywords"
	KindSummary  = "summary"
)

// Entry is a cached AI result. Value holds the JSON encoded payload.
type Entry struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Value     string    `json:"value"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UseCount  int       `json:"use_count"`
}

// Store keeps AI results between requests. Put upserts by key and bumps
// UseCount on conflict. Get reports found=false on any backend error.
type Store interface {
	Get(key string) (Entry, bool)
	Put(e Entry) error
	Prune(olderThan time.Time) (int, error)
	Stats() map[string]int
	Close() error
}

// Flusher is implemented by stores that buffer writes.
type Flusher interface {
	Flush() error
}

// Open returns the store for driver ("memory", "file", "bolt", "postgres", "sqlite").
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		fs := NewFileStore(dsn)
		if err := fs.Load(); err != nil {
			return nil, err
		}
		return fs, nil
	case "bolt":
		return NewBoltStore(dsn)
	case "postgres":
		return NewPostgresStore(dsn)
	case "sqlite":
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// Key creates a stable hash for the inputs of an AI call.
func Key(kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(strings.Fields(strings.ToLower(p)), " ")))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func stamp(e Entry) Entry {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	// sqlite compares timestamps as text, so keep one zone
	e.CreatedAt = e.CreatedAt.UTC()
	if e.UseCount == 0 {
		e.UseCount = 1
	}
	return e
}
