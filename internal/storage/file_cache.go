package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps entries in memory and persists them as a JSON file.
type FileStore struct {
	filePath string
	items    map[string]Entry
	dirty    bool
	mu       sync.RWMutex
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{
		filePath: filePath,
		items:    make(map[string]Entry),
	}
}

// Load loads existing entries from file
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var items []Entry
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	for _, item := range items {
		fs.items[item.Key] = item
	}
	return nil
}

// Flush writes the entries to disk if anything changed since the last write.
func (fs *FileStore) Flush() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.dirty {
		return nil
	}

	items := make([]Entry, 0, len(fs.items))
	for _, item := range fs.items {
		items = append(items, item)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if dir := filepath.Dir(fs.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache dir: %w", err)
		}
	}

	// write then rename so a crash never leaves a truncated file
	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	fs.dirty = false
	return nil
}

func (fs *FileStore) Get(key string) (Entry, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	e, ok := fs.items[key]
	return e, ok
}

func (fs *FileStore) Put(e Entry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.items[e.Key] = upsert(fs.items, e)
	fs.dirty = true
	return nil
}

// Prune removes old entries and persists the result.
func (fs *FileStore) Prune(olderThan time.Time) (int, error) {
	fs.mu.Lock()
	removed := prune(fs.items, olderThan)
	if removed > 0 {
		fs.dirty = true
	}
	fs.mu.Unlock()

	return removed, fs.Flush()
}

func (fs *FileStore) Stats() map[string]int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return countByKind(fs.items)
}

func (fs *FileStore) Close() error {
	return fs.Flush()
}

func (fs *FileStore) Path() string { return fs.filePath }
