package storage

import (
	"sync"
	"time"
)

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Entry)}
}

func (m *MemoryStore) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[key]
	return e, ok
}

func (m *MemoryStore) Put(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[e.Key] = upsert(m.items, e)
	return nil
}

func (m *MemoryStore) Prune(olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return prune(m.items, olderThan), nil
}

func (m *MemoryStore) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countByKind(m.items)
}

func (m *MemoryStore) Close() error { return nil }

// upsert merges e with an existing entry of the same key.
func upsert(items map[string]Entry, e Entry) Entry {
	e = stamp(e)
	if old, ok := items[e.Key]; ok {
		e.UseCount = old.UseCount + 1
	}
	return e
}

func prune(items map[string]Entry, olderThan time.Time) int {
	removed := 0
	for k, e := range items {
		if e.CreatedAt.Before(olderThan) {
			delete(items, k)
			removed++
		}
	}
	return removed
}

func countByKind(items map[string]Entry) map[string]int {
	stats := map[string]int{"total_items": len(items)}
	for _, e := range items {
		stats["kind_"+e.Kind]++
	}
	return stats
}
