package cache

import "sync"

// MemoryStore keeps the snapshot in memory. Used by tests and --no-cache runs.
type MemoryStore struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store pre-filled with entries.
func NewMemoryStore(entries ...Entry) *MemoryStore {
	return &MemoryStore{snap: Snapshot{Entries: entries}.clone()}
}

// Load returns a copy of the stored snapshot.
func (m *MemoryStore) Load() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// Save replaces the stored snapshot with a copy of snap.
func (m *MemoryStore) Save(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.clone()
	m.saves++
}

// Saves reports how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
