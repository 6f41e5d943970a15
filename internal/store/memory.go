package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore keeps entries in process memory with optional expiry.
type MemoryStore struct {
	entries map[string]*memoryEntry
	mutex   sync.RWMutex
	now     func() time.Time

	// Statistics tracking (atomic for thread safety)
	hits    int64
	misses  int64
	sets    int64
	deletes int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Stats is a snapshot of MemoryStore counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// Get retrieves a value from the store
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		atomic.AddInt64(&m.misses, 1)
		return nil, false, nil
	}

	if expired(entry.expiresAt, m.now()) {
		delete(m.entries, key)
		atomic.AddInt64(&m.misses, 1)
		return nil, false, nil
	}

	atomic.AddInt64(&m.hits, 1)
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores a value that never expires.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value that expires after ttl. A non-positive ttl means
// no expiry.
func (m *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.entries[key] = &memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: expiry(m.now(), ttl),
	}
	atomic.AddInt64(&m.sets, 1)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.entries, key)
	atomic.AddInt64(&m.deletes, 1)
	return nil
}

// Stats returns store statistics
func (m *MemoryStore) Stats() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Stats{
		Entries: len(m.entries),
		Hits:    atomic.LoadInt64(&m.hits),
		Misses:  atomic.LoadInt64(&m.misses),
		Sets:    atomic.LoadInt64(&m.sets),
		Deletes: atomic.LoadInt64(&m.deletes),
	}
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
