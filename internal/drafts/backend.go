package drafts

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned by backends that cannot currently persist anything
var ErrUnavailable = errors.New("draft backend unavailable")

// Backend is a persistent key-value store for encoded drafts. Every entry
// carries the time it was saved so old drafts can be swept.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, savedAt time.Time) error
	// Get returns found=false, err=nil when key has no entry
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
	// DeleteOlderThan removes entries saved before cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

type memoryEntry struct {
	data    []byte
	savedAt time.Time
}

// MemoryBackend keeps drafts in process memory. It survives nothing, which
// makes it suitable for tests and for running without a writable disk.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry)}
}

func (m *MemoryBackend) Put(_ context.Context, key string, data []byte, savedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{data: append([]byte(nil), data...), savedAt: savedAt}
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryBackend) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if e.savedAt.Before(cutoff) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryBackend) Close() error { return nil }

// Len reports the number of stored drafts
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// unavailableBackend stands in when the configured backend could not be opened
type unavailableBackend struct{}

func (unavailableBackend) Put(context.Context, string, []byte, time.Time) error {
	return ErrUnavailable
}

func (unavailableBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, ErrUnavailable
}

func (unavailableBackend) Delete(context.Context, string) error { return ErrUnavailable }

func (unavailableBackend) DeleteOlderThan(context.Context, time.Time) (int, error) {
	return 0, ErrUnavailable
}

func (unavailableBackend) Close() error { return nil }
