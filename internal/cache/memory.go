package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	deadline  time.Time
}

// MemoryCache is a process-local Cache. Expired entries are dropped lazily on access.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	expiry  Expiry
	now     func() time.Time
}

func NewMemoryCache(expiry Expiry) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
		expiry:  expiry,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}

	now := m.now()
	if !now.Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}

	e.expiresAt = m.expiry.next(now, e.deadline)
	return e.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	deadline := now.Add(m.expiry.Absolute)
	m.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: m.expiry.next(now, deadline),
		deadline:  deadline,
	}
	return nil
}

func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired or not
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
