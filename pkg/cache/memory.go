package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-process store with TTL expiry and LRU
// eviction. When the store reaches maxEntries, it evicts the least recently
// accessed entry.
type MemoryStore struct {
	entries map[string]*memoryEntry

	// ttl is the time-to-live for cache entries (0 = no expiry)
	ttl time.Duration

	// maxEntries is the maximum number of entries (0 = unlimited)
	maxEntries int

	mu     sync.Mutex
	closed bool
	now    func() time.Time

	// onEvict is called with the number of entries evicted by Set
	onEvict func(n int)
}

type memoryEntry struct {
	Entry
	lastAccessedAt time.Time
}

// NewMemoryStore creates a store. If ttl is 0, entries never expire. If
// maxEntries is 0, the store has unlimited size.
func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, ErrClosed
	}

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	now := s.now()
	if entry.expired(now) {
		delete(s.entries, key)
		return nil, false, nil
	}
	entry.lastAccessedAt = now
	return slices.Clone(entry.Generations), true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, generations []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	// Only evict if the key doesn't already exist
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLRU()
		if s.onEvict != nil {
			s.onEvict(1)
		}
	}

	now := s.now()
	entry := &memoryEntry{
		Entry: Entry{
			Generations: slices.Clone(generations),
			CreatedAt:   now,
		},
		lastAccessedAt: now,
	}
	if s.ttl > 0 {
		entry.ExpiresAt = now.Add(s.ttl)
	}
	s.entries[key] = entry
	return nil
}

// evictLRU evicts the least recently used entry.
// Must be called with the lock held.
func (s *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range s.entries {
		if oldestKey == "" || entry.lastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccessedAt
		}
	}

	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// Prune implements Store.
func (s *MemoryStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stats := Stats{Backend: s.Name(), Entries: len(s.entries)}
	for _, entry := range s.entries {
		if entry.expired(now) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = make(map[string]*memoryEntry)
	return nil
}
