package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedMemoryStore(ttl time.Duration, maxEntries int) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl, maxEntries)
	s.now = clock.now
	return s, clock
}

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	in := []string{"a", "b"}
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	in[0] = "mutated"

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = %v, %v", ok, err)
	}
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Get(k) = %v, want [a b]", got)
	}

	got[1] = "mutated"
	again, _, _ := s.Get(ctx, "k")
	if again[1] != "b" {
		t.Error("Get returned a slice aliasing the stored entry")
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedMemoryStore(time.Minute, 0)

	if err := s.Set(ctx, "k", []string{"v"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	clock.advance(30 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Error("entry expired before TTL")
	}
	clock.advance(31 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("entry still present after TTL")
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedMemoryStore(0, 2)

	evicted := 0
	s.onEvict = func(n int) { evicted += n }

	_ = s.Set(ctx, "a", []string{"1"})
	clock.advance(time.Second)
	_ = s.Set(ctx, "b", []string{"2"})
	clock.advance(time.Second)

	// Touch "a" so "b" becomes least recently used.
	if _, ok, _ := s.Get(ctx, "a"); !ok {
		t.Fatal("Get(a) missed")
	}
	clock.advance(time.Second)
	_ = s.Set(ctx, "c", []string{"3"})

	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Error("least recently used entry was not evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok, _ := s.Get(ctx, key); !ok {
			t.Errorf("Get(%s) missed", key)
		}
	}
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}

	// Overwriting an existing key never evicts.
	_ = s.Set(ctx, "a", []string{"1b"})
	if evicted != 1 {
		t.Errorf("overwrite evicted an entry")
	}
}

func TestMemoryStore_PruneAndStats(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedMemoryStore(time.Minute, 0)

	for i := 0; i < 3; i++ {
		_ = s.Set(ctx, fmt.Sprintf("old-%d", i), []string{"x"})
	}
	clock.advance(2 * time.Minute)
	_ = s.Set(ctx, "fresh", []string{"y"})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Backend != "memory" || stats.Entries != 4 || stats.Expired != 3 {
		t.Errorf("Stats() = %+v, want 4 entries 3 expired", stats)
	}

	n, err := s.Prune(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Prune() = %d, %v, want 3", n, err)
	}
	if stats, _ := s.Stats(ctx); stats.Entries != 1 {
		t.Errorf("entries after prune = %d, want 1", stats.Entries)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() error = %v, want ErrClosed", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() error = %v, want ErrClosed", err)
	}
}
