// Package dedupe tracks match keys already seen during ingestion so that a
// bout listed twice is only applied once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen match keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already seen and records it if not.
	SeenAndRecord(ctx context.Context, key string) bool
}

// inMemoryDeduper keeps keys in a map. In bounded mode (maxSize > 0) insertion
// order is kept in a ring and the oldest key is evicted when full; historical
// feeds are date-sorted, so a duplicate is almost always close to its twin.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> ring slot, -1 in unbounded mode
	ring    []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a deduper. By default it is unbounded.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}
	if len(d.ring) < d.maxSize {
		d.seen[key] = len(d.ring)
		d.ring = append(d.ring, key)
		return false
	}
	// full: overwrite the oldest slot
	delete(d.seen, d.ring[d.next])
	d.ring[d.next] = key
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}
