// Package dedupe suppresses duplicate match reports.
//
// Game servers retry report submissions on flaky links, so the same match
// can arrive more than once. A report is identified by a content
// fingerprint rather than a client-supplied id; two reports with the same
// teams, points and timestamp are the same match.
package dedupe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

const defaultMaxSize = 50000

// Fingerprint derives the dedupe key for a match report. Team order is
// normalized so a retried report with the sides swapped still collides.
func Fingerprint(teamA, teamB model.TeamID, pointsA, pointsB int, ts time.Time) string {
	if teamB < teamA {
		teamA, teamB = teamB, teamA
		pointsA, pointsB = pointsB, pointsA
	}
	return fmt.Sprintf("%d:%d:%d:%d:%d", teamA, teamB, pointsA, pointsB, ts.Unix())
}

// Deduper records seen report fingerprints to keep re-submissions from
// entering the same match twice.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// if not. Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key, allowing a retry. Used when a report was
	// recorded but the engine failed before committing anything.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of fingerprints currently tracked.
	Size() int
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of keys
// for bounded eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	maxSize int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, 0, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The stale ring slot is left behind; evictOldest skips keys that are
	// no longer in the map.
	delete(d.seen, key)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// evictOldest drops the oldest live fingerprint. Must be called with
// d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		key := d.order[d.head]
		d.head++
		if _, ok := d.seen[key]; ok {
			delete(d.seen, key)
			break
		}
	}
	// Compact once the dead prefix dominates the ring.
	if d.head > len(d.order)/2 {
		d.order = append(d.order[:0], d.order[d.head:]...)
		d.head = 0
	}
}
