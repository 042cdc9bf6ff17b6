// Package dedupe guards answer submissions so each question is answered at
// most once, whichever of the manual submit and the countdown gets there first.
package dedupe

import (
	"context"
	"fmt"
	"sync"
)

const defaultMaxSize = 1024

// Deduper records claimed submission keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was claimed and claims it if not.
	// Returns true if key was already claimed, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord releases a claim so the submission can be retried. Only used
	// when a claimed submission failed before anything was committed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// SubmissionKey identifies the answer slot of one question in one session.
func SubmissionKey(sessionID string, index int) string {
	return fmt.Sprintf("%s:%d", sessionID, index)
}

// inMemoryDeduper keeps claims in a map and, when bounded, forgets the oldest
// claim first. A finished interview only ever holds six claims, so the bound
// just caps growth across many sessions.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, oldest first; bounded mode only
	maxSize int      // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize && len(d.order) > 0 {
			d.evictOldest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; !exists {
		return
	}
	delete(d.seen, key)
	if d.maxSize <= 0 {
		return
	}
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// evictOldest drops the earliest claim. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	oldest := d.order[0]
	d.order[0] = ""
	d.order = d.order[1:]
	delete(d.seen, oldest)
}

// Size returns the current number of claims.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
