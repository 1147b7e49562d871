// Package dedupe tracks which match ids have already been accepted for
// ingestion so a record submitted twice is queued once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen match ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the write happen under one lock.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a later submission is accepted again. Callers
	// use it when a recorded match could not be queued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type entry struct {
	id  string
	seq uint64
}

// inMemoryDeduper keeps ids in a map and, when bounded, evicts the oldest
// insertion first. order may hold stale entries left by Unrecord; they are
// skipped on eviction because their seq no longer matches the map.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64
	order   []entry
	head    int
	seq     uint64
	maxSize int // <= 0 means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper. It is bounded to 50000 ids unless
// WithMaxSize says otherwise.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	return d
}

func (d *inMemoryDeduper) bounded() bool { return d.maxSize > 0 }

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.bounded() && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seq++
	d.seen[id] = d.seq
	if d.bounded() {
		d.order = append(d.order, entry{id: id, seq: d.seq})
	}
	d.size.Store(int64(len(d.seen)))
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Store(int64(len(d.seen)))
	if d.bounded() && len(d.order)-d.head > 2*d.maxSize {
		d.compact()
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictOldest drops the earliest live insertion. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		e := d.order[d.head]
		d.order[d.head] = entry{}
		d.head++
		if seq, ok := d.seen[e.id]; ok && seq == e.seq {
			delete(d.seen, e.id)
			break
		}
	}
	if d.head > len(d.order)/2 {
		d.compact()
	}
}

// compact rewrites order without consumed or stale entries. Caller holds d.mu.
func (d *inMemoryDeduper) compact() {
	live := make([]entry, 0, len(d.seen))
	for _, e := range d.order[d.head:] {
		if seq, ok := d.seen[e.id]; ok && seq == e.seq {
			live = append(live, e)
		}
	}
	d.order = live
	d.head = 0
}
