// Package live keeps the most recent in-play snapshot of each match.
package live

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/metrics"
)

const defaultTTL = 3 * time.Hour

// ErrMissingMatchID is returned by Put for a snapshot without a match id.
var ErrMissingMatchID = errors.New("live snapshot missing match id")

// Store holds live snapshots keyed by match id. Snapshots older than the
// TTL read as absent and are dropped by Sweep.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]model.LiveMatchSnapshot
	ttl       time.Duration
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long a snapshot stays readable after its last update.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		snapshots: make(map[string]model.LiveMatchSnapshot),
		ttl:       defaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores snap, replacing any earlier snapshot of the same match.
// UpdatedAt is stamped when left zero. Counters are validated.
func (s *Store) Put(ctx context.Context, snap model.LiveMatchSnapshot) (model.LiveMatchSnapshot, error) {
	snap.MatchID = strings.TrimSpace(snap.MatchID)
	if snap.MatchID == "" {
		return model.LiveMatchSnapshot{}, ErrMissingMatchID
	}
	if err := snap.Primary.Validate(); err != nil {
		return model.LiveMatchSnapshot{}, err
	}
	if err := snap.Secondary.Validate(); err != nil {
		return model.LiveMatchSnapshot{}, err
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = s.now()
	}

	s.mu.Lock()
	s.snapshots[snap.MatchID] = snap
	n := len(s.snapshots)
	s.mu.Unlock()

	metrics.RecordLiveUpdate()
	metrics.UpdateLiveSnapshots(n)
	return snap, nil
}

// Get returns the snapshot for matchID. found is false when none exists or
// it has expired.
func (s *Store) Get(ctx context.Context, matchID string) (model.LiveMatchSnapshot, bool) {
	s.mu.RLock()
	snap, ok := s.snapshots[strings.TrimSpace(matchID)]
	s.mu.RUnlock()
	if !ok || s.expired(snap) {
		return model.LiveMatchSnapshot{}, false
	}
	return snap, true
}

// Delete removes the snapshot for matchID and reports whether one existed.
func (s *Store) Delete(ctx context.Context, matchID string) bool {
	s.mu.Lock()
	_, ok := s.snapshots[strings.TrimSpace(matchID)]
	delete(s.snapshots, strings.TrimSpace(matchID))
	n := len(s.snapshots)
	s.mu.Unlock()

	metrics.UpdateLiveSnapshots(n)
	return ok
}

// Len returns the number of unexpired snapshots.
func (s *Store) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, snap := range s.snapshots {
		if !s.expired(snap) {
			n++
		}
	}
	return n
}

// Sweep drops expired snapshots and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	s.mu.Lock()
	removed := 0
	for id, snap := range s.snapshots {
		if s.expired(snap) {
			delete(s.snapshots, id)
			removed++
		}
	}
	n := len(s.snapshots)
	s.mu.Unlock()

	metrics.UpdateLiveSnapshots(n)
	return removed
}

func (s *Store) expired(snap model.LiveMatchSnapshot) bool {
	return s.now().Sub(snap.UpdatedAt) > s.ttl
}
