package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/metrics"
)

// Snapshot is an immutable view of every profile built from the record store.
type Snapshot struct {
	ByKey    map[model.ProfileKey]*model.EntityIntervalProfile
	ByEntity map[string][]*model.EntityIntervalProfile
	Records  int
	Skipped  int
	BuiltAt  time.Time
}

func newSnapshot(profiles []*model.EntityIntervalProfile, records, skipped int, builtAt time.Time) *Snapshot {
	s := &Snapshot{
		ByKey:    make(map[model.ProfileKey]*model.EntityIntervalProfile, len(profiles)),
		ByEntity: make(map[string][]*model.EntityIntervalProfile),
		Records:  records,
		Skipped:  skipped,
		BuiltAt:  builtAt,
	}
	for _, p := range profiles {
		if p == nil {
			continue
		}
		s.ByKey[p.Key()] = p
		s.ByEntity[p.EntityID] = append(s.ByEntity[p.EntityID], p)
	}
	for _, ps := range s.ByEntity {
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].Venue != ps[j].Venue {
				return ps[i].Venue < ps[j].Venue
			}
			return ps[i].Interval.Lo < ps[j].Interval.Lo
		})
	}
	return s
}

// ProfileStore serves profiles from an atomically swapped snapshot. Readers
// never block writers; Replace publishes a whole new snapshot at once.
type ProfileStore struct {
	snapshot atomic.Pointer[Snapshot]

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	stopOnce              sync.Once
}

// NewProfileStore constructs an empty profile store and starts its metrics updater.
func NewProfileStore(ctx context.Context, opts ...Option) *ProfileStore {
	s := &ProfileStore{
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(newSnapshot(nil, 0, 0, time.Time{}))
	s.startMetricsUpdater(ctx)
	return s
}

// Replace publishes a new snapshot built from profiles.
func (s *ProfileStore) Replace(profiles []*model.EntityIntervalProfile, records, skipped int) *Snapshot {
	start := time.Now()
	snap := newSnapshot(profiles, records, skipped, start)
	s.snapshot.Store(snap)

	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordProfileRebuildDuration(ms)
	metrics.UpdateProfileRebuildLastDurationMs(ms)
	metrics.UpdateProfileRebuildLastUnix(float64(start.Unix()))
	metrics.IncrementProfileRebuildCount()
	metrics.UpdateProfilesTotal(len(snap.ByKey))
	return snap
}

// Snapshot returns the current snapshot.
func (s *ProfileStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Lookup implements ProfileReader.Lookup.
func (s *ProfileStore) Lookup(ctx context.Context, entity string, venue model.VenueContext, interval string) (*model.EntityIntervalProfile, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	key := model.ProfileKey{EntityID: strings.TrimSpace(entity), Venue: venue, Interval: interval}
	p, ok := s.snapshot.Load().ByKey[key]
	return p, ok
}

// ForEntity returns every profile of an entity, optionally filtered by venue
// and interval label. Returns ErrNotFound when the entity has no history.
func (s *ProfileStore) ForEntity(ctx context.Context, entity string, venue model.VenueContext, interval string) ([]*model.EntityIntervalProfile, error) {
	ps, ok := s.snapshot.Load().ByEntity[strings.TrimSpace(entity)]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	out := make([]*model.EntityIntervalProfile, 0, len(ps))
	for _, p := range ps {
		if venue != "" && p.Venue != venue {
			continue
		}
		if interval != "" && p.Interval.Label != interval {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Count implements ProfileReader.Count.
func (s *ProfileStore) Count(ctx context.Context) int {
	return len(s.snapshot.Load().ByKey)
}

// Entities returns the number of distinct entities with profiles.
func (s *ProfileStore) Entities(ctx context.Context) int {
	return len(s.snapshot.Load().ByEntity)
}

// Close stops the background metrics updater.
func (s *ProfileStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *ProfileStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateProfilesTotal(s.Count(ctx))
			}
		}
	}()
}
