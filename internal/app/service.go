// Package service wires the record store, ingestion pipeline, profile
// refresher, live feed and scoring engine behind the operations the HTTP API
// exposes.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/goalwatch/internal/adapters/live"
	eventqueue "github.com/okian/goalwatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/goalwatch/internal/adapters/mq/worker"
	"github.com/okian/goalwatch/internal/adapters/repository"
	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/profile"
	"github.com/okian/goalwatch/internal/domain/scoring"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

const refreshKey = "profiles"

// Service owns every runtime component. Start must be called before use.
type Service struct {
	mu sync.RWMutex

	// Core components
	records   repository.RecordStore
	profiles  *repository.ProfileStore
	builder   *profile.Builder
	engine    *scoring.Engine
	intervals *model.IntervalCatalog
	live      *live.Store
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	maxBatchSize    int
	recentSize      int
	dbPath          string
	refreshInterval time.Duration
	liveTTL         time.Duration
	engineOpts      []scoring.Option

	// State
	started     bool
	ownsRecords bool
	dirty       atomic.Bool
	refreshes   singleflight.Group
	lastRefresh atomic.Pointer[RefreshResult]
	cancel      context.CancelFunc
	loopDone    chan struct{}

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      100_000,
		maxBatchSize:    500,
		recentSize:      profile.DefaultRecentSize,
		refreshInterval: 2 * time.Second,
		liveTTL:         3 * time.Hour,
		intervals:       model.DefaultIntervalCatalog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the record store, builds the initial profiles and starts the
// worker pool and the refresh loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting goalwatch service...")

	if s.records == nil {
		if s.dbPath != "" {
			store, err := repository.OpenSQLiteRecordStore(ctx, s.dbPath)
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			s.records = store
			s.ownsRecords = true
			s.logger.Info(ctx, "using sqlite record store", logger.String("path", s.dbPath))
		} else {
			s.records = repository.NewMemoryRecordStore()
			s.ownsRecords = true
			s.logger.Info(ctx, "using in-memory record store")
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.profiles = repository.NewProfileStore(runCtx)
	s.builder = profile.NewBuilder(
		profile.WithIntervals(s.intervals),
		profile.WithRecentSize(s.recentSize),
	)
	s.engine = scoring.NewEngine(append(append([]scoring.Option(nil), s.engineOpts...), scoring.WithIntervals(s.intervals))...)
	s.live = live.NewStore(live.WithTTL(s.liveTTL))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)

	fail := func(err error) error {
		cancel()
		_ = s.profiles.Close()
		if s.ownsRecords {
			_ = s.records.Close()
			s.records = nil
		}
		return err
	}

	existing, err := s.records.All(ctx)
	if err != nil {
		return fail(fmt.Errorf("read record store: %w", err))
	}
	for _, r := range existing {
		s.deduper.SeenAndRecord(ctx, r.MatchID)
	}

	sink := workerpool.SinkFunc(func(ctx context.Context, r workerpool.Record) (bool, error) {
		if err := r.Validate(); err != nil {
			return false, err
		}
		return s.records.Append(ctx, r)
	})
	s.pool = workerpool.NewPool(s.workerCount, s.queue, sink,
		workerpool.WithOnStored(func(_ workerpool.Record, added bool) {
			if added {
				s.dirty.Store(true)
			}
		}),
	)
	s.pool.Start(runCtx)

	if _, err := s.rebuild(ctx); err != nil {
		_ = s.queue.Close()
		return fail(err)
	}

	s.loopDone = make(chan struct{})
	go s.refreshLoop(runCtx)

	s.started = true
	s.logger.Info(ctx, "goalwatch service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queue.Capacity()),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("records", len(existing)),
	)
	return nil
}

// Stop drains the ingestion queue and releases every component.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping goalwatch service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	s.cancel()
	<-s.loopDone

	_ = s.profiles.Close()
	// an injected store belongs to the caller
	if s.ownsRecords {
		if err := s.records.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close record store: %w", err)
		}
		s.records = nil
	}

	s.started = false
	s.logger.Info(ctx, "goalwatch service stopped")
	return firstErr
}

// Running reports whether Start has completed and Stop has not been called.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// RefreshResult describes one profile rebuild.
type RefreshResult struct {
	Records  int       `json:"records"`
	Skipped  int       `json:"skipped"`
	Profiles int       `json:"profiles"`
	Entities int       `json:"entities"`
	BuiltAt  time.Time `json:"built_at"`
	Shared   bool      `json:"shared"`
}

// RefreshProfiles rebuilds every profile from the record store. Concurrent
// callers share one rebuild.
func (s *Service) RefreshProfiles(ctx context.Context) (RefreshResult, error) {
	if !s.Running() {
		return RefreshResult{}, ErrNotStarted
	}
	return s.rebuild(ctx)
}

func (s *Service) rebuild(ctx context.Context) (RefreshResult, error) {
	v, err, shared := s.refreshes.Do(refreshKey, func() (any, error) {
		s.dirty.Store(false)
		records, err := s.records.All(ctx)
		if err != nil {
			s.dirty.Store(true)
			metrics.RecordErrorByComponent("service", "refresh_failed")
			return nil, fmt.Errorf("rebuild profiles: %w", err)
		}
		profiles, skipped := s.builder.Build(records)
		snap := s.profiles.Replace(profiles, len(records), skipped)
		metrics.UpdateRepositoryRecordsTotal(len(records))

		res := &RefreshResult{
			Records:  snap.Records,
			Skipped:  snap.Skipped,
			Profiles: len(snap.ByKey),
			Entities: len(snap.ByEntity),
			BuiltAt:  snap.BuiltAt,
		}
		s.lastRefresh.Store(res)
		s.logger.Debug(ctx, "profiles rebuilt",
			logger.Int("records", res.Records),
			logger.Int("profiles", res.Profiles),
			logger.Int("skipped", res.Skipped),
		)
		return res, nil
	})
	if err != nil {
		return RefreshResult{}, err
	}
	res := *v.(*RefreshResult)
	res.Shared = shared
	return res, nil
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer close(s.loopDone)
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.dirty.Load() {
				if _, err := s.rebuild(ctx); err != nil {
					s.logger.Error(ctx, "profile refresh failed", logger.Error(err))
				}
			}
			if n := s.live.Sweep(ctx); n > 0 {
				s.logger.Debug(ctx, "expired live snapshots dropped", logger.Int("count", n))
			}
			metrics.UpdateQueueSize(s.queue.Len(ctx))
		}
	}
}

// Profiles returns the profiles of an entity, optionally narrowed by venue
// and interval label.
func (s *Service) Profiles(ctx context.Context, entity string, venue model.VenueContext, interval string) ([]*model.EntityIntervalProfile, error) {
	if !s.Running() {
		return nil, ErrNotStarted
	}
	if interval != "" {
		iv, err := s.intervals.Lookup(interval)
		if err != nil {
			return nil, err
		}
		interval = iv.Label
	}
	return s.profiles.ForEntity(ctx, entity, venue, interval)
}

// Intervals returns the configured interval labels.
func (s *Service) Intervals() []string {
	return s.intervals.Labels()
}

// PutLive stores a live snapshot.
func (s *Service) PutLive(ctx context.Context, snap model.LiveMatchSnapshot) (model.LiveMatchSnapshot, error) {
	if !s.Running() {
		return model.LiveMatchSnapshot{}, ErrNotStarted
	}
	return s.live.Put(ctx, snap)
}

// GetLive returns the live snapshot of a match.
func (s *Service) GetLive(ctx context.Context, matchID string) (model.LiveMatchSnapshot, bool) {
	if !s.Running() {
		return model.LiveMatchSnapshot{}, false
	}
	return s.live.Get(ctx, matchID)
}

// DeleteLive drops the live snapshot of a match.
func (s *Service) DeleteLive(ctx context.Context, matchID string) bool {
	if !s.Running() {
		return false
	}
	return s.live.Delete(ctx, matchID)
}

// Stats is a point-in-time view of the service for monitoring.
type Stats struct {
	Started       bool      `json:"started"`
	Workers       int       `json:"workers"`
	QueueLength   int       `json:"queue_length"`
	QueueCapacity int       `json:"queue_capacity"`
	Deduped       int64     `json:"dedupe_entries"`
	Processed     int64     `json:"processed"`
	Records       int       `json:"records"`
	Profiles      int       `json:"profiles"`
	Entities      int       `json:"entities"`
	LiveMatches   int       `json:"live_matches"`
	LastRefresh   time.Time `json:"last_refresh"`
	Intervals     []string  `json:"intervals"`
}

// Stats returns service statistics.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if !s.Running() {
		return Stats{Started: false}, nil
	}
	records, err := s.records.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count records: %w", err)
	}
	st := Stats{
		Started:       true,
		Workers:       s.pool.Size(),
		QueueLength:   s.queue.Len(ctx),
		QueueCapacity: s.queue.Capacity(),
		Deduped:       s.deduper.Size(),
		Processed:     s.pool.Processed(),
		Records:       records,
		Profiles:      s.profiles.Count(ctx),
		Entities:      s.profiles.Entities(ctx),
		LiveMatches:   s.live.Len(ctx),
		Intervals:     s.intervals.Labels(),
	}
	if last := s.lastRefresh.Load(); last != nil {
		st.LastRefresh = last.BuiltAt
	}
	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateProfilesTotal(st.Profiles)
	metrics.UpdateRepositoryRecordsTotal(records)
	return st, nil
}
