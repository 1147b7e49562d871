package service

import (
	"time"

	"github.com/okian/goalwatch/internal/adapters/repository"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/scoring"
	"github.com/okian/goalwatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the ingestion queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the match id deduper. Zero or negative is unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithMaxBatchSize caps how many records one ingest call may carry.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithRecentSampleSize sets how many recent matches each profile keeps.
func WithRecentSampleSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentSize = n
		}
	}
}

// WithDBPath persists match records in a SQLite database at path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithRecordStore injects a record store. It takes precedence over WithDBPath.
func WithRecordStore(store repository.RecordStore) Option {
	return func(s *Service) {
		if store != nil {
			s.records = store
		}
	}
}

// WithRefreshInterval sets how often profiles are rebuilt after new records arrive.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithLiveTTL sets how long live snapshots stay readable.
func WithLiveTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.liveTTL = d
		}
	}
}

// WithIntervals sets the interval catalog used for profiles and scoring.
func WithIntervals(c *model.IntervalCatalog) Option {
	return func(s *Service) {
		if c != nil {
			s.intervals = c
		}
	}
}

// WithEngineOptions passes scoring policy to the engine.
func WithEngineOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
