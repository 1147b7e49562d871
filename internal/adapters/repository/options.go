package repository

import "time"

// Option applies a configuration option to the ProfileStore.
type Option func(*ProfileStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *ProfileStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
