package worker

import (
	"github.com/okian/goalwatch/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMaxRetries bounds how often a failing sink write is retried.
func WithMaxRetries(n uint64) Option {
	return func(w *InMemoryWorker) {
		w.maxRetries = n
	}
}

// WithOnStored registers a callback run after each successful sink write.
// added is false when the sink already held the record.
func WithOnStored(fn func(r Record, added bool)) Option {
	return func(w *InMemoryWorker) {
		w.onStored = fn
	}
}
