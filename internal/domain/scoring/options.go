package scoring

import (
	"github.com/okian/goalwatch/internal/domain/confidence"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/momentum"
	"github.com/okian/goalwatch/internal/domain/saturation"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithIntervals sets the catalog of scoreable intervals.
func WithIntervals(c *model.IntervalCatalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.intervals = c
		}
	}
}

// WithSaturation sets the saturation model.
func WithSaturation(m *saturation.Model) Option {
	return func(e *Engine) {
		if m != nil {
			e.saturation = m
		}
	}
}

// WithMomentum sets the momentum model.
func WithMomentum(m *momentum.Model) Option {
	return func(e *Engine) {
		if m != nil {
			e.momentum = m
		}
	}
}

// WithClassifier sets the confidence classifier.
func WithClassifier(c *confidence.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithBlend sets the hybrid blending policy. Invalid policies are ignored;
// use Blend.Validate to surface the reason.
func WithBlend(b Blend) Option {
	return func(e *Engine) {
		if b.Validate() == nil {
			e.blend = b
		}
	}
}

// WithWindowSizes sets the candidate recent-window sizes.
func WithWindowSizes(sizes ...int) Option {
	return func(e *Engine) {
		valid := make([]int, 0, len(sizes))
		for _, s := range sizes {
			if s > 0 {
				valid = append(valid, s)
			}
		}
		if len(valid) > 0 {
			e.windowSizes = valid
		}
	}
}
