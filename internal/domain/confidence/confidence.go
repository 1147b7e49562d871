// Package confidence maps sample adequacy and frequency to an ordinal label.
package confidence

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/goalwatch/internal/domain/model"
)

// ErrInvalidThresholds reports a policy that is not monotonic.
var ErrInvalidThresholds = errors.New("invalid confidence thresholds")

// Thresholds is the classification policy. Frequencies at or above a
// threshold earn the corresponding label.
type Thresholds struct {
	MinSamples int     `koanf:"min_samples" json:"min_samples"`
	Excellent  float64 `koanf:"excellent" json:"excellent"`
	High       float64 `koanf:"high" json:"high"`
	Moderate   float64 `koanf:"moderate" json:"moderate"`
}

// DefaultThresholds returns the documented policy.
func DefaultThresholds() Thresholds {
	return Thresholds{MinSamples: 3, Excellent: 0.75, High: 0.5, Moderate: 0.3}
}

// Validate checks the thresholds descend and lie in [0,1].
func (t Thresholds) Validate() error {
	if t.MinSamples < 0 {
		return fmt.Errorf("%w: min_samples %d < 0", ErrInvalidThresholds, t.MinSamples)
	}
	if !(t.Excellent >= t.High && t.High >= t.Moderate && t.Moderate >= 0 && t.Excellent <= 1) {
		return fmt.Errorf("%w: need 1 >= excellent(%.2f) >= high(%.2f) >= moderate(%.2f) >= 0",
			ErrInvalidThresholds, t.Excellent, t.High, t.Moderate)
	}
	return nil
}

// Classifier is a pure mapping from evidence to label.
type Classifier struct {
	t Thresholds
}

// New returns a Classifier after validating the policy.
func New(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{t: t}, nil
}

// Default returns a Classifier with the default policy.
func Default() *Classifier {
	return &Classifier{t: DefaultThresholds()}
}

// Classify labels a result. Too few samples are always LOW.
func (c *Classifier) Classify(totalSamples int, frequency float64) model.ConfidenceLevel {
	if totalSamples < c.t.MinSamples || totalSamples <= 0 || math.IsNaN(frequency) {
		return model.ConfidenceLow
	}
	switch {
	case frequency >= c.t.Excellent:
		return model.ConfidenceExcellent
	case frequency >= c.t.High:
		return model.ConfidenceHigh
	case frequency >= c.t.Moderate:
		return model.ConfidenceModerate
	default:
		return model.ConfidenceLow
	}
}
