// Package momentum turns live per-entity counters into a dominance score.
package momentum

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/goalwatch/internal/domain/model"
)

// ErrInvalidWeights reports a weight table that is negative, unknown or does not sum to one.
var ErrInvalidWeights = errors.New("invalid momentum weights")

const (
	neutralRatio    = 0.5
	weightTolerance = 1e-6
)

// Weights assigns a policy weight to each counter type.
type Weights map[model.CounterType]float64

// DefaultWeights is the documented policy split.
func DefaultWeights() Weights {
	return Weights{
		model.CounterPossession:       0.25,
		model.CounterShots:            0.20,
		model.CounterShotsOnTarget:    0.20,
		model.CounterDangerousAttacks: 0.20,
		model.CounterCorners:          0.15,
	}
}

// WeightsFromMap converts a string-keyed table, as read from config.
func WeightsFromMap(m map[string]float64) Weights {
	w := make(Weights, len(m))
	for k, v := range m {
		w[model.CounterType(k)] = v
	}
	return w
}

// Model computes dominance scores with a fixed, validated weight table.
type Model struct {
	weights Weights
}

// New validates weights and returns a Model.
func New(weights Weights) (*Model, error) {
	known := make(map[model.CounterType]bool, len(model.CounterTypes))
	for _, t := range model.CounterTypes {
		known[t] = true
	}
	sum := 0.0
	w := make(Weights, len(weights))
	for t, v := range weights {
		if !known[t] {
			return nil, fmt.Errorf("%w: unknown counter %q", ErrInvalidWeights, t)
		}
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidWeights, t, v)
		}
		w[t] = v
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %.4f, want 1", ErrInvalidWeights, sum)
	}
	return &Model{weights: w}, nil
}

// Default returns a Model using DefaultWeights.
func Default() *Model {
	m, err := New(DefaultWeights())
	if err != nil {
		panic(err)
	}
	return m
}

// Weights returns a copy of the active weight table.
func (m *Model) Weights() Weights {
	out := make(Weights, len(m.weights))
	for k, v := range m.weights {
		out[k] = v
	}
	return out
}

// Ratio returns a's share of a+b for a single counter; an all-zero counter carries no
// information and maps to the neutral 0.5.
func Ratio(a, b float64) float64 {
	if a+b <= 0 {
		return neutralRatio
	}
	return a / (a + b)
}

// Score returns the primary entity's dominance in [0,1]. Counter types missing
// on either side are skipped and the remaining weights renormalised; ok is
// false when nothing usable remains. The secondary score is 1 - primary.
func (m *Model) Score(primary, secondary *model.MomentumCounters) (float64, bool) {
	if primary == nil || secondary == nil {
		return 0, false
	}
	var weighted, used float64
	for _, t := range model.CounterTypes {
		w := m.weights[t]
		if w == 0 {
			continue
		}
		a, b := primary.Get(t), secondary.Get(t)
		if a == nil || b == nil {
			continue
		}
		weighted += w * Ratio(*a, *b)
		used += w
	}
	if used == 0 {
		return 0, false
	}
	return math.Max(0, math.Min(1, weighted/used)), true
}

// Scores returns both entities' dominance scores under the zero-sum assumption.
func (m *Model) Scores(snap *model.LiveMatchSnapshot) (primary, secondary float64, ok bool) {
	if snap == nil {
		return 0, 0, false
	}
	p, ok := m.Score(snap.Primary, snap.Secondary)
	if !ok {
		return 0, 0, false
	}
	return p, 1 - p, true
}
