package scoring

import (
	"fmt"
	"math"
)

// Probability bounds; the engine never reports certainty or impossibility.
const (
	MinProbability = 0.05
	MaxProbability = 0.95
)

// Blend is the heuristic policy for combining historical and live signals.
type Blend struct {
	// HistoricalWeight and MomentumWeight must sum to 1.
	HistoricalWeight float64 `koanf:"historical_weight" json:"historical_weight"`
	MomentumWeight   float64 `koanf:"momentum_weight" json:"momentum_weight"`
	// RemapOffset and RemapScale map a dominance ratio onto the probability scale.
	RemapOffset float64 `koanf:"remap_offset" json:"remap_offset"`
	RemapScale  float64 `koanf:"remap_scale" json:"remap_scale"`
	// RecentBlend mixes the adaptive recent frequency into the base frequency.
	RecentBlend float64 `koanf:"recent_blend" json:"recent_blend"`
}

// DefaultBlend returns the 80/20 historical/momentum split with an identity remap.
func DefaultBlend() Blend {
	return Blend{HistoricalWeight: 0.8, MomentumWeight: 0.2, RemapOffset: 0, RemapScale: 1, RecentBlend: 0}
}

// Validate checks the blend weights.
func (b Blend) Validate() error {
	switch {
	case b.HistoricalWeight < 0 || b.MomentumWeight < 0:
		return fmt.Errorf("%w: negative blend weight", ErrInvalidPolicy)
	case math.Abs(b.HistoricalWeight+b.MomentumWeight-1) > 1e-6:
		return fmt.Errorf("%w: blend weights sum to %.4f, want 1", ErrInvalidPolicy, b.HistoricalWeight+b.MomentumWeight)
	case b.RemapScale < 0:
		return fmt.Errorf("%w: remap_scale %.2f < 0", ErrInvalidPolicy, b.RemapScale)
	case b.RecentBlend < 0 || b.RecentBlend > 1:
		return fmt.Errorf("%w: recent_blend %.2f outside [0,1]", ErrInvalidPolicy, b.RecentBlend)
	}
	return nil
}

// remap places a dominance ratio on the historical component's scale.
func (b Blend) remap(m float64) float64 {
	return clampUnit(b.RemapOffset + b.RemapScale*m)
}

// Clamp bounds a probability to [MinProbability, MaxProbability]. NaN maps to the minimum.
func Clamp(p float64) float64 {
	if math.IsNaN(p) {
		return MinProbability
	}
	return math.Max(MinProbability, math.Min(MaxProbability, p))
}

// Union returns the probability that at least one of two independent events
// occurs, clamped like single-entity results.
func Union(a, b float64) float64 {
	return Clamp(a + b - a*b)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
