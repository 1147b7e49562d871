// Package saturation dampens probabilities for matches that already produced
// more events than is typical for the elapsed time.
package saturation

import (
	"fmt"
	"math"
	"sort"
)

// epsilon guards the ratio against an expected count of zero.
const epsilon = 1e-6

// Band maps a starting minute to the expected cumulative event count of the
// whole contest from that minute onwards.
type Band struct {
	FromMinute    float64 `koanf:"from_minute" json:"from_minute"`
	ExpectedCount float64 `koanf:"expected_count" json:"expected_count"`
}

// Tier maps ratios up to and including MaxRatio to a multiplicative factor.
type Tier struct {
	MaxRatio float64 `koanf:"max_ratio" json:"max_ratio"`
	Factor   float64 `koanf:"factor" json:"factor"`
}

// DefaultBands is a football calibration of cumulative goals by minute.
func DefaultBands() []Band {
	return []Band{
		{FromMinute: 0, ExpectedCount: 0},
		{FromMinute: 15, ExpectedCount: 0.4},
		{FromMinute: 30, ExpectedCount: 0.8},
		{FromMinute: 45, ExpectedCount: 1.25},
		{FromMinute: 60, ExpectedCount: 1.65},
		{FromMinute: 75, ExpectedCount: 2.1},
		{FromMinute: 90, ExpectedCount: 2.6},
	}
}

// DefaultTiers returns the policy thresholds; ratios above the last tier use
// DefaultOverflowFactor.
func DefaultTiers() []Tier {
	return []Tier{
		{MaxRatio: 1.0, Factor: 1.0},
		{MaxRatio: 1.5, Factor: 0.95},
		{MaxRatio: 2.0, Factor: 0.85},
	}
}

// DefaultOverflowFactor applies when the ratio exceeds every tier.
const DefaultOverflowFactor = 0.70

// Model holds an immutable, validated saturation policy.
type Model struct {
	bands    []Band
	tiers    []Tier
	overflow float64
}

// New validates the policy and returns a Model. Bands are sorted by minute and
// must be non-decreasing in expected count; tier thresholds must ascend and
// factors must not increase.
func New(bands []Band, tiers []Tier, overflow float64) (*Model, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidTable)
	}
	b := make([]Band, len(bands))
	copy(b, bands)
	sort.SliceStable(b, func(i, j int) bool { return b[i].FromMinute < b[j].FromMinute })
	for i, band := range b {
		if band.FromMinute < 0 || band.ExpectedCount < 0 {
			return nil, fmt.Errorf("%w: negative band %+v", ErrInvalidTable, band)
		}
		if i > 0 {
			if band.FromMinute == b[i-1].FromMinute {
				return nil, fmt.Errorf("%w: duplicate minute %.0f", ErrInvalidTable, band.FromMinute)
			}
			if band.ExpectedCount < b[i-1].ExpectedCount {
				return nil, fmt.Errorf("%w: expected count decreases at minute %.0f", ErrInvalidTable, band.FromMinute)
			}
		}
	}

	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTiers)
	}
	t := make([]Tier, len(tiers))
	copy(t, tiers)
	prevRatio, prevFactor := 0.0, 1.0
	for i, tier := range t {
		if tier.Factor <= 0 || tier.Factor > 1 {
			return nil, fmt.Errorf("%w: factor %.2f outside (0,1]", ErrInvalidTiers, tier.Factor)
		}
		if i > 0 && tier.MaxRatio <= prevRatio {
			return nil, fmt.Errorf("%w: thresholds must ascend", ErrInvalidTiers)
		}
		if tier.Factor > prevFactor {
			return nil, fmt.Errorf("%w: factors must not increase", ErrInvalidTiers)
		}
		prevRatio, prevFactor = tier.MaxRatio, tier.Factor
	}
	if overflow <= 0 || overflow > prevFactor {
		return nil, fmt.Errorf("%w: overflow factor %.2f must be in (0, %.2f]", ErrInvalidTiers, overflow, prevFactor)
	}
	return &Model{bands: b, tiers: t, overflow: overflow}, nil
}

// Default returns the model built from the default policy.
func Default() *Model {
	m, err := New(DefaultBands(), DefaultTiers(), DefaultOverflowFactor)
	if err != nil {
		panic(err)
	}
	return m
}

// ExpectedCountAt returns the expected cumulative event count at elapsed minutes.
func (m *Model) ExpectedCountAt(elapsed float64) float64 {
	idx := sort.Search(len(m.bands), func(i int) bool { return m.bands[i].FromMinute > elapsed })
	if idx == 0 {
		return m.bands[0].ExpectedCount
	}
	return m.bands[idx-1].ExpectedCount
}

// Ratio returns observed over expected, guarded against a zero expectation.
func (m *Model) Ratio(observed int, elapsed float64) float64 {
	return float64(observed) / math.Max(m.ExpectedCountAt(elapsed), epsilon)
}

// Factor returns the multiplicative dampening for the observed count. It is
// 1 for matches at or below expectation and never increases with observed.
func (m *Model) Factor(observed int, elapsed float64) float64 {
	if observed <= 0 {
		return 1.0
	}
	r := m.Ratio(observed, elapsed)
	for _, t := range m.tiers {
		if r <= t.MaxRatio {
			return t.Factor
		}
	}
	return m.overflow
}
