package model

import (
	"fmt"
	"math"
	"time"
)

// MomentumCounters are live per-entity counters. A nil field means the feed
// did not report it, which is different from a reported zero.
type MomentumCounters struct {
	Possession       *float64 `json:"possession,omitempty"`
	Shots            *float64 `json:"shots,omitempty"`
	ShotsOnTarget    *float64 `json:"shots_on_target,omitempty"`
	DangerousAttacks *float64 `json:"dangerous_attacks,omitempty"`
	Corners          *float64 `json:"corners,omitempty"`
}

// CounterType names a momentum counter.
type CounterType string

// Tracked counter types.
const (
	CounterPossession       CounterType = "possession"
	CounterShots            CounterType = "shots"
	CounterShotsOnTarget    CounterType = "shots_on_target"
	CounterDangerousAttacks CounterType = "dangerous_attacks"
	CounterCorners          CounterType = "corners"
)

// CounterTypes lists every tracked counter in a stable order.
var CounterTypes = []CounterType{ //nolint:gochecknoglobals // read-only enumeration
	CounterPossession,
	CounterShots,
	CounterShotsOnTarget,
	CounterDangerousAttacks,
	CounterCorners,
}

// Get returns the counter value for t, or nil when absent.
func (c *MomentumCounters) Get(t CounterType) *float64 {
	if c == nil {
		return nil
	}
	switch t {
	case CounterPossession:
		return c.Possession
	case CounterShots:
		return c.Shots
	case CounterShotsOnTarget:
		return c.ShotsOnTarget
	case CounterDangerousAttacks:
		return c.DangerousAttacks
	case CounterCorners:
		return c.Corners
	}
	return nil
}

// Validate rejects negative or non-finite counter values.
func (c *MomentumCounters) Validate() error {
	if c == nil {
		return nil
	}
	for _, t := range CounterTypes {
		v := c.Get(t)
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidCounter, t, *v)
		}
	}
	return nil
}

// LiveMatchSnapshot is a read-only, point-in-time view of an ongoing match.
type LiveMatchSnapshot struct {
	MatchID         string            `json:"match_id"`
	PrimaryEntity   string            `json:"primary_entity"`
	SecondaryEntity string            `json:"secondary_entity"`
	Elapsed         float64           `json:"elapsed"`
	ScorePrimary    int               `json:"score_primary"`
	ScoreSecondary  int               `json:"score_secondary"`
	Primary         *MomentumCounters `json:"primary,omitempty"`
	Secondary       *MomentumCounters `json:"secondary,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Ptr is a small helper for building optional counters.
func Ptr(v float64) *float64 { return &v }
