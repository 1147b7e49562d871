package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConfidenceLevel is an ordinal label for how much evidence backs a probability.
type ConfidenceLevel int

// Confidence levels, lowest first.
const (
	ConfidenceLow ConfidenceLevel = iota
	ConfidenceModerate
	ConfidenceHigh
	ConfidenceExcellent
)

func (c ConfidenceLevel) String() string {
	switch c {
	case ConfidenceExcellent:
		return "EXCELLENT"
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceModerate:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// ParseConfidence parses a confidence label.
func ParseConfidence(s string) (ConfidenceLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EXCELLENT":
		return ConfidenceExcellent, nil
	case "HIGH":
		return ConfidenceHigh, nil
	case "MODERATE":
		return ConfidenceModerate, nil
	case "LOW":
		return ConfidenceLow, nil
	}
	return ConfidenceLow, fmt.Errorf("unknown confidence level %q", s)
}

// MarshalJSON encodes the level as its label.
func (c ConfidenceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a level from its label.
func (c *ConfidenceLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	lvl, err := ParseConfidence(s)
	if err != nil {
		return err
	}
	*c = lvl
	return nil
}

// Window is a sub-range of an interval where events are expected.
type Window struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Mode tells whether live momentum contributed to a result.
type Mode string

// Scoring modes.
const (
	ModeHybrid     Mode = "hybrid"
	ModeHistorical Mode = "historical"
)

// SampleCounts echoes the profile sizes a result was computed from.
type SampleCounts struct {
	Total     int `json:"total"`
	WithEvent int `json:"with_event"`
	Events    int `json:"events"`
}

// ScoringResult is the engine output for one entity in one interval.
type ScoringResult struct {
	EntityID            string          `json:"entity_id"`
	Venue               VenueContext    `json:"venue"`
	Interval            string          `json:"interval"`
	Probability         float64         `json:"probability"`
	Confidence          ConfidenceLevel `json:"confidence"`
	ExpectedWindow      *Window         `json:"expected_window,omitempty"`
	HistoricalFrequency float64         `json:"historical_frequency"`
	RecentFrequency     *float64        `json:"recent_frequency,omitempty"`
	RecentWindowSize    int             `json:"recent_window_size,omitempty"`
	SampleCounts        SampleCounts    `json:"sample_counts"`
	SaturationFactor    float64         `json:"saturation_factor"`
	Momentum            *float64        `json:"momentum,omitempty"`
	Mode                Mode            `json:"mode"`
}

// Outcome bundles both entity results with the union probability.
type Outcome struct {
	Primary          ScoringResult `json:"primary"`
	Secondary        ScoringResult `json:"secondary"`
	UnionProbability float64       `json:"union_probability"`
}
