package model

import (
	"fmt"
	"math"
	"time"
)

// Sample is one historical match as seen from a single entity.
type Sample struct {
	MatchID    string    `json:"match_id"`
	PlayedAt   time.Time `json:"played_at"`
	EventTimes []int     `json:"event_times"` // minutes of every event the entity produced
}

// HasEventIn reports whether the sample contains at least one event inside iv.
func (s Sample) HasEventIn(iv Interval) bool {
	for _, t := range s.EventTimes {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// EntityIntervalProfile summarises one entity's history for one venue and interval.
// Profiles are built wholesale by the ingestion pipeline and never mutated afterwards.
type EntityIntervalProfile struct {
	EntityID         string       `json:"entity_id"`
	Venue            VenueContext `json:"venue"`
	Interval         Interval     `json:"interval"`
	TotalSamples     int          `json:"total_samples"`
	SamplesWithEvent int          `json:"samples_with_event"`
	TotalEventCount  int          `json:"total_event_count"`
	MeanEventTime    *float64     `json:"mean_event_time,omitempty"`
	Dispersion       *float64     `json:"dispersion,omitempty"`
	RecentSubsample  []Sample     `json:"recent_subsample,omitempty"` // most recent first
}

// Validate checks the structural invariants of a profile.
func (p *EntityIntervalProfile) Validate() error {
	switch {
	case p.TotalSamples < 0:
		return fmt.Errorf("%w: total_samples %d < 0", ErrInvalidProfile, p.TotalSamples)
	case p.SamplesWithEvent < 0 || p.SamplesWithEvent > p.TotalSamples:
		return fmt.Errorf("%w: samples_with_event %d outside [0,%d]", ErrInvalidProfile, p.SamplesWithEvent, p.TotalSamples)
	case p.TotalEventCount < p.SamplesWithEvent:
		return fmt.Errorf("%w: total_event_count %d < samples_with_event %d", ErrInvalidProfile, p.TotalEventCount, p.SamplesWithEvent)
	}
	if p.TotalEventCount == 0 {
		return nil
	}
	if p.MeanEventTime == nil {
		return fmt.Errorf("%w: mean_event_time missing with %d events", ErrInvalidProfile, p.TotalEventCount)
	}
	m := *p.MeanEventTime
	if math.IsNaN(m) || m < float64(p.Interval.Lo) || m > float64(p.Interval.Hi) {
		return fmt.Errorf("%w: mean_event_time %.2f outside %s", ErrInvalidProfile, m, p.Interval.Label)
	}
	if p.Dispersion != nil && math.IsNaN(*p.Dispersion) {
		return fmt.Errorf("%w: dispersion is NaN", ErrInvalidProfile)
	}
	return nil
}

// Empty reports whether the profile carries no samples at all.
func (p *EntityIntervalProfile) Empty() bool {
	return p == nil || p.TotalSamples == 0
}

// ProfileKey addresses a profile in a store.
type ProfileKey struct {
	EntityID string
	Venue    VenueContext
	Interval string
}

// Key returns the store key of the profile.
func (p *EntityIntervalProfile) Key() ProfileKey {
	return ProfileKey{EntityID: p.EntityID, Venue: p.Venue, Interval: p.Interval.Label}
}
