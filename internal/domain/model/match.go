package model

import (
	"fmt"
	"strings"
	"time"
)

// MatchRecord is one finished historical match as produced by the scrapers.
type MatchRecord struct {
	MatchID        string    `json:"match_id"`
	Competition    string    `json:"competition,omitempty"`
	PlayedAt       time.Time `json:"played_at"`
	HomeEntity     string    `json:"home_entity"`
	AwayEntity     string    `json:"away_entity"`
	HomeEventTimes []int     `json:"home_event_times"`
	AwayEventTimes []int     `json:"away_event_times"`
}

// Validate checks the fields the ingestion pipeline relies on.
func (r *MatchRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.MatchID) == "":
		return fmt.Errorf("%w: missing match_id", ErrInvalidRecord)
	case strings.TrimSpace(r.HomeEntity) == "":
		return fmt.Errorf("%w: missing home_entity", ErrInvalidRecord)
	case strings.TrimSpace(r.AwayEntity) == "":
		return fmt.Errorf("%w: missing away_entity", ErrInvalidRecord)
	case r.HomeEntity == r.AwayEntity:
		return fmt.Errorf("%w: home and away entity are both %q", ErrInvalidRecord, r.HomeEntity)
	case r.PlayedAt.IsZero():
		return fmt.Errorf("%w: missing played_at", ErrInvalidRecord)
	}
	for _, t := range r.HomeEventTimes {
		if t < 0 {
			return fmt.Errorf("%w: negative home event minute %d", ErrInvalidRecord, t)
		}
	}
	for _, t := range r.AwayEventTimes {
		if t < 0 {
			return fmt.Errorf("%w: negative away event minute %d", ErrInvalidRecord, t)
		}
	}
	return nil
}

// Side returns the entity id and event minutes for a venue.
func (r *MatchRecord) Side(v VenueContext) (string, []int) {
	if v == VenueSecondary {
		return r.AwayEntity, r.AwayEventTimes
	}
	return r.HomeEntity, r.HomeEventTimes
}
