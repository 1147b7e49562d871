// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VenueContext is the role an entity played in a historical match.
type VenueContext string

// Known venue contexts.
const (
	VenuePrimary   VenueContext = "PRIMARY"
	VenueSecondary VenueContext = "SECONDARY"
)

// ParseVenue accepts PRIMARY/SECONDARY and the home/away aliases, case-insensitively.
func ParseVenue(s string) (VenueContext, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRIMARY", "HOME":
		return VenuePrimary, nil
	case "SECONDARY", "AWAY":
		return VenueSecondary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVenue, s)
}

// Valid reports whether v is one of the known venue contexts.
func (v VenueContext) Valid() bool {
	return v == VenuePrimary || v == VenueSecondary
}

// Opposite returns the other venue context.
func (v VenueContext) Opposite() VenueContext {
	if v == VenuePrimary {
		return VenueSecondary
	}
	return VenuePrimary
}

func (v VenueContext) String() string { return string(v) }

// UnmarshalJSON parses venue aliases so API callers may send "home" or "away".
func (v *VenueContext) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*v = ""
		return nil
	}
	parsed, err := ParseVenue(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
