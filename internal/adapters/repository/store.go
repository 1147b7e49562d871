// Package repository stores historical match records and serves the
// entity-interval profiles derived from them.
package repository

import (
	"context"

	"github.com/okian/goalwatch/internal/domain/model"
)

// RecordStore persists finished match records.
type RecordStore interface {
	// Append stores r unless a record with the same match id exists.
	// Returns true if the record was new.
	Append(ctx context.Context, r model.MatchRecord) (bool, error)

	// All returns every stored record in insertion order.
	All(ctx context.Context) ([]model.MatchRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}

// ProfileReader resolves profiles for scoring.
type ProfileReader interface {
	// Lookup returns the profile for an entity, venue and interval label.
	// found is false when no history exists for the key.
	Lookup(ctx context.Context, entity string, venue model.VenueContext, interval string) (*model.EntityIntervalProfile, bool)

	// Count returns the number of profiles currently served.
	Count(ctx context.Context) int
}
