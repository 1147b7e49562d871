// Package profile turns finished match records into entity-interval profiles.
package profile

import (
	"math"
	"sort"

	"github.com/okian/goalwatch/internal/domain/model"
)

// DefaultRecentSize is how many most-recent samples a profile keeps.
const DefaultRecentSize = 5

// Builder aggregates match records into immutable profiles.
type Builder struct {
	intervals  *model.IntervalCatalog
	recentSize int
}

// Option configures a Builder.
type Option func(*Builder)

// WithIntervals sets the interval catalog profiles are built for.
func WithIntervals(c *model.IntervalCatalog) Option {
	return func(b *Builder) {
		if c != nil {
			b.intervals = c
		}
	}
}

// WithRecentSize sets how many recent samples each profile carries.
func WithRecentSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.recentSize = n
		}
	}
}

// NewBuilder creates a builder for the default catalog.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		intervals:  model.DefaultIntervalCatalog(),
		recentSize: DefaultRecentSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type sideKey struct {
	entity string
	venue  model.VenueContext
}

// Build produces one profile per (entity, venue, interval) for every entity
// and venue that appears in records. Invalid records are skipped and counted.
func (b *Builder) Build(records []model.MatchRecord) ([]*model.EntityIntervalProfile, int) {
	history := make(map[sideKey][]model.Sample)
	seen := make(map[string]struct{}, len(records))
	skipped := 0

	for i := range records {
		r := &records[i]
		if err := r.Validate(); err != nil {
			skipped++
			continue
		}
		if _, dup := seen[r.MatchID]; dup {
			skipped++
			continue
		}
		seen[r.MatchID] = struct{}{}

		for _, v := range []model.VenueContext{model.VenuePrimary, model.VenueSecondary} {
			entity, times := r.Side(v)
			k := sideKey{entity: entity, venue: v}
			history[k] = append(history[k], model.Sample{
				MatchID:    r.MatchID,
				PlayedAt:   r.PlayedAt,
				EventTimes: append([]int(nil), times...),
			})
		}
	}

	keys := make([]sideKey, 0, len(history))
	for k := range history {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].entity != keys[j].entity {
			return keys[i].entity < keys[j].entity
		}
		return keys[i].venue < keys[j].venue
	})

	out := make([]*model.EntityIntervalProfile, 0, len(keys)*len(b.intervals.All()))
	for _, k := range keys {
		samples := history[k]
		sortRecent(samples)
		recent := samples
		if len(recent) > b.recentSize {
			recent = recent[:b.recentSize]
		}
		for _, iv := range b.intervals.All() {
			out = append(out, b.aggregate(k, iv, samples, recent))
		}
	}
	return out, skipped
}

func (b *Builder) aggregate(k sideKey, iv model.Interval, samples, recent []model.Sample) *model.EntityIntervalProfile {
	p := &model.EntityIntervalProfile{
		EntityID:        k.entity,
		Venue:           k.venue,
		Interval:        iv,
		TotalSamples:    len(samples),
		RecentSubsample: recent,
	}

	var sum float64
	var minutes []float64
	for _, s := range samples {
		hit := false
		for _, t := range s.EventTimes {
			if !iv.Contains(t) {
				continue
			}
			hit = true
			minutes = append(minutes, float64(t))
			sum += float64(t)
		}
		if hit {
			p.SamplesWithEvent++
		}
	}
	p.TotalEventCount = len(minutes)
	if p.TotalEventCount == 0 {
		return p
	}

	mean := sum / float64(len(minutes))
	var sq float64
	for _, m := range minutes {
		sq += (m - mean) * (m - mean)
	}
	disp := math.Sqrt(sq / float64(len(minutes)))
	p.MeanEventTime = &mean
	p.Dispersion = &disp
	return p
}

// sortRecent orders samples most recent first, breaking ties by match id.
func sortRecent(s []model.Sample) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].PlayedAt.Equal(s[j].PlayedAt) {
			return s[i].PlayedAt.After(s[j].PlayedAt)
		}
		return s[i].MatchID < s[j].MatchID
	})
}
