// Package scoring blends historical recurrence statistics with live momentum
// into bounded, confidence-tagged probabilities that an entity scores inside
// an interval, and combines both entities into a union probability.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/goalwatch/internal/domain/confidence"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/momentum"
	"github.com/okian/goalwatch/internal/domain/recurrence"
	"github.com/okian/goalwatch/internal/domain/saturation"
)

// Input is everything a single Score call needs. Profiles may be nil when the
// store has no history for an entity; Live may be nil when no feed is available.
type Input struct {
	PrimaryEntity    string
	SecondaryEntity  string
	PrimaryVenue     model.VenueContext
	SecondaryVenue   model.VenueContext
	Interval         string
	Elapsed          float64
	ScorePrimary     int
	ScoreSecondary   int
	PrimaryProfile   *model.EntityIntervalProfile
	SecondaryProfile *model.EntityIntervalProfile
	Live             *model.LiveMatchSnapshot
}

// Scorer computes an Outcome from an Input.
type Scorer interface {
	Score(in Input) (model.Outcome, error)
}

// Engine is the hybrid event-probability scorer. It holds only immutable
// policy and is safe for concurrent use.
type Engine struct {
	intervals   *model.IntervalCatalog
	saturation  *saturation.Model
	momentum    *momentum.Model
	classifier  *confidence.Classifier
	blend       Blend
	windowSizes []int
}

// NewEngine creates an engine with default policy, adjusted by options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		intervals:   model.DefaultIntervalCatalog(),
		saturation:  saturation.Default(),
		momentum:    momentum.Default(),
		classifier:  confidence.Default(),
		blend:       DefaultBlend(),
		windowSizes: recurrence.DefaultWindowSizes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Intervals returns the catalog the engine validates against.
func (e *Engine) Intervals() *model.IntervalCatalog { return e.intervals }

// Score validates the input and scores both entities. Validation failures are
// the only errors; missing history or live data degrade to low-confidence
// or historical-only results.
func (e *Engine) Score(in Input) (model.Outcome, error) {
	iv, err := e.validate(&in)
	if err != nil {
		return model.Outcome{}, err
	}

	observed := in.ScorePrimary + in.ScoreSecondary
	satFactor := e.saturation.Factor(observed, in.Elapsed)

	var mPrimary, mSecondary *float64
	if in.Live != nil {
		if p, s, ok := e.momentum.Scores(in.Live); ok {
			mPrimary, mSecondary = &p, &s
		}
	}

	primary := e.scoreEntity(in.PrimaryEntity, in.PrimaryVenue, iv, in.PrimaryProfile, satFactor, mPrimary)
	secondary := e.scoreEntity(in.SecondaryEntity, in.SecondaryVenue, iv, in.SecondaryProfile, satFactor, mSecondary)

	return model.Outcome{
		Primary:          primary,
		Secondary:        secondary,
		UnionProbability: Union(primary.Probability, secondary.Probability),
	}, nil
}

// scoreEntity is the hybrid combiner for one entity.
func (e *Engine) scoreEntity(
	entity string,
	venue model.VenueContext,
	iv model.Interval,
	p *model.EntityIntervalProfile,
	satFactor float64,
	mom *float64,
) model.ScoringResult {
	res := model.ScoringResult{
		EntityID:         entity,
		Venue:            venue,
		Interval:         iv.Label,
		SaturationFactor: satFactor,
		Mode:             model.ModeHistorical,
	}

	if p.Empty() {
		res.Probability = MinProbability
		res.Confidence = model.ConfidenceLow
		return res
	}

	overall := recurrence.Frequency(p)
	res.HistoricalFrequency = overall
	res.SampleCounts = model.SampleCounts{Total: p.TotalSamples, WithEvent: p.SamplesWithEvent, Events: p.TotalEventCount}
	res.ExpectedWindow = recurrence.ExpectedWindow(p)
	res.Confidence = e.classifier.Classify(p.TotalSamples, overall)

	base := overall
	if recent := recurrence.RecentFrequency(p, e.windowSizes...); recent.OK {
		f := recent.Frequency
		res.RecentFrequency = &f
		res.RecentWindowSize = recent.WindowSize
		if e.blend.RecentBlend > 0 {
			base = (1-e.blend.RecentBlend)*overall + e.blend.RecentBlend*f
		}
	}

	historical := base * satFactor
	final := historical
	if mom != nil {
		m := *mom
		res.Momentum = &m
		res.Mode = model.ModeHybrid
		final = e.blend.HistoricalWeight*historical + e.blend.MomentumWeight*e.blend.remap(m)
	}
	res.Probability = Clamp(final)
	return res
}

// validate rejects malformed input at the boundary and fills venue defaults.
func (e *Engine) validate(in *Input) (model.Interval, error) {
	in.PrimaryEntity = strings.TrimSpace(in.PrimaryEntity)
	in.SecondaryEntity = strings.TrimSpace(in.SecondaryEntity)
	switch {
	case in.PrimaryEntity == "":
		return model.Interval{}, invalid("primary_entity", "must not be empty", nil)
	case in.SecondaryEntity == "":
		return model.Interval{}, invalid("secondary_entity", "must not be empty", nil)
	case in.PrimaryEntity == in.SecondaryEntity:
		return model.Interval{}, invalid("secondary_entity", "must differ from primary_entity", nil)
	}

	iv, err := e.intervals.Lookup(in.Interval)
	if err != nil {
		return model.Interval{}, invalid("interval", "not a known interval", err)
	}

	if math.IsNaN(in.Elapsed) || math.IsInf(in.Elapsed, 0) || in.Elapsed < 0 {
		return model.Interval{}, invalid("elapsed", "must be a finite number >= 0", nil)
	}
	if in.ScorePrimary < 0 || in.ScoreSecondary < 0 {
		return model.Interval{}, invalid("score", "must be >= 0", nil)
	}

	if in.PrimaryVenue == "" {
		in.PrimaryVenue = model.VenuePrimary
	}
	if in.SecondaryVenue == "" {
		in.SecondaryVenue = in.PrimaryVenue.Opposite()
	}
	if !in.PrimaryVenue.Valid() {
		return model.Interval{}, invalid("primary_venue", "unknown venue context", model.ErrUnknownVenue)
	}
	if !in.SecondaryVenue.Valid() {
		return model.Interval{}, invalid("secondary_venue", "unknown venue context", model.ErrUnknownVenue)
	}

	profiles := []struct {
		field string
		p     *model.EntityIntervalProfile
	}{
		{"primary_profile", in.PrimaryProfile},
		{"secondary_profile", in.SecondaryProfile},
	}
	for _, pf := range profiles {
		if pf.p == nil {
			continue
		}
		// bounds as well as the label: windows are clipped to the profile's interval
		if pf.p.Interval != iv {
			return model.Interval{}, invalid(pf.field, fmt.Sprintf("profile interval %q [%d,%d] does not match %s [%d,%d]",
				pf.p.Interval.Label, pf.p.Interval.Lo, pf.p.Interval.Hi, iv.Label, iv.Lo, iv.Hi), model.ErrInvalidProfile)
		}
		if err := pf.p.Validate(); err != nil {
			return model.Interval{}, invalid(pf.field, "violates profile invariants", err)
		}
	}

	if in.Live != nil {
		if err := in.Live.Primary.Validate(); err != nil {
			return model.Interval{}, invalid("live.primary", "bad momentum counter", err)
		}
		if err := in.Live.Secondary.Validate(); err != nil {
			return model.Interval{}, invalid("live.secondary", "bad momentum counter", err)
		}
	}
	return iv, nil
}
