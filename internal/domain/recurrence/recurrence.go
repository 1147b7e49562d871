// Package recurrence derives frequency and timing-window estimates from
// historical entity-interval profiles. All functions are pure.
package recurrence

import (
	"math"

	"github.com/okian/goalwatch/internal/domain/model"
)

// DefaultWindowSizes are the candidate recent-window sizes.
var DefaultWindowSizes = []int{3, 4, 5} //nolint:gochecknoglobals // read-only default

// minWindowWidth is the narrowest expected window ever reported, in minutes.
const minWindowWidth = 1.0

// Recent is the outcome of the adaptive recent-window search.
type Recent struct {
	WindowSize int
	Frequency  float64
	OK         bool
}

// Frequency returns the share of historical samples with at least one event.
// Profiles without samples yield 0.
func Frequency(p *model.EntityIntervalProfile) float64 {
	if p == nil || p.TotalSamples <= 0 {
		return 0
	}
	f := float64(p.SamplesWithEvent) / float64(p.TotalSamples)
	return math.Max(0, math.Min(1, f))
}

// RecentFrequency picks, among the candidate window sizes, the one whose recent
// frequency departs most from the long-run frequency. Sizes larger than the
// available recent subsample are skipped; ties keep the earlier candidate.
func RecentFrequency(p *model.EntityIntervalProfile, sizes ...int) Recent {
	if p == nil {
		return Recent{}
	}
	if len(sizes) == 0 {
		sizes = DefaultWindowSizes
	}
	overall := Frequency(p)

	best := Recent{}
	bestGap := -1.0
	for _, w := range sizes {
		if w < 1 || len(p.RecentSubsample) < w {
			continue
		}
		hits := 0
		for _, s := range p.RecentSubsample[:w] {
			if s.HasEventIn(p.Interval) {
				hits++
			}
		}
		f := float64(hits) / float64(w)
		if gap := math.Abs(f - overall); gap > bestGap {
			bestGap = gap
			best = Recent{WindowSize: w, Frequency: f, OK: true}
		}
	}
	return best
}

// ExpectedWindow returns mean ± dispersion clipped to the interval, or nil when
// the profile holds no events. Degenerate windows are widened to one minute.
func ExpectedWindow(p *model.EntityIntervalProfile) *model.Window {
	if p == nil || p.TotalEventCount == 0 || p.MeanEventTime == nil {
		return nil
	}
	lo, hi := float64(p.Interval.Lo), float64(p.Interval.Hi)
	mean := clamp(*p.MeanEventTime, lo, hi)

	d := 0.0
	if p.Dispersion != nil && *p.Dispersion > 0 && !math.IsInf(*p.Dispersion, 0) {
		d = *p.Dispersion
	}
	w := model.Window{
		Low:  clamp(mean-d, lo, hi),
		High: clamp(mean+d, lo, hi),
	}
	if w.High-w.Low < minWindowWidth {
		w = widen(w, lo, hi)
	}
	return &w
}

// widen grows w around its centre to minWindowWidth and shifts it back inside [lo, hi].
func widen(w model.Window, lo, hi float64) model.Window {
	centre := (w.Low + w.High) / 2
	out := model.Window{Low: centre - minWindowWidth/2, High: centre + minWindowWidth/2}
	if out.Low < lo {
		out.High += lo - out.Low
		out.Low = lo
	}
	if out.High > hi {
		out.Low -= out.High - hi
		out.High = hi
	}
	out.Low = math.Max(out.Low, lo)
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
