package simulate

import (
	"fmt"
	"math"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/scoring"
)

const unionTolerance = 1e-9

// Verify checks the properties every scored outcome must hold: both
// probabilities inside the clamp bounds and the union matching the capped
// independent combination of the two sides.
func Verify(out model.Outcome) error {
	for _, r := range []model.ScoringResult{out.Primary, out.Secondary} {
		if math.IsNaN(r.Probability) || r.Probability < scoring.MinProbability || r.Probability > scoring.MaxProbability {
			return fmt.Errorf("%s probability %v outside [%v, %v]", r.EntityID, r.Probability, scoring.MinProbability, scoring.MaxProbability)
		}
	}
	p, q := out.Primary.Probability, out.Secondary.Probability
	want := math.Min(scoring.MaxProbability, 1-(1-p)*(1-q))
	if math.Abs(out.UnionProbability-want) > unionTolerance {
		return fmt.Errorf("union %v, want %v", out.UnionProbability, want)
	}
	if out.UnionProbability+unionTolerance < math.Max(p, q) {
		return fmt.Errorf("union %v below side probability %v", out.UnionProbability, math.Max(p, q))
	}
	if out.Primary.Venue == out.Secondary.Venue {
		return fmt.Errorf("both sides scored at venue %s", out.Primary.Venue)
	}
	return nil
}
