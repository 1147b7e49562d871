package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/goalwatch/internal/domain/model"
)

// Fixture generation constants.
const (
	homeGoalRate   = 1.45
	awayGoalRate   = 1.15
	strengthMin    = 0.6
	strengthRange  = 1.0
	regularMinutes = 90
	stoppageMax    = 5
	seasonGapDays  = 200
	competition    = "simulated-league"
)

// matchNamespace scopes the generated match ids so equal seeds give equal ids.
var matchNamespace = uuid.MustParse("6f1f2a7e-3c1b-4b8e-9a4d-2f6c0e9b7d51")

var seasonStart = time.Date(2022, time.August, 6, 15, 0, 0, 0, time.UTC)

// League is a generated set of entities and their historical records.
type League struct {
	Entities []string
	Records  []model.MatchRecord
}

// Generate builds a deterministic league: every season is a double round
// robin where each ordered pair meets once, one matchday per day.
func Generate(seed uint64, entities, seasons int) *League {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	names := make([]string, entities)
	attack := make([]float64, entities)
	defense := make([]float64, entities)
	for i := range names {
		names[i] = fmt.Sprintf("club-%02d", i+1)
		attack[i] = strengthMin + rng.Float64()*strengthRange
		defense[i] = strengthMin + rng.Float64()*strengthRange
	}

	league := &League{Entities: names}
	n := 0
	for s := 0; s < seasons; s++ {
		start := seasonStart.AddDate(0, 0, s*seasonGapDays)
		day := 0
		for h := 0; h < entities; h++ {
			for a := 0; a < entities; a++ {
				if h == a {
					continue
				}
				id := uuid.NewSHA1(matchNamespace, fmt.Appendf(nil, "%d/%d", seed, n))
				league.Records = append(league.Records, model.MatchRecord{
					MatchID:        id.String(),
					Competition:    competition,
					PlayedAt:       start.AddDate(0, 0, day),
					HomeEntity:     names[h],
					AwayEntity:     names[a],
					HomeEventTimes: eventMinutes(rng, homeGoalRate*attack[h]/defense[a]),
					AwayEventTimes: eventMinutes(rng, awayGoalRate*attack[a]/defense[h]),
				})
				n++
				day++
			}
		}
	}
	return league
}

// eventMinutes draws a Poisson event count and spreads the events over the
// match, allowing stoppage time.
func eventMinutes(rng *rand.Rand, lambda float64) []int {
	count := poisson(rng, lambda)
	if count == 0 {
		return nil
	}
	out := make([]int, count)
	for i := range out {
		out[i] = 1 + rng.IntN(regularMinutes+stoppageMax)
	}
	slices.Sort(out)
	return out
}

// poisson uses Knuth's multiplication method; lambda stays small here.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	for p := rng.Float64(); p > limit; p *= rng.Float64() {
		k++
	}
	return k
}
