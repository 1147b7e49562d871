package momentum_test

import (
	"testing"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/momentum"
	. "github.com/smartystreets/goconvey/convey"
)

var p = model.Ptr

func TestModel_Score(t *testing.T) {
	Convey("Given the default momentum model", t, func() {
		m := momentum.Default()

		Convey("When every counter is reported", func() {
			home := &model.MomentumCounters{Possession: p(60), Shots: p(8), ShotsOnTarget: p(4), DangerousAttacks: p(30), Corners: p(6)}
			away := &model.MomentumCounters{Possession: p(40), Shots: p(2), ShotsOnTarget: p(1), DangerousAttacks: p(10), Corners: p(2)}

			Convey("Then the score is the weighted sum of ratios", func() {
				score, ok := m.Score(home, away)
				want := 0.25*0.6 + 0.20*0.8 + 0.20*0.8 + 0.20*0.75 + 0.15*0.75
				So(ok, ShouldBeTrue)
				So(score, ShouldAlmostEqual, want)
			})

			Convey("And swapping sides mirrors the score", func() {
				a, _ := m.Score(home, away)
				b, _ := m.Score(away, home)
				So(a+b, ShouldAlmostEqual, 1.0)
			})
		})

		Convey("When a counter is zero on both sides", func() {
			home := &model.MomentumCounters{Corners: p(0)}
			away := &model.MomentumCounters{Corners: p(0)}

			Convey("Then it contributes the neutral ratio", func() {
				score, ok := m.Score(home, away)
				So(ok, ShouldBeTrue)
				So(score, ShouldAlmostEqual, 0.5)
			})
		})

		Convey("When only some counters are reported", func() {
			home := &model.MomentumCounters{Possession: p(70), Shots: p(3)}
			away := &model.MomentumCounters{Possession: p(30), Shots: nil}

			Convey("Then missing counters are skipped and weights renormalised", func() {
				score, ok := m.Score(home, away)
				So(ok, ShouldBeTrue)
				So(score, ShouldAlmostEqual, 0.7)
			})
		})

		Convey("When no counters are reported", func() {
			Convey("Then the model returns no signal", func() {
				_, ok := m.Score(&model.MomentumCounters{}, &model.MomentumCounters{})
				So(ok, ShouldBeFalse)
				_, ok = m.Score(nil, nil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When building both scores from a snapshot", func() {
			snap := &model.LiveMatchSnapshot{
				Primary:   &model.MomentumCounters{Shots: p(3)},
				Secondary: &model.MomentumCounters{Shots: p(7)},
			}

			Convey("Then the secondary score is the complement", func() {
				a, b, ok := m.Scores(snap)
				So(ok, ShouldBeTrue)
				So(a, ShouldAlmostEqual, 0.3)
				So(b, ShouldAlmostEqual, 0.7)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given custom weight tables", t, func() {
		Convey("When weights do not sum to one", func() {
			_, err := momentum.New(momentum.Weights{model.CounterShots: 0.5})

			Convey("Then they are rejected", func() {
				So(err, ShouldWrap, momentum.ErrInvalidWeights)
			})
		})

		Convey("When a weight is negative", func() {
			_, err := momentum.New(momentum.Weights{model.CounterShots: 1.2, model.CounterCorners: -0.2})

			Convey("Then they are rejected", func() {
				So(err, ShouldWrap, momentum.ErrInvalidWeights)
			})
		})

		Convey("When a counter name is unknown", func() {
			_, err := momentum.New(momentum.WeightsFromMap(map[string]float64{"throw_ins": 1}))

			Convey("Then they are rejected", func() {
				So(err, ShouldWrap, momentum.ErrInvalidWeights)
			})
		})

		Convey("When a single counter carries all the weight", func() {
			m, err := momentum.New(momentum.Weights{model.CounterShotsOnTarget: 1})

			Convey("Then other counters are ignored", func() {
				So(err, ShouldBeNil)
				score, ok := m.Score(
					&model.MomentumCounters{ShotsOnTarget: p(1), Possession: p(90)},
					&model.MomentumCounters{ShotsOnTarget: p(3), Possession: p(10)},
				)
				So(ok, ShouldBeTrue)
				So(score, ShouldAlmostEqual, 0.25)
				So(m.Weights(), ShouldHaveLength, 1)
			})
		})
	})
}
