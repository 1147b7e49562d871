package recurrence_test

import (
	"testing"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/recurrence"
	. "github.com/smartystreets/goconvey/convey"
)

func interval(label string) model.Interval {
	iv, err := model.ParseInterval(label)
	if err != nil {
		panic(err)
	}
	return iv
}

func samples(eventTimes ...[]int) []model.Sample {
	out := make([]model.Sample, len(eventTimes))
	base := time.Date(2025, 5, 1, 15, 0, 0, 0, time.UTC)
	for i, ts := range eventTimes {
		out[i] = model.Sample{MatchID: "m" + string(rune('a'+i)), PlayedAt: base.AddDate(0, 0, -7*i), EventTimes: ts}
	}
	return out
}

func TestFrequency(t *testing.T) {
	Convey("Given profiles with various sample counts", t, func() {
		Convey("When the profile has samples", func() {
			p := &model.EntityIntervalProfile{TotalSamples: 10, SamplesWithEvent: 8, TotalEventCount: 9}

			Convey("Then frequency is the share of samples with an event", func() {
				So(recurrence.Frequency(p), ShouldAlmostEqual, 0.8)
			})
		})

		Convey("When the profile has zero samples", func() {
			p := &model.EntityIntervalProfile{}

			Convey("Then frequency defaults to zero", func() {
				So(recurrence.Frequency(p), ShouldEqual, 0)
			})
		})

		Convey("When the profile is nil", func() {
			Convey("Then frequency defaults to zero without panicking", func() {
				So(func() { recurrence.Frequency(nil) }, ShouldNotPanic)
				So(recurrence.Frequency(nil), ShouldEqual, 0)
			})
		})
	})
}

func TestRecentFrequency(t *testing.T) {
	Convey("Given a profile whose long-run frequency is 0.5", t, func() {
		iv := interval("31-45")
		p := &model.EntityIntervalProfile{
			Interval:         iv,
			TotalSamples:     20,
			SamplesWithEvent: 10,
			TotalEventCount:  12,
		}

		Convey("When the three most recent samples all scored in the interval", func() {
			p.RecentSubsample = samples([]int{33}, []int{40}, []int{44, 88}, nil, nil)

			Convey("Then the three-sample window is the most discriminative", func() {
				r := recurrence.RecentFrequency(p)
				So(r.OK, ShouldBeTrue)
				So(r.WindowSize, ShouldEqual, 3)
				So(r.Frequency, ShouldAlmostEqual, 1.0)
			})
		})

		Convey("When events outside the interval are present", func() {
			p.RecentSubsample = samples([]int{10, 60}, []int{89}, []int{2}, []int{46})

			Convey("Then they are not counted", func() {
				r := recurrence.RecentFrequency(p)
				So(r.OK, ShouldBeTrue)
				So(r.Frequency, ShouldEqual, 0)
				So(r.WindowSize, ShouldEqual, 3)
			})
		})

		Convey("When windows disagree by different amounts", func() {
			// w=3 -> 1/3 (gap .167), w=4 -> 1/4 (gap .25), w=5 -> 2/5 (gap .1)
			p.RecentSubsample = samples(nil, nil, []int{35}, nil, []int{31})

			Convey("Then the window with the largest gap wins", func() {
				r := recurrence.RecentFrequency(p)
				So(r.WindowSize, ShouldEqual, 4)
				So(r.Frequency, ShouldAlmostEqual, 0.25)
			})
		})

		Convey("When fewer samples than the smallest window exist", func() {
			p.RecentSubsample = samples([]int{33}, []int{40})

			Convey("Then the recent frequency is undefined", func() {
				r := recurrence.RecentFrequency(p)
				So(r.OK, ShouldBeFalse)
				So(r.WindowSize, ShouldEqual, 0)
			})
		})

		Convey("When only some candidates are large enough", func() {
			p.RecentSubsample = samples([]int{33}, nil, nil, []int{40})

			Convey("Then oversized candidates are skipped", func() {
				r := recurrence.RecentFrequency(p, 3, 4, 5)
				So(r.OK, ShouldBeTrue)
				So(r.WindowSize, ShouldBeIn, []int{3, 4})
			})
		})

		Convey("When repeated calls are made", func() {
			p.RecentSubsample = samples([]int{33}, nil, []int{40}, nil, nil)

			Convey("Then the result is deterministic", func() {
				So(recurrence.RecentFrequency(p), ShouldResemble, recurrence.RecentFrequency(p))
			})
		})
	})
}

func TestExpectedWindow(t *testing.T) {
	Convey("Given the 31-45 interval", t, func() {
		iv := interval("31-45")

		Convey("When the profile has no events", func() {
			p := &model.EntityIntervalProfile{Interval: iv, TotalSamples: 6}

			Convey("Then the window is undefined", func() {
				So(recurrence.ExpectedWindow(p), ShouldBeNil)
			})
		})

		Convey("When mean and dispersion fit inside the interval", func() {
			p := &model.EntityIntervalProfile{
				Interval: iv, TotalSamples: 6, SamplesWithEvent: 3, TotalEventCount: 4,
				MeanEventTime: model.Ptr(38), Dispersion: model.Ptr(3),
			}

			Convey("Then the window is mean plus or minus dispersion", func() {
				w := recurrence.ExpectedWindow(p)
				So(w, ShouldNotBeNil)
				So(w.Low, ShouldAlmostEqual, 35)
				So(w.High, ShouldAlmostEqual, 41)
			})
		})

		Convey("When the dispersion overflows the interval", func() {
			p := &model.EntityIntervalProfile{
				Interval: iv, TotalSamples: 6, SamplesWithEvent: 3, TotalEventCount: 3,
				MeanEventTime: model.Ptr(43), Dispersion: model.Ptr(20),
			}

			Convey("Then the window is clipped to the interval bounds", func() {
				w := recurrence.ExpectedWindow(p)
				So(w.Low, ShouldEqual, 31)
				So(w.High, ShouldEqual, 45)
			})
		})

		Convey("When the dispersion is zero", func() {
			p := &model.EntityIntervalProfile{
				Interval: iv, TotalSamples: 4, SamplesWithEvent: 2, TotalEventCount: 2,
				MeanEventTime: model.Ptr(40), Dispersion: model.Ptr(0),
			}

			Convey("Then the window is widened to one minute", func() {
				w := recurrence.ExpectedWindow(p)
				So(w.High-w.Low, ShouldAlmostEqual, 1.0)
				So(w.Low, ShouldAlmostEqual, 39.5)
			})
		})

		Convey("When the dispersion is negative and the mean sits on the upper bound", func() {
			p := &model.EntityIntervalProfile{
				Interval: iv, TotalSamples: 4, SamplesWithEvent: 1, TotalEventCount: 1,
				MeanEventTime: model.Ptr(45), Dispersion: model.Ptr(-2),
			}

			Convey("Then the widened window still lies inside the interval", func() {
				w := recurrence.ExpectedWindow(p)
				So(w.High, ShouldEqual, 45)
				So(w.Low, ShouldAlmostEqual, 44)
			})
		})

		Convey("When the dispersion is missing", func() {
			p := &model.EntityIntervalProfile{
				Interval: iv, TotalSamples: 4, SamplesWithEvent: 1, TotalEventCount: 1,
				MeanEventTime: model.Ptr(31),
			}

			Convey("Then the window is widened from the lower bound", func() {
				w := recurrence.ExpectedWindow(p)
				So(w.Low, ShouldEqual, 31)
				So(w.High, ShouldAlmostEqual, 32)
			})
		})
	})
}
