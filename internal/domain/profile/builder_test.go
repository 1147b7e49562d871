package profile_test

import (
	"testing"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func record(id string, day int, home, away string, homeTimes, awayTimes []int) model.MatchRecord {
	return model.MatchRecord{
		MatchID:        id,
		Competition:    "premier-league",
		PlayedAt:       time.Date(2025, 3, day, 15, 0, 0, 0, time.UTC),
		HomeEntity:     home,
		AwayEntity:     away,
		HomeEventTimes: homeTimes,
		AwayEventTimes: awayTimes,
	}
}

func find(ps []*model.EntityIntervalProfile, entity string, venue model.VenueContext, label string) *model.EntityIntervalProfile {
	for _, p := range ps {
		if p.EntityID == entity && p.Venue == venue && p.Interval.Label == label {
			return p
		}
	}
	return nil
}

func TestBuilder_Build(t *testing.T) {
	Convey("Given a builder with the default catalog", t, func() {
		b := profile.NewBuilder(profile.WithRecentSize(2))

		records := []model.MatchRecord{
			record("m1", 1, "arsenal", "chelsea", []int{33, 40}, []int{5}),
			record("m2", 8, "arsenal", "spurs", []int{12}, nil),
			record("m3", 15, "arsenal", "everton", []int{44, 80}, []int{31}),
			record("m4", 22, "chelsea", "arsenal", nil, []int{35}),
		}

		Convey("When profiles are built", func() {
			ps, skipped := b.Build(records)

			Convey("Then every seen entity and venue gets a profile per interval", func() {
				So(skipped, ShouldEqual, 0)
				// arsenal home, arsenal away, chelsea home, chelsea away, spurs away, everton away
				So(ps, ShouldHaveLength, 6*len(model.DefaultIntervalLabels))
			})

			Convey("Then counts and moments are aggregated per interval", func() {
				p := find(ps, "arsenal", model.VenuePrimary, "31-45")
				So(p, ShouldNotBeNil)
				So(p.TotalSamples, ShouldEqual, 3)
				So(p.SamplesWithEvent, ShouldEqual, 2)
				So(p.TotalEventCount, ShouldEqual, 3)
				So(*p.MeanEventTime, ShouldAlmostEqual, (33.0+40+44)/3)
				So(*p.Dispersion, ShouldBeGreaterThan, 0)
				So(p.Validate(), ShouldBeNil)
			})

			Convey("Then intervals without events have no moments", func() {
				p := find(ps, "arsenal", model.VenuePrimary, "46-60")
				So(p.TotalSamples, ShouldEqual, 3)
				So(p.SamplesWithEvent, ShouldEqual, 0)
				So(p.MeanEventTime, ShouldBeNil)
				So(p.Dispersion, ShouldBeNil)
			})

			Convey("Then the recent subsample is the most recent matches first", func() {
				p := find(ps, "arsenal", model.VenuePrimary, "0-15")
				So(p.RecentSubsample, ShouldHaveLength, 2)
				So(p.RecentSubsample[0].MatchID, ShouldEqual, "m3")
				So(p.RecentSubsample[1].MatchID, ShouldEqual, "m2")
			})

			Convey("Then away history is kept separate", func() {
				p := find(ps, "arsenal", model.VenueSecondary, "31-45")
				So(p.TotalSamples, ShouldEqual, 1)
				So(p.SamplesWithEvent, ShouldEqual, 1)
				So(*p.Dispersion, ShouldEqual, 0.0)
			})
		})

		Convey("When records are invalid or repeated", func() {
			bad := record("m5", 29, "arsenal", "arsenal", nil, nil)
			ps, skipped := b.Build(append(records, bad, records[0]))

			Convey("Then they are skipped", func() {
				So(skipped, ShouldEqual, 2)
				So(find(ps, "arsenal", model.VenuePrimary, "31-45").TotalSamples, ShouldEqual, 3)
			})
		})

		Convey("When there are no records", func() {
			ps, skipped := b.Build(nil)

			Convey("Then nothing is built", func() {
				So(ps, ShouldBeEmpty)
				So(skipped, ShouldEqual, 0)
			})
		})
	})
}
