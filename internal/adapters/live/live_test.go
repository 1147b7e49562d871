package live_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/goalwatch/internal/adapters/live"
	"github.com/okian/goalwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time            { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStore(t *testing.T) {
	Convey("Given a live store with a ten minute ttl", t, func() {
		ctx := context.Background()
		clock := &fakeClock{t: time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)}
		s := live.NewStore(live.WithTTL(10*time.Minute), live.WithClock(clock.Now))

		snap := model.LiveMatchSnapshot{
			MatchID:         " m-1 ",
			PrimaryEntity:   "villa",
			SecondaryEntity: "wolves",
			Elapsed:         62,
			Primary:         &model.MomentumCounters{Shots: model.Ptr(9)},
			Secondary:       &model.MomentumCounters{Shots: model.Ptr(3)},
		}

		Convey("When a snapshot is put", func() {
			stored, err := s.Put(ctx, snap)

			Convey("Then it is readable by trimmed id and stamped", func() {
				So(err, ShouldBeNil)
				So(stored.MatchID, ShouldEqual, "m-1")
				So(stored.UpdatedAt, ShouldEqual, clock.t)

				got, ok := s.Get(ctx, "m-1")
				So(ok, ShouldBeTrue)
				So(got.Elapsed, ShouldEqual, 62.0)
				So(*got.Primary.Shots, ShouldEqual, 9.0)
				So(s.Len(ctx), ShouldEqual, 1)
			})

			Convey("And a newer snapshot replaces it", func() {
				snap.Elapsed = 70
				_, err := s.Put(ctx, snap)
				So(err, ShouldBeNil)

				got, ok := s.Get(ctx, "m-1")
				So(ok, ShouldBeTrue)
				So(got.Elapsed, ShouldEqual, 70.0)
				So(s.Len(ctx), ShouldEqual, 1)
			})

			Convey("And the ttl passes", func() {
				clock.Advance(11 * time.Minute)

				Convey("Then it reads as absent until swept", func() {
					_, ok := s.Get(ctx, "m-1")
					So(ok, ShouldBeFalse)
					So(s.Len(ctx), ShouldEqual, 0)
					So(s.Sweep(ctx), ShouldEqual, 1)
					So(s.Sweep(ctx), ShouldEqual, 0)
				})
			})

			Convey("And it is deleted", func() {
				So(s.Delete(ctx, "m-1"), ShouldBeTrue)
				So(s.Delete(ctx, "m-1"), ShouldBeFalse)

				_, ok := s.Get(ctx, "m-1")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a snapshot has no match id", func() {
			snap.MatchID = "  "
			_, err := s.Put(ctx, snap)

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, live.ErrMissingMatchID)
			})
		})

		Convey("When a counter is negative", func() {
			snap.Secondary = &model.MomentumCounters{Corners: model.Ptr(-1)}
			_, err := s.Put(ctx, snap)

			Convey("Then it is rejected and nothing is stored", func() {
				So(err, ShouldNotBeNil)
				So(s.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the id is unknown", func() {
			_, ok := s.Get(ctx, "nope")

			Convey("Then nothing is found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}
