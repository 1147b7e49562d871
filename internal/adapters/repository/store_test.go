package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/goalwatch/internal/adapters/repository"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func matchRecord(id string, day int, home, away string, homeTimes, awayTimes []int) model.MatchRecord {
	return model.MatchRecord{
		MatchID:        id,
		Competition:    "la-liga",
		PlayedAt:       time.Date(2025, 2, day, 20, 0, 0, 0, time.UTC),
		HomeEntity:     home,
		AwayEntity:     away,
		HomeEventTimes: homeTimes,
		AwayEventTimes: awayTimes,
	}
}

// exerciseRecordStore runs the behaviour every RecordStore must share.
func exerciseRecordStore(store repository.RecordStore) {
	ctx := context.Background()

	Convey("When records are appended", func() {
		added, err := store.Append(ctx, matchRecord("m1", 1, "betis", "sevilla", []int{12, 77}, []int{}))
		So(err, ShouldBeNil)
		So(added, ShouldBeTrue)
		added, err = store.Append(ctx, matchRecord("m2", 8, "sevilla", "betis", []int{40}, []int{3}))
		So(err, ShouldBeNil)
		So(added, ShouldBeTrue)

		Convey("Then they are returned in insertion order", func() {
			all, err := store.All(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)
			So(all[0].MatchID, ShouldEqual, "m1")
			So(all[0].HomeEventTimes, ShouldResemble, []int{12, 77})
			So(all[0].PlayedAt.Equal(time.Date(2025, 2, 1, 20, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(all[1].AwayEntity, ShouldEqual, "betis")
			So(all[1].Competition, ShouldEqual, "la-liga")

			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})

		Convey("Then a repeated match id is ignored", func() {
			added, err := store.Append(ctx, matchRecord("m1", 1, "betis", "sevilla", []int{1}, nil))
			So(err, ShouldBeNil)
			So(added, ShouldBeFalse)

			all, err := store.All(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)
			So(all[0].HomeEventTimes, ShouldResemble, []int{12, 77})
		})
	})

	Convey("When many goroutines append concurrently", func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = store.Append(ctx, matchRecord(fmt.Sprintf("c%d", i%10), 3, "betis", "sevilla", nil, nil))
			}(i)
		}
		wg.Wait()

		Convey("Then each match id is stored once", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 10)
		})
	})
}

func TestMemoryRecordStore(t *testing.T) {
	Convey("Given an in-memory record store", t, func() {
		store := repository.NewMemoryRecordStore()
		Reset(func() { _ = store.Close() })

		exerciseRecordStore(store)

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)
			_, err := store.Append(context.Background(), matchRecord("x", 1, "a", "b", nil, nil))

			Convey("Then writes fail", func() {
				So(err, ShouldEqual, repository.ErrClosed)
			})
		})
	})
}

func TestSQLiteRecordStore(t *testing.T) {
	Convey("Given a SQLite record store in a temp dir", t, func() {
		path := filepath.Join(t.TempDir(), "nested", "records.db")
		store, err := repository.OpenSQLiteRecordStore(context.Background(), path)
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		exerciseRecordStore(store)

		Convey("When the database is reopened", func() {
			_, err := store.Append(context.Background(), matchRecord("p1", 5, "betis", "sevilla", []int{44}, nil))
			So(err, ShouldBeNil)
			So(store.Close(), ShouldBeNil)

			reopened, err := repository.OpenSQLiteRecordStore(context.Background(), path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then previously stored records survive", func() {
				all, err := reopened.All(context.Background())
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
				So(all[0].HomeEventTimes, ShouldResemble, []int{44})
				So(all[0].AwayEventTimes, ShouldResemble, []int{})
			})
		})
	})
}

func TestProfileStore(t *testing.T) {
	Convey("Given a profile store", t, func() {
		ctx := context.Background()
		store := repository.NewProfileStore(ctx, repository.WithMetricsUpdateInterval(10*time.Millisecond))
		Reset(func() { _ = store.Close() })

		Convey("When it is empty", func() {
			_, found := store.Lookup(ctx, "betis", model.VenuePrimary, "0-15")

			Convey("Then lookups miss", func() {
				So(found, ShouldBeFalse)
				So(store.Count(ctx), ShouldEqual, 0)
				_, err := store.ForEntity(ctx, "betis", "", "")
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When profiles built from records are published", func() {
			records := []model.MatchRecord{
				matchRecord("m1", 1, "betis", "sevilla", []int{12, 77}, nil),
				matchRecord("m2", 8, "sevilla", "betis", []int{40}, []int{3}),
			}
			ps, skipped := profile.NewBuilder().Build(records)
			snap := store.Replace(ps, len(records), skipped)

			Convey("Then every profile is addressable by key", func() {
				So(snap.Records, ShouldEqual, 2)
				So(store.Count(ctx), ShouldEqual, len(ps))
				So(store.Entities(ctx), ShouldEqual, 2)

				p, found := store.Lookup(ctx, "betis", model.VenuePrimary, "0-15")
				So(found, ShouldBeTrue)
				So(p.SamplesWithEvent, ShouldEqual, 1)

				p, found = store.Lookup(ctx, " betis ", model.VenueSecondary, "0-15")
				So(found, ShouldBeTrue)
				So(p.TotalEventCount, ShouldEqual, 1)
			})

			Convey("Then entity listings are filtered and ordered", func() {
				all, err := store.ForEntity(ctx, "betis", "", "")
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2*len(model.DefaultIntervalLabels))
				So(all[0].Venue, ShouldEqual, model.VenuePrimary)
				So(all[0].Interval.Label, ShouldEqual, "0-15")

				home, err := store.ForEntity(ctx, "betis", model.VenuePrimary, "76-90")
				So(err, ShouldBeNil)
				So(home, ShouldHaveLength, 1)
				So(home[0].TotalEventCount, ShouldEqual, 1)
			})

			Convey("Then a later replace swaps the whole snapshot", func() {
				store.Replace(nil, 0, 0)
				_, found := store.Lookup(ctx, "betis", model.VenuePrimary, "0-15")
				So(found, ShouldBeFalse)
			})
		})
	})
}
