package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/goalwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.DBPath, convey.ShouldBeEmpty)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.LiveTTL(), convey.ShouldEqual, 3*time.Hour)
			convey.So(cfg.Blend.HistoricalWeight, convey.ShouldEqual, 0.8)
			convey.So(cfg.MomentumWeights, convey.ShouldContainKey, "possession")
		})

		convey.Convey("Then the default policy is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)

			p, err := cfg.Policy()
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.Intervals.Labels(), convey.ShouldResemble, []string{"0-15", "16-30", "31-45", "46-60", "61-75", "76-90"})
			convey.So(len(p.Engine), convey.ShouldEqual, 6)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When momentum weights do not sum to one", func() {
			cfg.MomentumWeights = map[string]float64{"shots": 0.4, "corners": 0.3}

			convey.Convey("Then validation fails as invalid config", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When a weight names an unknown counter", func() {
			cfg.MomentumWeights = map[string]float64{"throw_ins": 1}

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the blend weights are broken", func() {
			cfg.Blend.HistoricalWeight = 0.9

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When an interval label is malformed", func() {
			cfg.Intervals = []string{"0-15", "late"}

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the saturation table is empty", func() {
			cfg.Saturation.Bands = nil

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When a window size is not positive", func() {
			cfg.WindowSizes = []int{3, 0}

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
