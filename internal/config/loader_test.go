package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/goalwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{ //nolint:gochecknoglobals // test fixture
	"GOALWATCH_CONFIG",
	"GOALWATCH_ADDR",
	"GOALWATCH_QUEUE_SIZE",
	"GOALWATCH_WORKER_COUNT",
	"GOALWATCH_DB_PATH",
	"GOALWATCH_LOG_FORMAT",
	"GOALWATCH_BLEND__RECENT_BLEND",
	"GOALWATCH_CONFIDENCE__MIN_SAMPLES",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goalwatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
				convey.So(len(cfg.MomentumWeights), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("GOALWATCH_ADDR", ":8080")
			_ = os.Setenv("GOALWATCH_QUEUE_SIZE", "42")
			_ = os.Setenv("GOALWATCH_DB_PATH", "/tmp/goalwatch.db")
			_ = os.Setenv("GOALWATCH_BLEND__RECENT_BLEND", "0.3")
			_ = os.Setenv("GOALWATCH_CONFIDENCE__MIN_SAMPLES", "8")

			cfg, err := config.Load(ctx)

			convey.Convey("Then flat and nested keys override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 42)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/goalwatch.db")
				convey.So(cfg.Blend.RecentBlend, convey.ShouldEqual, 0.3)
				convey.So(cfg.Blend.HistoricalWeight, convey.ShouldEqual, 0.8)
				convey.So(cfg.Confidence.MinSamples, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When a YAML file is configured", func() {
			path := writeConfigFile(t, `
addr: ":9090"
worker_count: 3
intervals: ["0-45", "46-90"]
momentum_weights:
  possession: 0.5
  shots_on_target: 0.5
blend:
  historical_weight: 0.7
  momentum_weight: 0.3
`)
			_ = os.Setenv("GOALWATCH_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values replace defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.Intervals, convey.ShouldResemble, []string{"0-45", "46-90"})
				convey.So(cfg.MomentumWeights, convey.ShouldResemble, map[string]float64{"possession": 0.5, "shots_on_target": 0.5})
				convey.So(cfg.Blend.MomentumWeight, convey.ShouldEqual, 0.3)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			})

			convey.Convey("And the environment overrides the file", func() {
				_ = os.Setenv("GOALWATCH_ADDR", ":7070")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the file carries an invalid policy", func() {
			path := writeConfigFile(t, `
momentum_weights:
  possession: 0.6
`)
			_ = os.Setenv("GOALWATCH_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is rejected as invalid config", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the YAML file is malformed", func() {
			path := writeConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("GOALWATCH_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("GOALWATCH_CONFIG", "/non/existent/goalwatch.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("GOALWATCH_QUEUE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("GOALWATCH_LOG_FORMAT", "xml")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
