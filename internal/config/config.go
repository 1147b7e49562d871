// Package config defines service configuration and the scoring policy it
// carries.
//
// Conventions:
//   - New(ctx) returns defaults; Load(ctx) layers a YAML file and env vars on top.
//   - Errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/goalwatch/internal/domain/confidence"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/momentum"
	"github.com/okian/goalwatch/internal/domain/recurrence"
	"github.com/okian/goalwatch/internal/domain/saturation"
	"github.com/okian/goalwatch/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the ingestion queue. Zero or negative uses the queue default.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of persistence workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the match id deduper. Zero or negative is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// DBPath selects the SQLite record store. Empty keeps records in memory.
	DBPath string `koanf:"db_path"`

	// RefreshIntervalMS is how often profiles are rebuilt when new records arrived.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// LiveTTLMinutes is how long a live snapshot stays readable.
	LiveTTLMinutes int `koanf:"live_ttl_minutes"`

	// MaxBatchSize caps the number of records in one POST /matches.
	MaxBatchSize int `koanf:"max_batch_size"`

	// RecentSampleSize is how many of the latest matches a profile keeps.
	RecentSampleSize int `koanf:"recent_sample_size"`

	// WindowSizes are the candidate recent-window sizes.
	WindowSizes []int `koanf:"window_sizes"`

	// Intervals lists the interval labels scored and profiled.
	Intervals []string `koanf:"intervals"`

	// MomentumWeights maps counter names to weights summing to 1.
	MomentumWeights map[string]float64 `koanf:"momentum_weights"`

	Saturation SaturationConfig      `koanf:"saturation"`
	Confidence confidence.Thresholds `koanf:"confidence"`
	Blend      scoring.Blend         `koanf:"blend"`
}

// SaturationConfig is the elapsed-time table and damping tiers.
type SaturationConfig struct {
	Bands          []saturation.Band `koanf:"bands"`
	Tiers          []saturation.Tier `koanf:"tiers"`
	OverflowFactor float64           `koanf:"overflow_factor"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention.
func New(_ context.Context) *Config {
	weights := make(map[string]float64)
	for t, w := range momentum.DefaultWeights() {
		weights[string(t)] = w
	}
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
		RefreshIntervalMS: 2000,
		LiveTTLMinutes:    180,
		MaxBatchSize:      500,
		RecentSampleSize:  5,
		WindowSizes:       append([]int(nil), recurrence.DefaultWindowSizes...),
		Intervals:         append([]string(nil), model.DefaultIntervalLabels...),
		MomentumWeights:   weights,
		Saturation: SaturationConfig{
			Bands:          saturation.DefaultBands(),
			Tiers:          saturation.DefaultTiers(),
			OverflowFactor: saturation.DefaultOverflowFactor,
		},
		Confidence: confidence.DefaultThresholds(),
		Blend:      scoring.DefaultBlend(),
	}
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// LiveTTL returns LiveTTLMinutes as a duration.
func (c *Config) LiveTTL() time.Duration {
	return time.Duration(c.LiveTTLMinutes) * time.Minute
}

// Policy is the validated scoring policy carried by a Config.
type Policy struct {
	Intervals *model.IntervalCatalog
	Engine    []scoring.Option
}

// Policy validates every policy table and returns the engine options.
func (c *Config) Policy() (*Policy, error) {
	catalog, err := model.NewIntervalCatalog(c.Intervals)
	if err != nil {
		return nil, fmt.Errorf("%w: intervals: %w", ErrInvalidConfig, err)
	}
	sat, err := saturation.New(c.Saturation.Bands, c.Saturation.Tiers, c.Saturation.OverflowFactor)
	if err != nil {
		return nil, fmt.Errorf("%w: saturation: %w", ErrInvalidConfig, err)
	}
	mom, err := momentum.New(momentum.WeightsFromMap(c.MomentumWeights))
	if err != nil {
		return nil, fmt.Errorf("%w: momentum_weights: %w", ErrInvalidConfig, err)
	}
	cls, err := confidence.New(c.Confidence)
	if err != nil {
		return nil, fmt.Errorf("%w: confidence: %w", ErrInvalidConfig, err)
	}
	if err := c.Blend.Validate(); err != nil {
		return nil, fmt.Errorf("%w: blend: %w", ErrInvalidConfig, err)
	}
	for _, s := range c.WindowSizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: window_sizes must be positive, got %d", ErrInvalidConfig, s)
		}
	}

	return &Policy{
		Intervals: catalog,
		Engine: []scoring.Option{
			scoring.WithIntervals(catalog),
			scoring.WithSaturation(sat),
			scoring.WithMomentum(mom),
			scoring.WithClassifier(cls),
			scoring.WithBlend(c.Blend),
			scoring.WithWindowSizes(c.WindowSizes...),
		},
	}, nil
}

// Validate checks the process settings and the scoring policy.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("%w: max_batch_size must be at least 1", ErrInvalidConfig)
	}
	if c.RecentSampleSize < 1 {
		return fmt.Errorf("%w: recent_sample_size must be at least 1", ErrInvalidConfig)
	}
	_, err := c.Policy()
	return err
}
