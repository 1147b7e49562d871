// Package simulate drives a running goalwatch server with a generated
// league: it loads the history, rebuilds profiles and checks the scores
// that come back.
package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrVerification is returned when at least one score broke an output property.
var ErrVerification = errors.New("score verification failed")

var errPending = errors.New("records still queued")

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulate")

	log.Info(ctx, "starting goalwatch simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("entities", cfg.Entities),
		logger.Int("seasons", cfg.Seasons),
		logger.Int("workers", cfg.Workers),
		logger.Float64("rate", cfg.Rate))

	client := NewClient(cfg.BaseURL, cfg.Timeout, rate.Limit(cfg.Rate), cfg.Burst, cfg.MaxRetries)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	league := Generate(cfg.Seed, cfg.Entities, cfg.Seasons)
	stats.Generated = len(league.Records)
	log.Info(ctx, "generated league", logger.Int("records", stats.Generated))

	if cfg.OutputFile != "" {
		if err := saveFixtures(cfg.OutputFile, league); err != nil {
			log.Warn(ctx, "failed to save fixtures", logger.Error(err))
		}
	}

	if err := submit(ctx, client, cfg, league.Records, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	if err := waitForRecords(ctx, client, len(league.Records)-stats.Rejected); err != nil {
		return stats, fmt.Errorf("waiting for persistence: %w", err)
	}

	refreshed, err := client.Refresh(ctx)
	if err != nil {
		return stats, fmt.Errorf("profile refresh failed: %w", err)
	}
	stats.Profiles = refreshed.Profiles
	log.Info(ctx, "profiles rebuilt",
		logger.Int("records", refreshed.Records),
		logger.Int("profiles", refreshed.Profiles))

	if err := checkScores(ctx, client, cfg, league, stats); err != nil {
		return stats, err
	}

	stats.Retries = client.Retries()
	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "simulation finished",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("retries", stats.Retries),
		logger.Int("scoreRequests", stats.ScoreRequests),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration))

	if len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d of %d outcomes", ErrVerification, len(stats.Violations), stats.ScoreRequests)
	}
	return stats, nil
}

// submit posts the records in batches with at most cfg.Workers in flight.
// A batch retried after backpressure reports its earlier accepted records
// as duplicates.
func submit(ctx context.Context, client *Client, cfg *Config, records []model.MatchRecord, stats *Stats) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for start := 0; start < len(records); start += cfg.BatchSize {
		batch := records[start:min(start+cfg.BatchSize, len(records))]
		g.Go(func() error {
			res, err := client.PostMatches(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			stats.Batches++
			stats.Accepted += res.Accepted
			stats.Duplicates += res.Duplicates
			stats.Rejected += len(res.Rejected)
			return nil
		})
	}
	return g.Wait()
}

// waitForRecords polls /stats until the workers persisted want records.
func waitForRecords(ctx context.Context, client *Client, want int) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = time.Second
	policy.MaxElapsedTime = settleTimeout

	return backoff.Retry(func() error {
		st, err := client.Stats(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if st.Records < want {
			return fmt.Errorf("%w: %d of %d stored", errPending, st.Records, want)
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}

// checkScores issues deterministic score requests and verifies each outcome.
// Every other request carries an inline live snapshot so both scoring modes
// are covered.
func checkScores(ctx context.Context, client *Client, cfg *Config, league *League, stats *Stats) error {
	st, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	labels := st.Intervals
	if len(labels) == 0 {
		labels = model.DefaultIntervalLabels
	}

	rng := rand.New(rand.NewPCG(cfg.Seed+1, cfg.Seed^0xda3e39cb94b95bdb))
	for i := 0; i < cfg.ScoreChecks; i++ {
		h := rng.IntN(len(league.Entities))
		a := (h + 1 + rng.IntN(len(league.Entities)-1)) % len(league.Entities)
		iv, err := model.ParseInterval(labels[rng.IntN(len(labels))])
		if err != nil {
			return fmt.Errorf("server interval: %w", err)
		}

		req := service.ScoreRequest{
			PrimaryEntity:   league.Entities[h],
			SecondaryEntity: league.Entities[a],
			Interval:        iv.Label,
		}
		if i%2 == 1 {
			req.Live = liveSnapshot(rng, req.PrimaryEntity, req.SecondaryEntity, iv)
		}

		out, err := client.Score(ctx, req)
		stats.ScoreRequests++
		if err != nil {
			return fmt.Errorf("score %s vs %s in %s: %w", req.PrimaryEntity, req.SecondaryEntity, req.Interval, err)
		}
		if verr := Verify(out); verr != nil {
			stats.Violations = append(stats.Violations, Violation{
				Request: fmt.Sprintf("%s vs %s %s", req.PrimaryEntity, req.SecondaryEntity, req.Interval),
				Reason:  verr.Error(),
				Outcome: out,
			})
		}
	}
	return nil
}

func liveSnapshot(rng *rand.Rand, primary, secondary string, iv model.Interval) *model.LiveMatchSnapshot {
	counters := func() *model.MomentumCounters {
		possession := 35 + rng.Float64()*30
		shots := float64(rng.IntN(12))
		onTarget := float64(rng.IntN(int(shots) + 1))
		attacks := float64(rng.IntN(60))
		corners := float64(rng.IntN(8))
		return &model.MomentumCounters{
			Possession:       &possession,
			Shots:            &shots,
			ShotsOnTarget:    &onTarget,
			DangerousAttacks: &attacks,
			Corners:          &corners,
		}
	}
	return &model.LiveMatchSnapshot{
		PrimaryEntity:   primary,
		SecondaryEntity: secondary,
		Elapsed:         float64(iv.Lo),
		ScorePrimary:    rng.IntN(3),
		ScoreSecondary:  rng.IntN(3),
		Primary:         counters(),
		Secondary:       counters(),
	}
}

func saveFixtures(filename string, league *League) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(league.Records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixtures: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("write fixtures: %w", err)
	}
	return nil
}
