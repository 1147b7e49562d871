package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/goalwatch/internal/simulate"
	"github.com/okian/goalwatch/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		seed       = flag.Uint64("seed", 1, "Fixture seed")
		entities   = flag.Int("entities", simulate.DefaultEntities, "Number of entities in the league")
		seasons    = flag.Int("seasons", simulate.DefaultSeasons, "Double round-robin seasons to generate")
		batch      = flag.Int("batch", simulate.DefaultBatchSize, "Records per POST /matches")
		workers    = flag.Int("workers", simulate.DefaultWorkers, "Concurrent submitters")
		rps        = flag.Float64("rate", simulate.DefaultRate, "Requests per second")
		burst      = flag.Int("burst", simulate.DefaultBurst, "Rate limiter burst")
		retries    = flag.Uint64("retries", simulate.DefaultMaxRetries, "Retries per request on 429 and 5xx")
		scores     = flag.Int("scores", simulate.DefaultScoreChecks, "Score requests to verify")
		timeout    = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write the generated fixtures to this JSON file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	closeLog, err := simulate.SetupLogging(*logFile, level)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	stats, err := simulate.Run(ctx, &simulate.Config{
		BaseURL:     *baseURL,
		Seed:        *seed,
		Entities:    *entities,
		Seasons:     *seasons,
		BatchSize:   *batch,
		Workers:     *workers,
		Rate:        *rps,
		Burst:       *burst,
		Timeout:     *timeout,
		MaxRetries:  *retries,
		ScoreChecks: *scores,
		OutputFile:  *outputFile,
	})
	if err != nil {
		log := logger.Get()
		if errors.Is(err, simulate.ErrVerification) {
			for _, v := range stats.Violations {
				log.Error(ctx, "violation", logger.String("request", v.Request), logger.String("reason", v.Reason))
			}
		}
		log.Error(ctx, "simulation failed", logger.Error(err))
		_ = closeLog()
		os.Exit(1)
	}
}
