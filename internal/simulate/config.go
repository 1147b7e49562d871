package simulate

import (
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
)

// Default configuration constants.
const (
	DefaultEntities    = 12
	DefaultSeasons     = 3
	DefaultBatchSize   = 100
	DefaultWorkers     = 4
	DefaultRate        = 50.0
	DefaultBurst       = 10
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 5
	DefaultScoreChecks = 40
	settleTimeout      = 30 * time.Second
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Seed        uint64        // Seed for fixture generation; equal seeds give equal fixtures
	Entities    int           // Number of entities in the league
	Seasons     int           // Double round-robin seasons to generate
	BatchSize   int           // Records per POST /matches
	Workers     int           // Concurrent submitters
	Rate        float64       // Requests per second across all submitters
	Burst       int           // Limiter burst
	Timeout     time.Duration // HTTP request timeout
	MaxRetries  uint64        // Retries per request on 429 and 5xx
	ScoreChecks int           // Score requests issued after the refresh
	OutputFile  string        // Optional JSON dump of the generated fixtures
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.Entities < 2 {
		out.Entities = DefaultEntities
	}
	if out.Seasons < 1 {
		out.Seasons = DefaultSeasons
	}
	if out.BatchSize < 1 {
		out.BatchSize = DefaultBatchSize
	}
	if out.Workers < 1 {
		out.Workers = DefaultWorkers
	}
	if out.Rate <= 0 {
		out.Rate = DefaultRate
	}
	if out.Burst < 1 {
		out.Burst = DefaultBurst
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.ScoreChecks < 1 {
		out.ScoreChecks = DefaultScoreChecks
	}
	return &out
}

// Stats holds run statistics.
type Stats struct {
	Generated     int
	Batches       int
	Accepted      int
	Duplicates    int
	Rejected      int
	Retries       int
	Profiles      int
	ScoreRequests int
	Violations    []Violation
	StartTime     time.Time
	Duration      time.Duration
}

// Violation describes a score response that broke an output property.
type Violation struct {
	Request string
	Reason  string
	Outcome model.Outcome
}
