package simulate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/goalwatch/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the global logger. With a log file, output goes
// to both stdout and the file. The returned func closes the file.
func SetupLogging(logFile, level string) (func() error, error) {
	var out io.Writer = os.Stdout
	closeFn := func() error { return nil }
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}
	if err := logger.Init(logger.WithWriter(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, err
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Goalwatch Simulation Tool
=========================

Generates a deterministic league, loads it into a running goalwatch server,
rebuilds profiles and verifies the scores it returns.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -seed uint
        Fixture seed; equal seeds produce equal leagues (default 1)
  -entities int
        Number of entities in the league (default 12)
  -seasons int
        Double round-robin seasons to generate (default 3)
  -batch int
        Records per POST /matches (default 100)
  -workers int
        Concurrent submitters (default 4)
  -rate float
        Requests per second (default 50)
  -burst int
        Rate limiter burst (default 10)
  -retries uint
        Retries per request on 429 and 5xx (default 5)
  -scores int
        Score requests to verify (default 40)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the generated fixtures to this JSON file
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/simulate -seasons 5 -entities 20
  go run ./cmd/simulate -rate 10 -workers 2 -output fixtures.json
`)
}
