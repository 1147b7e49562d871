package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteRecordStore persists match records in a SQLite database.
type SQLiteRecordStore struct {
	db *sql.DB
	mu sync.Mutex
}

var schema = []string{ //nolint:gochecknoglobals // bootstrap statements
	`CREATE TABLE IF NOT EXISTS match_records (
		match_id     TEXT PRIMARY KEY,
		competition  TEXT,
		played_at    TEXT NOT NULL,
		home_entity  TEXT NOT NULL,
		away_entity  TEXT NOT NULL,
		home_events  TEXT NOT NULL,
		away_events  TEXT NOT NULL,
		ingested_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mr_home ON match_records(home_entity)`,
	`CREATE INDEX IF NOT EXISTS idx_mr_away ON match_records(away_entity)`,
	`CREATE INDEX IF NOT EXISTS idx_mr_played_at ON match_records(played_at)`,
}

// OpenSQLiteRecordStore opens (creating if needed) the database at path and
// bootstraps its schema.
func OpenSQLiteRecordStore(ctx context.Context, path string) (*SQLiteRecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	s := &SQLiteRecordStore{db: db}
	n, err := s.Count(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	metrics.UpdateRepositoryRecordsTotal(n)
	return s, nil
}

// Append implements RecordStore.Append.
func (s *SQLiteRecordStore) Append(ctx context.Context, r model.MatchRecord) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	home, err := json.Marshal(nonNil(r.HomeEventTimes))
	if err != nil {
		return false, fmt.Errorf("encode home events: %w", err)
	}
	away, err := json.Marshal(nonNil(r.AwayEventTimes))
	if err != nil {
		return false, fmt.Errorf("encode away events: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO match_records (
			match_id, competition, played_at, home_entity, away_entity,
			home_events, away_events, ingested_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		r.MatchID,
		r.Competition,
		r.PlayedAt.UTC().Format(time.RFC3339Nano),
		r.HomeEntity,
		r.AwayEntity,
		string(home),
		string(away),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "insert_failed")
		return false, fmt.Errorf("insert match %s: %w", r.MatchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert match %s: %w", r.MatchID, err)
	}
	return n == 1, nil
}

// All implements RecordStore.All.
func (s *SQLiteRecordStore) All(ctx context.Context) ([]model.MatchRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, competition, played_at, home_entity, away_entity, home_events, away_events
		FROM match_records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query match records: %w", err)
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		var (
			r                    model.MatchRecord
			competition          sql.NullString
			playedAt, home, away string
		)
		if err := rows.Scan(&r.MatchID, &competition, &playedAt, &r.HomeEntity, &r.AwayEntity, &home, &away); err != nil {
			return nil, fmt.Errorf("scan match record: %w", err)
		}
		r.Competition = competition.String
		if r.PlayedAt, err = time.Parse(time.RFC3339Nano, playedAt); err != nil {
			return nil, fmt.Errorf("match %s: played_at: %w", r.MatchID, err)
		}
		if err := json.Unmarshal([]byte(home), &r.HomeEventTimes); err != nil {
			return nil, fmt.Errorf("match %s: home events: %w", r.MatchID, err)
		}
		if err := json.Unmarshal([]byte(away), &r.AwayEventTimes); err != nil {
			return nil, fmt.Errorf("match %s: away events: %w", r.MatchID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count implements RecordStore.Count.
func (s *SQLiteRecordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count match records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func nonNil(ts []int) []int {
	if ts == nil {
		return []int{}
	}
	return ts
}
