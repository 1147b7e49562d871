package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/metrics"
)

// MemoryRecordStore keeps match records in process memory.
type MemoryRecordStore struct {
	mu     sync.RWMutex
	byID   map[string]struct{}
	order  []model.MatchRecord
	closed bool
}

// NewMemoryRecordStore returns an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{byID: make(map[string]struct{})}
}

// Append implements RecordStore.Append.
func (s *MemoryRecordStore) Append(ctx context.Context, r model.MatchRecord) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if _, ok := s.byID[r.MatchID]; ok {
		s.mu.Unlock()
		return false, nil
	}
	s.byID[r.MatchID] = struct{}{}
	s.order = append(s.order, r)
	n := len(s.order)
	s.mu.Unlock()

	metrics.UpdateRepositoryRecordsTotal(n)
	return true, nil
}

// All implements RecordStore.All.
func (s *MemoryRecordStore) All(ctx context.Context) ([]model.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.MatchRecord, len(s.order))
	copy(out, s.order)
	return out, nil
}

// Count implements RecordStore.Count.
func (s *MemoryRecordStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.order), nil
}

// Close releases the store. Further calls fail with ErrClosed.
func (s *MemoryRecordStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
