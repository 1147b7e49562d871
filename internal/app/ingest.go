package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

// Rejection names a record that was not accepted and why.
type Rejection struct {
	Index   int    `json:"index"`
	MatchID string `json:"match_id,omitempty"`
	Reason  string `json:"reason"`
}

// IngestResult summarises one ingest call.
type IngestResult struct {
	Accepted   int         `json:"accepted"`
	Duplicates int         `json:"duplicates"`
	Deferred   int         `json:"deferred"`
	Rejected   []Rejection `json:"rejected,omitempty"`
}

// IngestMatches validates, dedupes and queues finished match records for
// persistence. Records that did not fit in the queue are counted as
// Deferred, forgotten by the deduper, and reported with ErrQueueFull so the
// caller can resubmit them.
func (s *Service) IngestMatches(ctx context.Context, records []model.MatchRecord) (IngestResult, error) {
	var res IngestResult
	if !s.Running() {
		return res, ErrNotStarted
	}
	if len(records) == 0 {
		return res, ErrEmptyBatch
	}
	if len(records) > s.maxBatchSize {
		return res, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(records), s.maxBatchSize)
	}

	for i := range records {
		r := records[i]
		r.MatchID = strings.TrimSpace(r.MatchID)
		r.HomeEntity = strings.TrimSpace(r.HomeEntity)
		r.AwayEntity = strings.TrimSpace(r.AwayEntity)

		if err := r.Validate(); err != nil {
			metrics.RecordRecordRejected()
			res.Rejected = append(res.Rejected, Rejection{Index: i, MatchID: r.MatchID, Reason: err.Error()})
			continue
		}
		if s.deduper.SeenAndRecord(ctx, r.MatchID) {
			metrics.RecordRecordDuplicate()
			res.Duplicates++
			continue
		}
		if !s.queue.Enqueue(ctx, r) {
			s.deduper.Unrecord(ctx, r.MatchID)
			res.Deferred++
			continue
		}
		metrics.RecordRecordAccepted()
		res.Accepted++
	}

	s.logger.Debug(ctx, "match records ingested",
		logger.Int("accepted", res.Accepted),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("rejected", len(res.Rejected)),
		logger.Int("deferred", res.Deferred),
	)
	if res.Deferred > 0 {
		return res, fmt.Errorf("%w: %d records deferred", ErrQueueFull, res.Deferred)
	}
	return res, nil
}
