package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrEmptyBatch    = errors.New("no match records in request")
	ErrBatchTooLarge = errors.New("too many match records in request")
	ErrQueueFull     = errors.New("ingestion queue full")
)

// ErrLiveMismatch is returned when a live snapshot names different entities
// than the scoring request.
var ErrLiveMismatch = errors.New("live snapshot entities do not match request")
