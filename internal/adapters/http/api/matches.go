package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/model"
)

// MatchDependencies defines the interface for historical record ingestion.
type MatchDependencies interface {
	IngestMatches(ctx context.Context, records []model.MatchRecord) (service.IngestResult, error)
}

// MatchesHandler handles match ingestion requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type ingestResponse struct {
	Status string `json:"status"`
	service.IngestResult
}

// HandlePostMatches handles POST /matches requests. The body is a single
// record, an array of records, or {"matches": [...]}.
func (h *MatchesHandler) HandlePostMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_matches"
	if r.Method != http.MethodPost {
		writeFailure(w, NewKind(op, ErrMethod))
		return
	}
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	records, err := parseRecords(raw)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.IngestMatches(r.Context(), records)
	switch {
	case errors.Is(err, service.ErrQueueFull):
		noteErrorCode(w, "backpressure")
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, ingestResponse{Status: "backpressure", IngestResult: res})
	case err != nil:
		writeFailure(w, Wrap(op, err))
	case res.Accepted == 0 && res.Duplicates == 0:
		noteErrorCode(w, "rejected")
		writeJSON(w, http.StatusBadRequest, ingestResponse{Status: "rejected", IngestResult: res})
	default:
		writeJSON(w, http.StatusAccepted, ingestResponse{Status: "accepted", IngestResult: res})
	}
}

func parseRecords(raw json.RawMessage) ([]model.MatchRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, service.ErrEmptyBatch
	}
	if raw[0] == '[' {
		var batch []model.MatchRecord
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if batch, ok := envelope["matches"]; ok {
		var records []model.MatchRecord
		if err := json.Unmarshal(batch, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var single model.MatchRecord
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []model.MatchRecord{single}, nil
}
