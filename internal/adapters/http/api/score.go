package api

import (
	"context"
	"net/http"

	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/model"
)

// ScoreDependencies defines the interface for scoring requests.
type ScoreDependencies interface {
	Score(ctx context.Context, req service.ScoreRequest) (model.Outcome, error)
}

// ScoreHandler handles scoring requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandlePostScore handles POST /score requests.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		writeFailure(w, NewKind(op, ErrMethod))
		return
	}
	var req service.ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Score(r.Context(), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
