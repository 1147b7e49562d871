package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/goalwatch/internal/domain/model"
)

// LiveDependencies defines the interface for the live snapshot feed.
type LiveDependencies interface {
	PutLive(ctx context.Context, snap model.LiveMatchSnapshot) (model.LiveMatchSnapshot, error)
	GetLive(ctx context.Context, matchID string) (model.LiveMatchSnapshot, bool)
	DeleteLive(ctx context.Context, matchID string) bool
}

// LiveHandler handles live snapshot requests.
type LiveHandler struct {
	deps LiveDependencies
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleLive handles PUT, GET and DELETE /live/{match_id}.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	const op = "api.live"
	matchID := strings.TrimPrefix(r.URL.Path, "/live/")
	if strings.TrimSpace(matchID) == "" || strings.Contains(matchID, "/") {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var snap model.LiveMatchSnapshot
		if err := decodeJSON(w, r, &snap); err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		snap.MatchID = matchID
		stored, err := h.deps.PutLive(r.Context(), snap)
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, stored)
	case http.MethodGet:
		snap, ok := h.deps.GetLive(r.Context(), matchID)
		if !ok {
			writeFailure(w, NewKind(op, ErrNotFound))
			return
		}
		writeJSON(w, http.StatusOK, snap)
	case http.MethodDelete:
		if !h.deps.DeleteLive(r.Context(), matchID) {
			writeFailure(w, NewKind(op, ErrNotFound))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeFailure(w, NewKind(op, ErrMethod))
	}
}
