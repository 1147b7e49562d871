package api

import (
	"context"
	"net/http"

	service "github.com/okian/goalwatch/internal/app"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	Liveness
	Stats(ctx context.Context) (service.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethod))
		return
	}
	stats, err := h.statsProvider.Stats(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
