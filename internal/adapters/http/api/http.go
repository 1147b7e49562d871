// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/goalwatch/internal/adapters/live"
	"github.com/okian/goalwatch/internal/adapters/repository"
	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/scoring"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ScoreDependencies
	MatchDependencies
	LiveDependencies
	ProfileDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	scoreHandler   *ScoreHandler
	matchesHandler *MatchesHandler
	liveHandler    *LiveHandler
	profileHandler *ProfileHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		scoreHandler:   NewScoreHandler(deps),
		matchesHandler: NewMatchesHandler(deps),
		liveHandler:    NewLiveHandler(deps),
		profileHandler: NewProfileHandler(deps),
	}
}

func (s *Server) routes() []route {
	return []route{
		{"/healthz", "healthz", s.healthHandler.HandleHealth},
		{"/stats", "stats", s.statsHandler.HandleStats},
		{"/score", "score", s.scoreHandler.HandlePostScore},
		{"/matches", "matches", s.matchesHandler.HandlePostMatches},
		{"/live/", "live", s.liveHandler.HandleLive},
		{"/profiles/refresh", "profiles_refresh", s.profileHandler.HandleRefresh},
		{"/profiles/", "profiles", s.profileHandler.HandleGetProfiles},
	}
}

// Register attaches all HTTP routes to mux. /metrics is left uninstrumented
// so scrapes do not count themselves.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, instrument(rt.endpoint, rt.handler))
	}
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	noteErrorCode(w, code)
	resp := errorResponse{Code: code, Message: msg}
	var ve *scoring.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	writeJSON(w, status, resp)
}

// writeFailure maps a service or domain error to a status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrBatchTooLarge), errors.Is(err, ErrPayloadTooBig):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrMethod):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, scoring.ErrMalformedInput),
		errors.Is(err, service.ErrLiveMismatch),
		errors.Is(err, live.ErrMissingMatchID),
		errors.Is(err, model.ErrInvalidCounter),
		errors.Is(err, model.ErrUnknownInterval),
		errors.Is(err, model.ErrInvalidInterval),
		errors.Is(err, model.ErrUnknownVenue):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return ErrPayloadTooBig
		}
		return err
	}
	return nil
}
