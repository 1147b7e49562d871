package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/model"
)

// ProfileDependencies defines the interface for profile reads and rebuilds.
type ProfileDependencies interface {
	Profiles(ctx context.Context, entity string, venue model.VenueContext, interval string) ([]*model.EntityIntervalProfile, error)
	RefreshProfiles(ctx context.Context) (service.RefreshResult, error)
}

// ProfileHandler handles profile requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type profilesResponse struct {
	Entity   string                         `json:"entity"`
	Profiles []*model.EntityIntervalProfile `json:"profiles"`
}

// HandleGetProfiles handles GET /profiles/{entity}?venue=&interval=.
func (h *ProfileHandler) HandleGetProfiles(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profiles"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethod))
		return
	}
	entity := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if strings.TrimSpace(entity) == "" || strings.Contains(entity, "/") {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}

	var venue model.VenueContext
	if v := r.URL.Query().Get("venue"); v != "" {
		parsed, err := model.ParseVenue(v)
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		venue = parsed
	}
	interval := r.URL.Query().Get("interval")

	profiles, err := h.deps.Profiles(r.Context(), entity, venue, interval)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profilesResponse{Entity: strings.TrimSpace(entity), Profiles: profiles})
}

// HandleRefresh handles POST /profiles/refresh.
func (h *ProfileHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_profiles"
	if r.Method != http.MethodPost {
		writeFailure(w, NewKind(op, ErrMethod))
		return
	}
	res, err := h.deps.RefreshProfiles(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
