package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/scoring"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

// ScoreRequest asks for both entities' probabilities in one interval.
// Live counters come from Live when given, otherwise from the stored
// snapshot of MatchID. Elapsed and the scores default to the snapshot's
// values when omitted.
type ScoreRequest struct {
	MatchID         string                   `json:"match_id,omitempty"`
	PrimaryEntity   string                   `json:"primary_entity"`
	SecondaryEntity string                   `json:"secondary_entity"`
	PrimaryVenue    model.VenueContext       `json:"primary_venue,omitempty"`
	SecondaryVenue  model.VenueContext       `json:"secondary_venue,omitempty"`
	Interval        string                   `json:"interval"`
	Elapsed         *float64                 `json:"elapsed,omitempty"`
	ScorePrimary    *int                     `json:"score_primary,omitempty"`
	ScoreSecondary  *int                     `json:"score_secondary,omitempty"`
	Live            *model.LiveMatchSnapshot `json:"live,omitempty"`
}

// Score resolves profiles and live data for req and runs the engine.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (model.Outcome, error) {
	if !s.Running() {
		return model.Outcome{}, ErrNotStarted
	}
	start := time.Now()

	primary := strings.TrimSpace(req.PrimaryEntity)
	secondary := strings.TrimSpace(req.SecondaryEntity)
	pv := req.PrimaryVenue
	if pv == "" {
		pv = model.VenuePrimary
	}
	sv := req.SecondaryVenue
	if sv == "" {
		sv = pv.Opposite()
	}

	// profiles are keyed by the catalog label, not the request's spelling
	iv, err := s.intervals.Lookup(req.Interval)
	if err != nil {
		metrics.RecordValidationFailure("interval")
		metrics.RecordScoringError()
		return model.Outcome{}, &scoring.ValidationError{Field: "interval", Reason: "not a known interval", Err: err}
	}

	var pp, sp *model.EntityIntervalProfile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pp, _ = s.profiles.Lookup(gctx, primary, pv, iv.Label)
		return gctx.Err()
	})
	g.Go(func() error {
		sp, _ = s.profiles.Lookup(gctx, secondary, sv, iv.Label)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return model.Outcome{}, err
	}

	snap, err := s.resolveLive(ctx, req, primary, secondary)
	if err != nil {
		metrics.RecordValidationFailure("live")
		return model.Outcome{}, err
	}

	in := scoring.Input{
		PrimaryEntity:    primary,
		SecondaryEntity:  secondary,
		PrimaryVenue:     pv,
		SecondaryVenue:   sv,
		Interval:         iv.Label,
		PrimaryProfile:   pp,
		SecondaryProfile: sp,
		Live:             snap,
	}
	if snap != nil {
		in.Elapsed = snap.Elapsed
		in.ScorePrimary = snap.ScorePrimary
		in.ScoreSecondary = snap.ScoreSecondary
	}
	if req.Elapsed != nil {
		in.Elapsed = *req.Elapsed
	}
	if req.ScorePrimary != nil {
		in.ScorePrimary = *req.ScorePrimary
	}
	if req.ScoreSecondary != nil {
		in.ScoreSecondary = *req.ScoreSecondary
	}

	out, err := s.engine.Score(in)
	if err != nil {
		var ve *scoring.ValidationError
		if errors.As(err, &ve) {
			metrics.RecordValidationFailure(ve.Field)
		}
		metrics.RecordScoringError()
		return model.Outcome{}, err
	}

	metrics.RecordScoringRequest(string(out.Primary.Mode))
	for _, r := range []model.ScoringResult{out.Primary, out.Secondary} {
		metrics.RecordConfidence(r.Confidence.String())
		if r.Confidence == model.ConfidenceLow {
			s.logger.Debug(ctx, "insufficient evidence",
				logger.String("entity", r.EntityID),
				logger.String("interval", r.Interval),
				logger.Int("samples", r.SampleCounts.Total),
			)
		}
	}
	metrics.RecordProbability("primary", out.Primary.Probability)
	metrics.RecordProbability("secondary", out.Secondary.Probability)
	metrics.RecordProbability("union", out.UnionProbability)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// resolveLive picks the inline or stored snapshot and orients it so its
// primary side is the request's primary entity.
func (s *Service) resolveLive(ctx context.Context, req ScoreRequest, primary, secondary string) (*model.LiveMatchSnapshot, error) {
	var snap model.LiveMatchSnapshot
	switch {
	case req.Live != nil:
		snap = *req.Live
	case req.MatchID != "":
		stored, ok := s.live.Get(ctx, req.MatchID)
		if !ok {
			return nil, nil
		}
		snap = stored
	default:
		return nil, nil
	}

	sp := strings.TrimSpace(snap.PrimaryEntity)
	ss := strings.TrimSpace(snap.SecondaryEntity)
	switch {
	case sp == "" && ss == "":
	case sp == primary && ss == secondary:
	case sp == secondary && ss == primary:
		snap.PrimaryEntity, snap.SecondaryEntity = snap.SecondaryEntity, snap.PrimaryEntity
		snap.Primary, snap.Secondary = snap.Secondary, snap.Primary
		snap.ScorePrimary, snap.ScoreSecondary = snap.ScoreSecondary, snap.ScorePrimary
	default:
		return nil, fmt.Errorf("%w: snapshot has %q vs %q", ErrLiveMismatch, sp, ss)
	}
	return &snap, nil
}
