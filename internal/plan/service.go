package plan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"backend-raceplanner/internal/activity"
	"backend-raceplanner/internal/athlete"
	"backend-raceplanner/internal/course"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/apperr"
)

// Publisher announces finished plans. stream.Hub implements it.
type Publisher interface {
	Broadcast(ctx context.Context, userID string, payload []byte) error
}

type Settings struct {
	LookbackDays int
	HistoryLimit int
}

type Service struct {
	history  activity.HistoryProvider
	segments segment.Builder
	feed     Publisher
	logger   *slog.Logger
	settings Settings
	now      func() time.Time
}

func NewService(history activity.HistoryProvider, settings Settings, logger *slog.Logger) *Service {
	if settings.LookbackDays <= 0 {
		settings.LookbackDays = 120
	}
	if settings.HistoryLimit <= 0 {
		settings.HistoryLimit = 3000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		history:  history,
		segments: segment.NewBuilder(),
		logger:   logger,
		settings: settings,
		now:      time.Now,
	}
}

// WithFeed makes the service announce every plan it builds.
func (s *Service) WithFeed(feed Publisher) *Service {
	s.feed = feed
	return s
}

// FeedEvent is the compact announcement sent on the plan feed.
type FeedEvent struct {
	ID                   string        `json:"id"`
	UserID               string        `json:"userId"`
	Source               course.Source `json:"source"`
	DistanceKm           float64       `json:"distanceKm"`
	EstimatedDurationMin float64       `json:"estimatedDurationMin"`
	EstimatedFinishLabel string        `json:"estimatedFinishLabel"`
	ConfidenceScore      int           `json:"confidenceScore"`
	GeneratedAt          time.Time     `json:"generatedAt"`
}

// BuildPlan fetches the athlete's history while the course profile is built,
// then assembles the plan. It returns a complete plan or an error, never a
// partial plan.
func (s *Service) BuildPlan(ctx context.Context, userID string, opts Options) (*Plan, error) {
	started := s.now()
	requestID := uuid.NewString()

	var (
		profile    course.Profile
		baseline   athlete.Baseline
		profileErr error
		historyErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		baseline, historyErr = s.baseline(gctx, userID, opts, started)
		return historyErr
	})
	g.Go(func() error {
		profile, profileErr = buildProfile(opts)
		return profileErr
	})
	_ = g.Wait()
	if profileErr != nil {
		return nil, profileErr
	}
	if historyErr != nil {
		s.logger.Warn("activity history unavailable", "request_id", requestID, "user_id", userID, "error", historyErr)
		return nil, historyErr
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.Internal(err, "plan request canceled")
	}

	p := Assemble(profile, baseline, opts, s.segments, s.now())
	s.logger.Debug("plan built",
		"request_id", requestID,
		"user_id", userID,
		"mode", opts.Mode,
		"segments", len(p.Segments),
		"samples", baseline.ActivitiesSampleCount,
		"elapsed", s.now().Sub(started),
	)
	s.announce(ctx, requestID, userID, &p)
	return &p, nil
}

func (s *Service) baseline(ctx context.Context, userID string, opts Options, now time.Time) (athlete.Baseline, error) {
	if s.history == nil {
		return athlete.Defaults(opts.WeightKg), nil
	}
	activities, err := s.history.ActivityHistory(ctx, userID, activity.HistoryQuery{
		StartDate:  now.AddDate(0, 0, -s.settings.LookbackDays),
		SportTypes: activity.RunningSports,
		Limit:      s.settings.HistoryLimit,
	})
	if errors.Is(err, activity.ErrNoHistory) {
		return athlete.Defaults(opts.WeightKg), nil
	}
	if err != nil {
		return athlete.Baseline{}, apperr.Upstream(err, "activity history unavailable")
	}
	return athlete.Estimate(activities, opts.WeightKg), nil
}

func buildProfile(opts Options) (course.Profile, error) {
	if opts.Mode == ModeGPX {
		return course.FromTrack(opts.GPX)
	}
	return course.FromDistance(opts.DistanceKm, opts.ElevationGainM)
}

// announce is best effort: a feed failure never fails the plan.
func (s *Service) announce(ctx context.Context, requestID, userID string, p *Plan) {
	if s.feed == nil {
		return
	}
	payload, err := json.Marshal(FeedEvent{
		ID:                   requestID,
		UserID:               userID,
		Source:               p.Source,
		DistanceKm:           p.Summary.DistanceKm,
		EstimatedDurationMin: p.Summary.EstimatedDurationMin,
		EstimatedFinishLabel: p.Summary.EstimatedFinishLabel,
		ConfidenceScore:      p.Summary.ConfidenceScore,
		GeneratedAt:          p.GeneratedAt,
	})
	if err != nil {
		s.logger.Error("plan feed encode failed", "request_id", requestID, "error", err)
		return
	}
	if err := s.feed.Broadcast(ctx, userID, payload); err != nil {
		s.logger.Warn("plan feed publish failed", "request_id", requestID, "user_id", userID, "error", err)
	}
}
