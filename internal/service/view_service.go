package service

import (
	"context"
	"time"

	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/ratelimit"
	"github.com/reelspay/reelspay-backend/internal/repository"
)

// ViewLimits are the throttle and dedup windows applied to view reports.
type ViewLimits struct {
	RateLimit   int
	RateWindow  time.Duration
	DedupWindow time.Duration
}

func DefaultViewLimits() ViewLimits {
	return ViewLimits{RateLimit: 5, RateWindow: 60 * time.Second, DedupWindow: time.Hour}
}

// WindowReserver is an optional fast-path throttle in front of the view ledger.
type WindowReserver interface {
	Reserve(ctx context.Context, address string, now time.Time) (*ratelimit.Reservation, error)
}

type WatchInput struct {
	VideoID   uint64
	ViewerUID string
	Address   string
}

type WatchResult struct {
	Admitted     bool `json:"admitted"`
	Deduplicated bool `json:"deduplicated"`
}

type ViewService interface {
	RecordWatch(ctx context.Context, in WatchInput) (*WatchResult, error)
	RecountViews(ctx context.Context, videoID uint64) (int64, error)
}

type viewService struct {
	views    repository.ViewRepository
	videos   repository.VideoRepository
	profiles repository.ProfileRepository
	window   WindowReserver
	limits   ViewLimits
	settings
}

// NewViewService builds the view ledger. window may be nil, in which case the
// ledger query alone enforces the throttle.
func NewViewService(views repository.ViewRepository, videos repository.VideoRepository, profiles repository.ProfileRepository, window WindowReserver, limits ViewLimits, opts ...Option) ViewService {
	return &viewService{
		views:    views,
		videos:   videos,
		profiles: profiles,
		window:   window,
		limits:   limits,
		settings: newSettings(opts),
	}
}

// RecordWatch counts a view. It never credits coins; rewards go through RewardService.
func (s *viewService) RecordWatch(ctx context.Context, in WatchInput) (*WatchResult, error) {
	if in.VideoID == 0 {
		return nil, ErrVideoIDRequired
	}
	addr := in.Address
	if addr == "" {
		addr = model.UnknownAddress
	}
	now := s.clock()

	var viewerID *uint64
	if in.ViewerUID != "" {
		p, err := s.profiles.FindByUID(ctx, in.ViewerUID)
		switch {
		case err == nil:
			viewerID = &p.ID
		case repository.IsNotFound(err):
			// signed in but never provisioned; count the view anonymously
		default:
			return nil, dependency("profile lookup failed", err)
		}
	}

	if s.window != nil {
		res, err := s.window.Reserve(ctx, addr, now)
		if err != nil {
			s.logger.Warn("view window unavailable, using ledger throttle only", "err", err)
		} else {
			defer res.RollbackUnlessCommitted(ctx)
			if res.Exceeded() {
				s.metrics.ObserveView(repository.OutcomeRateLimited.String())
				return nil, ErrRateLimited
			}
			outcome, err := s.admit(ctx, in.VideoID, viewerID, addr, now)
			if err != nil {
				return nil, err
			}
			if outcome == repository.OutcomeAdmitted {
				res.Commit()
			}
			return s.result(outcome)
		}
	}

	outcome, err := s.admit(ctx, in.VideoID, viewerID, addr, now)
	if err != nil {
		return nil, err
	}
	return s.result(outcome)
}

func (s *viewService) admit(ctx context.Context, videoID uint64, viewerID *uint64, addr string, now time.Time) (repository.AdmitOutcome, error) {
	outcome, err := s.views.Admit(ctx, repository.AdmitParams{
		VideoID:     videoID,
		ViewerID:    viewerID,
		Address:     addr,
		Now:         now,
		RateLimit:   s.limits.RateLimit,
		RateWindow:  s.limits.RateWindow,
		DedupWindow: s.limits.DedupWindow,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, ErrVideoNotFound
		}
		s.metrics.ObserveView("error")
		return 0, dependency("failed to record view", err)
	}
	s.metrics.ObserveView(outcome.String())
	return outcome, nil
}

func (s *viewService) result(outcome repository.AdmitOutcome) (*WatchResult, error) {
	switch outcome {
	case repository.OutcomeRateLimited:
		return nil, ErrRateLimited
	case repository.OutcomeDeduplicated:
		return &WatchResult{Deduplicated: true}, nil
	}
	return &WatchResult{Admitted: true}, nil
}

func (s *viewService) RecountViews(ctx context.Context, videoID uint64) (int64, error) {
	n, err := s.videos.RecountViews(ctx, videoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, ErrVideoNotFound
		}
		return 0, dependency("recount failed", err)
	}
	s.logger.Info("views recounted", "video_id", videoID, "views_count", n)
	return n, nil
}
