package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reelspay/reelspay-backend/internal/adsession"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"github.com/reelspay/reelspay-backend/internal/revenue"
	"github.com/reelspay/reelspay-backend/internal/rewardtoken"
	"gorm.io/gorm"
)

type RewardConfig struct {
	Table    revenue.Table
	MinWatch time.Duration
	Bucket   time.Duration
}

type AdvanceResult struct {
	Session    *model.AdSession
	ProofToken string
}

type ClaimResult struct {
	ViewerCoins    int64 `json:"coins_awarded"`
	CreatorPaise   int64 `json:"creator_paise"`
	AlreadyClaimed bool  `json:"already_claimed"`
}

type RewardService interface {
	StartSession(ctx context.Context, videoID uint64, viewerUID, address string) (*model.AdSession, error)
	Advance(ctx context.Context, sessionID string, ev adsession.Event, viewerUID, address string) (*AdvanceResult, error)
	Claim(ctx context.Context, proof, viewerUID, address string) (*ClaimResult, error)
}

type rewardService struct {
	db       *gorm.DB
	rewards  repository.RewardRepository
	videos   repository.VideoRepository
	profiles repository.ProfileRepository
	ledger   repository.LedgerRepository
	views    repository.ViewRepository
	notify   NotificationService
	issuer   *rewardtoken.Issuer
	cfg      RewardConfig
	settings
}

var errAlreadyClaimed = errors.New("reward already claimed")

func NewRewardService(
	db *gorm.DB,
	rewards repository.RewardRepository,
	videos repository.VideoRepository,
	profiles repository.ProfileRepository,
	ledger repository.LedgerRepository,
	views repository.ViewRepository,
	notify NotificationService,
	issuer *rewardtoken.Issuer,
	cfg RewardConfig,
	opts ...Option,
) RewardService {
	if cfg.Bucket <= 0 {
		cfg.Bucket = time.Hour
	}
	return &rewardService{
		db:       db,
		rewards:  rewards,
		videos:   videos,
		profiles: profiles,
		ledger:   ledger,
		views:    views,
		notify:   notify,
		issuer:   issuer,
		cfg:      cfg,
		settings: newSettings(opts),
	}
}

// viewerID resolves an optional identity. Unknown identities are anonymous.
func (s *rewardService) viewerID(ctx context.Context, uid string) (*uint64, error) {
	if uid == "" {
		return nil, nil
	}
	p, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, dependency("profile lookup failed", err)
	}
	return &p.ID, nil
}

func claimantKey(viewerID *uint64, address string) string {
	if viewerID != nil {
		return fmt.Sprintf("profile:%d", *viewerID)
	}
	return "addr:" + address
}

func (s *rewardService) StartSession(ctx context.Context, videoID uint64, viewerUID, address string) (*model.AdSession, error) {
	if videoID == 0 {
		return nil, ErrVideoIDRequired
	}
	if address == "" {
		address = model.UnknownAddress
	}
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, dependency("video lookup failed", err)
	}
	viewer, err := s.viewerID(ctx, viewerUID)
	if err != nil {
		return nil, err
	}
	sess := &model.AdSession{
		ID:       uuid.NewString(),
		VideoID:  videoID,
		ViewerID: viewer,
		ViewerIP: address,
		Status:   string(adsession.StateIdle),
	}
	if err := s.rewards.CreateSession(ctx, sess); err != nil {
		return nil, dependency("failed to start ad session", err)
	}
	return sess, nil
}

// Advance applies one client-reported ad event. The ad_showing -> completed
// transition returns a proof token that Claim redeems exactly once.
func (s *rewardService) Advance(ctx context.Context, sessionID string, ev adsession.Event, viewerUID, address string) (*AdvanceResult, error) {
	sess, err := s.ownedSession(ctx, sessionID, viewerUID, address)
	if err != nil {
		return nil, err
	}
	from := adsession.State(sess.Status)
	to, err := adsession.Next(from, ev)
	if err != nil {
		return nil, withMessage(ErrInvalidEvent, err.Error())
	}
	now := s.clock()
	if to == adsession.StateCompleted {
		if sess.ShownAt == nil || now.Sub(*sess.ShownAt) < s.cfg.MinWatch {
			return nil, ErrAdNotWatched
		}
	}
	ok, err := s.rewards.Transition(ctx, sess.ID, string(from), string(to), now)
	if err != nil {
		return nil, dependency("failed to update ad session", err)
	}
	if !ok {
		// a concurrent event moved the session first
		return nil, ErrInvalidEvent
	}
	sess.Status = string(to)
	result := &AdvanceResult{Session: sess}
	if adsession.Rewardable(from, to) {
		sess.CompletedAt = &now
		token, err := s.issuer.Issue(sess.ID, sess.VideoID, claimantKey(sess.ViewerID, sess.ViewerIP))
		if err != nil {
			return nil, dependency("failed to issue reward proof", err)
		}
		result.ProofToken = token
	}
	return result, nil
}

func (s *rewardService) ownedSession(ctx context.Context, sessionID, viewerUID, address string) (*model.AdSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.rewards.FindSession(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, dependency("ad session lookup failed", err)
	}
	viewer, err := s.viewerID(ctx, viewerUID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		address = model.UnknownAddress
	}
	if claimantKey(sess.ViewerID, sess.ViewerIP) != claimantKey(viewer, address) {
		return nil, ErrForbidden
	}
	return sess, nil
}

// Claim redeems a completion proof. Replays of the same proof, and a second
// completed session for the same video and claimant inside one reward bucket,
// return AlreadyClaimed with no credit.
func (s *rewardService) Claim(ctx context.Context, proof, viewerUID, address string) (*ClaimResult, error) {
	claims, err := s.issuer.Verify(proof)
	if err != nil {
		s.metrics.ObserveReward("invalid")
		return nil, ErrInvalidProof
	}
	sess, err := s.ownedSession(ctx, claims.SessionID(), viewerUID, address)
	if err != nil {
		return nil, err
	}
	if sess.Status != string(adsession.StateCompleted) || sess.VideoID != claims.VideoID ||
		claimantKey(sess.ViewerID, sess.ViewerIP) != claims.ClaimantKey {
		return nil, ErrInvalidProof
	}
	video, err := s.videos.FindByID(ctx, sess.VideoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, dependency("video lookup failed", err)
	}

	share := s.cfg.Table.Split()
	completedAt := s.clock()
	if sess.CompletedAt != nil {
		completedAt = sess.CompletedAt.UTC()
	}
	claim := &model.RewardClaim{
		SessionID:     sess.ID,
		VideoID:       sess.VideoID,
		ClaimantKey:   claims.ClaimantKey,
		Bucket:        completedAt.UnixNano() / int64(s.cfg.Bucket),
		ViewerID:      sess.ViewerID,
		CreatorID:     video.CreatorID,
		ViewerCoins:   share.ViewerCoins,
		CreatorPaise:  share.CreatorPaise,
		PlatformPaise: share.PlatformPaise,
	}
	if sess.ViewerID == nil {
		// no profile to credit; the viewer leg stays with the platform
		claim.PlatformPaise += share.ViewerCoins * s.cfg.Table.ViewerCoinValuePaise
		claim.ViewerCoins = 0
	}
	videoID := video.ID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.rewards.CreateClaimTx(tx, claim); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errAlreadyClaimed
			}
			return err
		}
		if claim.ViewerCoins > 0 {
			if _, err := s.ledger.ApplyTx(tx, repository.Entry{
				ProfileID:   *sess.ViewerID,
				Amount:      claim.ViewerCoins,
				Kind:        model.KindEarned,
				Description: "Ad reward",
				VideoID:     &videoID,
			}); err != nil {
				return err
			}
		}
		if claim.CreatorPaise > 0 {
			if err := s.rewards.CreateEarningTx(tx, &model.CreatorEarning{
				CreatorID:     video.CreatorID,
				VideoID:       video.ID,
				RewardClaimID: claim.ID,
				AmountPaise:   claim.CreatorPaise,
			}); err != nil {
				return err
			}
			if _, err := s.ledger.ApplyTx(tx, repository.Entry{
				ProfileID:   video.CreatorID,
				Amount:      claim.CreatorPaise,
				Kind:        model.KindCreatorShare,
				Description: "Creator share of ad impression",
				VideoID:     &videoID,
			}); err != nil {
				return err
			}
		}
		return s.views.MarkAwardedTx(tx, video.ID, sess.ViewerID, sess.ViewerIP)
	})
	if err != nil {
		if errors.Is(err, errAlreadyClaimed) {
			s.metrics.ObserveReward("duplicate")
			return &ClaimResult{AlreadyClaimed: true}, nil
		}
		s.metrics.ObserveReward("error")
		return nil, dependency("failed to credit reward", err)
	}

	s.metrics.ObserveReward("claimed")
	if claim.ViewerCoins > 0 {
		s.metrics.ObserveLedgerEntry(string(model.KindEarned))
	}
	if claim.CreatorPaise > 0 {
		s.metrics.ObserveLedgerEntry(string(model.KindCreatorShare))
		s.notifyCreator(ctx, video, claim.CreatorPaise)
	}
	s.logger.Info("reward claimed",
		"session_id", sess.ID,
		"video_id", video.ID,
		"viewer_coins", claim.ViewerCoins,
		"creator_paise", claim.CreatorPaise,
		"platform_paise", claim.PlatformPaise,
	)
	return &ClaimResult{ViewerCoins: claim.ViewerCoins, CreatorPaise: claim.CreatorPaise}, nil
}

func (s *rewardService) notifyCreator(ctx context.Context, video *model.Video, paise int64) {
	if s.notify == nil {
		return
	}
	creator, err := s.profiles.FindByID(ctx, video.CreatorID)
	if err != nil {
		s.logger.Warn("creator lookup for notification failed", "creator_id", video.CreatorID, "err", err)
		return
	}
	s.notify.Notify(ctx, Note{
		UserUID: creator.UserUID,
		Type:    model.NotificationCreatorEarning,
		Title:   "You earned from an ad view",
		Body:    fmt.Sprintf("%s earned %s from a completed ad.", video.Title, formatRupees(paise)),
		VideoID: uint64Ptr(video.ID),
	})
}
