package repository

import (
	"context"
	"time"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdmitOutcome int

const (
	OutcomeAdmitted AdmitOutcome = iota
	OutcomeDeduplicated
	OutcomeRateLimited
)

func (o AdmitOutcome) String() string {
	switch o {
	case OutcomeAdmitted:
		return "admitted"
	case OutcomeDeduplicated:
		return "deduplicated"
	case OutcomeRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// AdmitParams describes one view report and the windows it is judged against.
type AdmitParams struct {
	VideoID     uint64
	ViewerID    *uint64
	Address     string
	Now         time.Time
	RateLimit   int
	RateWindow  time.Duration
	DedupWindow time.Duration
}

type ViewRepository interface {
	Admit(ctx context.Context, p AdmitParams) (AdmitOutcome, error)
	CountByVideo(ctx context.Context, videoID uint64) (int64, error)
	MarkAwardedTx(tx *gorm.DB, videoID uint64, viewerID *uint64, address string) error
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

// Admit runs the throttle check, the dedup check and the insert in one
// transaction. The upsert on view_throttles takes the per-address row lock first,
// so two reports from the same address cannot both read a stale count.
func (r *viewRepository) Admit(ctx context.Context, p AdmitParams) (AdmitOutcome, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	now := p.Now.UTC()
	outcome := OutcomeAdmitted
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v model.Video
		if err := tx.Select("id").First(&v, p.VideoID).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"touched_at"}),
		}).Create(&model.ViewThrottle{Address: p.Address, TouchedAt: now}).Error; err != nil {
			return err
		}

		var recent int64
		if err := tx.Model(&model.VideoView{}).
			Where("viewer_ip = ? AND watched_at >= ?", p.Address, now.Add(-p.RateWindow)).
			Count(&recent).Error; err != nil {
			return err
		}
		if recent >= int64(p.RateLimit) {
			outcome = OutcomeRateLimited
			return nil
		}

		var seen int64
		if err := tx.Model(&model.VideoView{}).
			Where("video_id = ? AND viewer_ip = ? AND watched_at >= ?", p.VideoID, p.Address, now.Add(-p.DedupWindow)).
			Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			outcome = OutcomeDeduplicated
			return nil
		}

		view := &model.VideoView{
			VideoID:   p.VideoID,
			ViewerID:  p.ViewerID,
			ViewerIP:  p.Address,
			WatchedAt: now,
		}
		if err := tx.Create(view).Error; err != nil {
			return err
		}
		return tx.Model(&model.Video{}).
			Where("id = ?", p.VideoID).
			UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (r *viewRepository) CountByVideo(ctx context.Context, videoID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.VideoView{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// MarkAwardedTx flags the claimant's most recent unawarded view of the video.
// A claim without a matching view is not an error.
func (r *viewRepository) MarkAwardedTx(tx *gorm.DB, videoID uint64, viewerID *uint64, address string) error {
	q := tx.Model(&model.VideoView{}).Where("video_id = ? AND coins_awarded = ?", videoID, false)
	if viewerID != nil {
		q = q.Where("viewer_id = ?", *viewerID)
	} else {
		q = q.Where("viewer_id IS NULL AND viewer_ip = ?", address)
	}
	var view model.VideoView
	err := q.Order("watched_at DESC").Limit(1).Find(&view).Error
	if err != nil {
		return err
	}
	if view.ID == 0 {
		return nil
	}
	return tx.Model(&model.VideoView{}).Where("id = ?", view.ID).Update("coins_awarded", true).Error
}
