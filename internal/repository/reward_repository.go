package repository

import (
	"context"
	"time"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
)

type RewardRepository interface {
	CreateSession(ctx context.Context, s *model.AdSession) error
	FindSession(ctx context.Context, id string) (*model.AdSession, error)
	// Transition moves a session from one status to another only if it is still in from.
	Transition(ctx context.Context, id, from, to string, at time.Time) (bool, error)
	CreateClaimTx(tx *gorm.DB, c *model.RewardClaim) error
	CreateEarningTx(tx *gorm.DB, e *model.CreatorEarning) error
	SumCreatorEarnings(ctx context.Context, creatorID uint64) (int64, error)
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) CreateSession(ctx context.Context, s *model.AdSession) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *rewardRepository) FindSession(ctx context.Context, id string) (*model.AdSession, error) {
	var s model.AdSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *rewardRepository) Transition(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if col := stampColumn(to); col != "" {
		updates[col] = at
	}
	res := r.db.WithContext(ctx).
		Model(&model.AdSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func stampColumn(status string) string {
	switch status {
	case "ad_loading":
		return "loaded_at"
	case "ad_showing":
		return "shown_at"
	case "completed":
		return "completed_at"
	case "abandoned":
		return "abandoned_at"
	}
	return ""
}

// CreateClaimTx inserts the idempotency record. A second claim for the same
// session or the same (video, claimant, bucket) returns ErrDuplicate.
func (r *rewardRepository) CreateClaimTx(tx *gorm.DB, c *model.RewardClaim) error {
	if err := tx.Create(c).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *rewardRepository) CreateEarningTx(tx *gorm.DB, e *model.CreatorEarning) error {
	return tx.Create(e).Error
}

func (r *rewardRepository) SumCreatorEarnings(ctx context.Context, creatorID uint64) (int64, error) {
	var sum struct{ Total int64 }
	if err := r.db.WithContext(ctx).
		Model(&model.CreatorEarning{}).
		Select("COALESCE(SUM(amount_paise), 0) AS total").
		Where("creator_id = ?", creatorID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum.Total, nil
}
