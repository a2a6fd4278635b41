package repository

import (
	"context"
	"time"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
)

type PayoutRepository interface {
	CreatePending(ctx context.Context, p *model.PayoutRequest) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*model.PayoutRequest, error)
	HasPending(ctx context.Context, profileID uint64) (bool, error)
	ResolveTx(tx *gorm.DB, id uint64, status model.PayoutStatus, reason *string, at time.Time) (*model.PayoutRequest, error)
	ListByStatus(ctx context.Context, status model.PayoutStatus, limit int) ([]model.PayoutRequest, error)
	ListByProfile(ctx context.Context, profileID uint64, limit int) ([]model.PayoutRequest, error)
}

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

// CreatePending inserts p as pending and occupies the profile's pending slot.
// A second pending request for the same profile fails with ErrDuplicate.
func (r *payoutRepository) CreatePending(ctx context.Context, p *model.PayoutRequest) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	slot := p.ProfileID
	p.Status = model.PayoutStatusPending
	p.PendingSlot = &slot
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes a request that never reached the ledger.
func (r *payoutRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.PayoutStatusPending).
		Delete(&model.PayoutRequest{}).Error
}

func (r *payoutRepository) FindByID(ctx context.Context, id uint64) (*model.PayoutRequest, error) {
	var p model.PayoutRequest
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payoutRepository) HasPending(ctx context.Context, profileID uint64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.PayoutRequest{}).
		Where("profile_id = ? AND status = ?", profileID, model.PayoutStatusPending).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ResolveTx moves a pending request to a terminal status and frees the pending slot.
func (r *payoutRepository) ResolveTx(tx *gorm.DB, id uint64, status model.PayoutStatus, reason *string, at time.Time) (*model.PayoutRequest, error) {
	res := tx.Model(&model.PayoutRequest{}).
		Where("id = ? AND status = ?", id, model.PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"pending_slot":   nil,
			"failure_reason": reason,
			"processed_at":   at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var p model.PayoutRequest
		if err := tx.First(&p, id).Error; err != nil {
			return nil, err
		}
		return nil, ErrNotPending
	}
	var p model.PayoutRequest
	if err := tx.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payoutRepository) ListByStatus(ctx context.Context, status model.PayoutStatus, limit int) ([]model.PayoutRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.PayoutRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *payoutRepository) ListByProfile(ctx context.Context, profileID uint64, limit int) ([]model.PayoutRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.PayoutRequest
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
