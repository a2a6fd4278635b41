package repository

import (
	"context"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationQuery narrows one user's inbox. Zero fields do not filter.
type NotificationQuery struct {
	UserUID         string
	UnreadOnly      bool
	Type            model.NotificationType
	PayoutRequestID uint64
	Limit           int
}

type NotificationRepository interface {
	// Create reports false when the payout request already has a notification of that type.
	Create(ctx context.Context, n *model.Notification) (bool, error)
	List(ctx context.Context, q NotificationQuery) ([]model.Notification, error)
	// MarkRead marks the given ids read, or every unread entry when ids is empty.
	MarkRead(ctx context.Context, userUID string, ids []uint64) (int64, error)
	CountUnread(ctx context.Context, userUID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepository) List(ctx context.Context, q NotificationQuery) ([]model.Notification, error) {
	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	tx := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_uid = ?", q.UserUID)
	if q.UnreadOnly {
		tx = tx.Where("read_at IS NULL")
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.PayoutRequestID != 0 {
		tx = tx.Where("payout_request_id = ?", q.PayoutRequestID)
	}
	var list []model.Notification
	if err := tx.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userUID string, ids []uint64) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_uid = ? AND read_at IS NULL", userUID)
	if len(ids) > 0 {
		tx = tx.Where("id IN ?", ids)
	}
	res := tx.Update("read_at", r.db.NowFunc())
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userUID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_uid = ? AND read_at IS NULL", userUID).
		Count(&n).Error
	return n, err
}
