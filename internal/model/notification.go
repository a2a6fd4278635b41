package model

import "time"

type NotificationType string

const (
	NotificationPayoutRequested NotificationType = "payout_requested"
	NotificationPayoutCompleted NotificationType = "payout_completed"
	NotificationPayoutFailed    NotificationType = "payout_failed"
	NotificationCreatorEarning  NotificationType = "creator_earning"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationPayoutRequested, NotificationPayoutCompleted, NotificationPayoutFailed, NotificationCreatorEarning:
		return true
	}
	return false
}

// Notification is one inbox entry. A payout request gets at most one entry per type.
type Notification struct {
	ID              uint64           `gorm:"primaryKey;autoIncrement"`
	UserUID         string           `gorm:"column:user_uid;size:128;index;not null"`
	Type            NotificationType `gorm:"column:type;size:64;not null;uniqueIndex:idx_notifications_payout_event,priority:2"`
	Title           string           `gorm:"column:title;size:255"`
	Body            string           `gorm:"column:body;type:text"`
	VideoID         *uint64          `gorm:"column:video_id;index"`
	PayoutRequestID *uint64          `gorm:"column:payout_request_id;uniqueIndex:idx_notifications_payout_event,priority:1"`
	ReadAt          *time.Time       `gorm:"column:read_at"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
