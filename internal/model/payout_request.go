package model

import "time"

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
	PayoutStatusFailed    PayoutStatus = "failed"
)

func (s PayoutStatus) Terminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusFailed
}

// PayoutRequest is one withdrawal attempt. PendingSlot carries the profile id while
// the request is pending and NULL afterwards; its unique index allows at most one
// outstanding request per profile.
type PayoutRequest struct {
	ID            uint64       `gorm:"primaryKey;autoIncrement"`
	ProfileID     uint64       `gorm:"column:profile_id;not null;index"`
	CoinsAmount   int64        `gorm:"column:coins_amount;not null"`
	PaiseAmount   int64        `gorm:"column:paise_amount;not null"`
	PayoutAddress string       `gorm:"column:payout_address;size:64;not null"`
	Status        PayoutStatus `gorm:"column:status;size:16;not null;index"`
	PendingSlot   *uint64      `gorm:"column:pending_slot;uniqueIndex:uk_payout_requests_pending_slot"`
	FailureReason *string      `gorm:"column:failure_reason;size:255"`
	CreatedAt     time.Time    `gorm:"autoCreateTime"`
	ProcessedAt   *time.Time   `gorm:"column:processed_at"`
}

func (PayoutRequest) TableName() string {
	return "payout_requests"
}
