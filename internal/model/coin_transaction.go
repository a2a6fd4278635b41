package model

import "time"

type TransactionKind string

const (
	KindEarned       TransactionKind = "earned"
	KindCreatorShare TransactionKind = "creator_share"
	KindPayout       TransactionKind = "payout"
	KindRefund       TransactionKind = "refund"
	KindBonus        TransactionKind = "bonus"
)

// CountsAsEarnings reports whether a credit of this kind grows Profile.TotalEarnings.
func (k TransactionKind) CountsAsEarnings() bool {
	switch k {
	case KindEarned, KindCreatorShare, KindBonus:
		return true
	}
	return false
}

type CoinTransaction struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	ProfileID       uint64          `gorm:"column:profile_id;not null;index"`
	Amount          int64           `gorm:"column:amount;not null"`
	Kind            TransactionKind `gorm:"column:transaction_type;size:32;not null"`
	Description     *string         `gorm:"column:description;size:255"`
	VideoID         *uint64         `gorm:"column:video_id;index"`
	PayoutRequestID *uint64         `gorm:"column:payout_request_id;index"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
}

func (CoinTransaction) TableName() string {
	return "coin_transactions"
}

// CreatorEarning records the creator leg of a rewarded impression in paise.
type CreatorEarning struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	CreatorID     uint64    `gorm:"column:creator_id;not null;index"`
	VideoID       uint64    `gorm:"column:video_id;not null;index"`
	RewardClaimID uint64    `gorm:"column:reward_claim_id;not null;uniqueIndex"`
	AmountPaise   int64     `gorm:"column:amount_paise;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (CreatorEarning) TableName() string {
	return "creator_earnings"
}
