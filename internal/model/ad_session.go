package model

import "time"

type AdSession struct {
	ID          string     `gorm:"column:id;primaryKey;size:36"`
	VideoID     uint64     `gorm:"column:video_id;not null;index"`
	ViewerID    *uint64    `gorm:"column:viewer_id;index"`
	ViewerIP    string     `gorm:"column:viewer_ip;size:64;not null"`
	Status      string     `gorm:"column:status;size:16;not null"`
	LoadedAt    *time.Time `gorm:"column:loaded_at"`
	ShownAt     *time.Time `gorm:"column:shown_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	AbandonedAt *time.Time `gorm:"column:abandoned_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (AdSession) TableName() string {
	return "ad_sessions"
}

// RewardClaim is the idempotency record for one rewarded impression.
type RewardClaim struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID     string    `gorm:"column:session_id;size:36;not null;uniqueIndex:uk_reward_claims_session"`
	VideoID       uint64    `gorm:"column:video_id;not null;uniqueIndex:uk_reward_claims_bucket,priority:1"`
	ClaimantKey   string    `gorm:"column:claimant_key;size:96;not null;uniqueIndex:uk_reward_claims_bucket,priority:2"`
	Bucket        int64     `gorm:"column:bucket;not null;uniqueIndex:uk_reward_claims_bucket,priority:3"`
	ViewerID      *uint64   `gorm:"column:viewer_id;index"`
	CreatorID     uint64    `gorm:"column:creator_id;not null;index"`
	ViewerCoins   int64     `gorm:"column:viewer_coins;not null"`
	CreatorPaise  int64     `gorm:"column:creator_paise;not null"`
	PlatformPaise int64     `gorm:"column:platform_paise;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (RewardClaim) TableName() string {
	return "reward_claims"
}
