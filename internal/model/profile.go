package model

import "time"

// Profile is one registered identity. CoinsBalance is a denormalized view of the
// profile's coin_transactions and must never drop below zero.
type Profile struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID       string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:uk_profiles_user_uid"`
	DisplayName   string    `gorm:"column:display_name;size:120"`
	IsCreator     bool      `gorm:"column:is_creator;not null;default:false"`
	CoinsBalance  int64     `gorm:"column:coins_balance;not null;default:0;check:chk_profiles_coins_balance,coins_balance >= 0"`
	TotalEarnings int64     `gorm:"column:total_earnings;not null;default:0"`
	PayoutAddress *string   `gorm:"column:payout_address;size:64"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
