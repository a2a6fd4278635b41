package model

import "time"

// UnknownAddress is recorded when the caller's network address cannot be resolved.
// Every such caller shares one throttle bucket.
const UnknownAddress = "unknown"

type VideoView struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	VideoID      uint64    `gorm:"column:video_id;not null;index:idx_video_views_video_ip"`
	ViewerID     *uint64   `gorm:"column:viewer_id;index"`
	ViewerIP     string    `gorm:"column:viewer_ip;size:64;not null;index:idx_video_views_ip_time,priority:1;index:idx_video_views_video_ip"`
	CoinsAwarded bool      `gorm:"column:coins_awarded;not null;default:false"`
	WatchedAt    time.Time `gorm:"column:watched_at;not null;index:idx_video_views_ip_time,priority:2"`
}

func (VideoView) TableName() string {
	return "video_views"
}

// ViewThrottle is a per-address lock row. Touching it inside the admission
// transaction serializes concurrent view reports from the same address.
type ViewThrottle struct {
	Address   string    `gorm:"column:address;primaryKey;size:64"`
	TouchedAt time.Time `gorm:"column:touched_at;not null"`
}

func (ViewThrottle) TableName() string {
	return "view_throttles"
}
