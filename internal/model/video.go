package model

import "time"

type VideoCategory string

const (
	CategoryDrama   VideoCategory = "drama"
	CategoryHorror  VideoCategory = "horror"
	CategoryComedy  VideoCategory = "comedy"
	CategoryRomance VideoCategory = "romance"
)

func (c VideoCategory) Valid() bool {
	switch c {
	case CategoryDrama, CategoryHorror, CategoryComedy, CategoryRomance:
		return true
	}
	return false
}

type VideoClass string

const (
	ClassShorts   VideoClass = "shorts"
	ClassLongform VideoClass = "longform"
)

type Video struct {
	ID              uint64        `gorm:"primaryKey;autoIncrement"`
	CreatorID       uint64        `gorm:"column:creator_id;not null;index"`
	Title           string        `gorm:"size:120;not null"`
	Description     *string       `gorm:"type:text"`
	Category        VideoCategory `gorm:"column:category;size:32;not null;index"`
	Class           VideoClass    `gorm:"column:class;size:16;not null;default:shorts"`
	MediaPublicID   string        `gorm:"column:media_public_id;size:255;not null"`
	MediaURL        string        `gorm:"column:media_url;size:512;not null"`
	ThumbnailURL    *string       `gorm:"column:thumbnail_url;size:512"`
	ThumbnailID     *string       `gorm:"column:thumbnail_id;size:255"`
	DurationSeconds int           `gorm:"column:duration_seconds;not null"`
	ViewsCount      int64         `gorm:"column:views_count;not null;default:0"`
	LikesCount      int64         `gorm:"column:likes_count;not null;default:0"`
	IsPublished     bool          `gorm:"column:is_published;not null;default:true"`
	CreatedAt       time.Time     `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime"`
}

func (Video) TableName() string {
	return "videos"
}

type VideoLike struct {
	VideoID   uint64    `gorm:"column:video_id;primaryKey"`
	ProfileID uint64    `gorm:"column:profile_id;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (VideoLike) TableName() string {
	return "video_likes"
}
