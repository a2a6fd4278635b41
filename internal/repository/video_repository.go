package repository

import (
	"context"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoRepository interface {
	Create(ctx context.Context, v *model.Video) error
	FindByID(ctx context.Context, id uint64) (*model.Video, error)
	List(ctx context.Context, category model.VideoCategory, limit, offset int) ([]model.Video, int64, error)
	Like(ctx context.Context, videoID, profileID uint64) (bool, error)
	Unlike(ctx context.Context, videoID, profileID uint64) (bool, error)
	RecountViews(ctx context.Context, videoID uint64) (int64, error)
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, v *model.Video) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *videoRepository) FindByID(ctx context.Context, id uint64) (*model.Video, error) {
	var v model.Video
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepository) List(ctx context.Context, category model.VideoCategory, limit, offset int) ([]model.Video, int64, error) {
	var (
		list  []model.Video
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Video{}).Where("is_published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Like records the like and bumps likes_count together. It reports false when
// the profile had already liked the video.
func (r *videoRepository) Like(ctx context.Context, videoID, profileID uint64) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v model.Video
		if err := tx.Select("id").First(&v, videoID).Error; err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.VideoLike{VideoID: videoID, ProfileID: profileID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&model.Video{}).
			Where("id = ?", videoID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	return created, err
}

func (r *videoRepository) Unlike(ctx context.Context, videoID, profileID uint64) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("video_id = ? AND profile_id = ?", videoID, profileID).Delete(&model.VideoLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&model.Video{}).
			Where("id = ? AND likes_count > 0", videoID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	return removed, err
}

// RecountViews rewrites views_count from the view ledger.
func (r *videoRepository) RecountViews(ctx context.Context, videoID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v model.Video
		if err := tx.Select("id").First(&v, videoID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.VideoView{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
			return err
		}
		return tx.Model(&model.Video{}).Where("id = ?", videoID).UpdateColumn("views_count", n).Error
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
