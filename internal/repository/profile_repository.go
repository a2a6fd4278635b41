package repository

import (
	"context"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Ensure(ctx context.Context, uid, displayName string) (*model.Profile, error)
	FindByUID(ctx context.Context, uid string) (*model.Profile, error)
	FindByID(ctx context.Context, id uint64) (*model.Profile, error)
	SetCreator(ctx context.Context, id uint64) error
	SetPayoutAddress(ctx context.Context, id uint64, address string) error
	HasRole(ctx context.Context, profileID uint64, role model.Role) (bool, error)
	GrantRole(ctx context.Context, profileID uint64, role model.Role) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Ensure(ctx context.Context, uid, displayName string) (*model.Profile, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	p := model.Profile{UserUID: uid, DisplayName: displayName}
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", uid).
		FirstOrCreate(&p).Error; err != nil {
		if IsUniqueViolation(err) {
			// lost a first-sign-in race; the winner's row is there now
			return r.FindByUID(ctx, uid)
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) FindByUID(ctx context.Context, uid string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("user_uid = ?", uid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) FindByID(ctx context.Context, id uint64) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) SetCreator(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", id).
		Update("is_creator", true).Error
}

func (r *profileRepository) SetPayoutAddress(ctx context.Context, id uint64, address string) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", id).
		Update("payout_address", address).Error
}

func (r *profileRepository) HasRole(ctx context.Context, profileID uint64, role model.Role) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserRole{}).
		Where("profile_id = ? AND role = ?", profileID, role).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *profileRepository) GrantRole(ctx context.Context, profileID uint64, role model.Role) error {
	ur := model.UserRole{ProfileID: profileID, Role: role}
	return r.db.WithContext(ctx).
		Where("profile_id = ? AND role = ?", profileID, role).
		FirstOrCreate(&ur).Error
}
