package service

import (
	"context"

	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
)

// Identity is what the auth provider tells us about the caller.
type Identity struct {
	UID           string
	Name          string
	EmailVerified bool
}

type ProfileService interface {
	EnsureProfile(ctx context.Context, id Identity) (*model.Profile, error)
	Me(ctx context.Context, uid string) (*model.Profile, error)
	PromoteToCreator(ctx context.Context, id Identity) (*model.Profile, error)
	IsAdmin(ctx context.Context, uid string) (bool, error)
	GrantRole(ctx context.Context, profileID uint64, role model.Role) error
	ListVideos(ctx context.Context, category string, limit, offset int) ([]model.Video, int64, error)
	GetVideo(ctx context.Context, id uint64) (*model.Video, error)
	Like(ctx context.Context, uid string, videoID uint64) (bool, error)
	Unlike(ctx context.Context, uid string, videoID uint64) (bool, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	videos   repository.VideoRepository
	settings
}

func NewProfileService(profiles repository.ProfileRepository, videos repository.VideoRepository, opts ...Option) ProfileService {
	return &profileService{profiles: profiles, videos: videos, settings: newSettings(opts)}
}

func (s *profileService) EnsureProfile(ctx context.Context, id Identity) (*model.Profile, error) {
	if id.UID == "" {
		return nil, ErrUnauthenticated
	}
	p, err := s.profiles.Ensure(ctx, id.UID, id.Name)
	if err != nil {
		return nil, dependency("failed to load profile", err)
	}
	return p, nil
}

func (s *profileService) Me(ctx context.Context, uid string) (*model.Profile, error) {
	return s.lookup(ctx, uid)
}

func (s *profileService) lookup(ctx context.Context, uid string) (*model.Profile, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	p, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, dependency("profile lookup failed", err)
	}
	return p, nil
}

// PromoteToCreator is idempotent: an existing creator gets success unchanged.
func (s *profileService) PromoteToCreator(ctx context.Context, id Identity) (*model.Profile, error) {
	if id.UID == "" {
		return nil, ErrUnauthenticated
	}
	if !id.EmailVerified {
		return nil, withMessage(ErrEmailUnverified, "Please verify your email before becoming a creator")
	}
	p, err := s.lookup(ctx, id.UID)
	if err != nil {
		return nil, err
	}
	if p.IsCreator {
		return p, nil
	}
	if err := s.profiles.SetCreator(ctx, p.ID); err != nil {
		return nil, dependency("Failed to update creator status", err)
	}
	p.IsCreator = true
	s.logger.Info("profile promoted to creator", "profile_id", p.ID)
	return p, nil
}

func (s *profileService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	p, err := s.lookup(ctx, uid)
	if err != nil {
		return false, err
	}
	ok, err := s.profiles.HasRole(ctx, p.ID, model.RoleAdmin)
	if err != nil {
		return false, dependency("role lookup failed", err)
	}
	return ok, nil
}

func (s *profileService) GrantRole(ctx context.Context, profileID uint64, role model.Role) error {
	if err := s.profiles.GrantRole(ctx, profileID, role); err != nil {
		return dependency("failed to grant role", err)
	}
	return nil
}

func (s *profileService) ListVideos(ctx context.Context, category string, limit, offset int) ([]model.Video, int64, error) {
	cat := model.VideoCategory(category)
	if cat != "" && !cat.Valid() {
		return nil, 0, withMessage(ErrInvalidInput, "unknown category")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := s.videos.List(ctx, cat, limit, offset)
	if err != nil {
		return nil, 0, dependency("failed to list videos", err)
	}
	return list, total, nil
}

func (s *profileService) GetVideo(ctx context.Context, id uint64) (*model.Video, error) {
	v, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, dependency("video lookup failed", err)
	}
	return v, nil
}

func (s *profileService) Like(ctx context.Context, uid string, videoID uint64) (bool, error) {
	p, err := s.lookup(ctx, uid)
	if err != nil {
		return false, err
	}
	created, err := s.videos.Like(ctx, videoID, p.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, ErrVideoNotFound
		}
		return false, dependency("failed to like video", err)
	}
	return created, nil
}

func (s *profileService) Unlike(ctx context.Context, uid string, videoID uint64) (bool, error) {
	p, err := s.lookup(ctx, uid)
	if err != nil {
		return false, err
	}
	removed, err := s.videos.Unlike(ctx, videoID, p.ID)
	if err != nil {
		return false, dependency("failed to unlike video", err)
	}
	return removed, nil
}
