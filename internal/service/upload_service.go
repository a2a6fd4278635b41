package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/reelspay/reelspay-backend/internal/media"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
)

// UploadClass bounds one video class by file size and measured duration.
type UploadClass struct {
	MaxBytes   int64
	MinSeconds int
	MaxSeconds int
}

var uploadClasses = map[model.VideoClass]UploadClass{
	model.ClassShorts:   {MaxBytes: 50 << 20, MinSeconds: 15, MaxSeconds: 60},
	model.ClassLongform: {MaxBytes: 100 << 20, MinSeconds: 60, MaxSeconds: 600},
}

const maxThumbnailBytes = 5 << 20

func ClassLimits(class model.VideoClass) (UploadClass, bool) {
	c, ok := uploadClasses[class]
	return c, ok
}

type UploadFile struct {
	Filename string
	Size     int64
	Body     media.File
}

type UploadInput struct {
	UID         string
	Title       string
	Description string
	Category    string
	Class       string
	Video       *UploadFile
	Thumbnail   *UploadFile
}

type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*model.Video, error)
}

type uploadService struct {
	profiles repository.ProfileRepository
	videos   repository.VideoRepository
	host     media.Host
	settings
}

func NewUploadService(profiles repository.ProfileRepository, videos repository.VideoRepository, host media.Host, opts ...Option) UploadService {
	return &uploadService{profiles: profiles, videos: videos, host: host, settings: newSettings(opts)}
}

// Upload admits a video into the catalog. The duration measured by the media
// host is authoritative; anything stored on the host before a rejection is
// deleted again.
func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*model.Video, error) {
	if in.UID == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := s.profiles.FindByUID(ctx, in.UID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, dependency("profile lookup failed", err)
	}
	if !profile.IsCreator {
		return nil, withMessage(ErrNotCreator, "You must be a creator to upload videos")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || in.Video == nil || in.Category == "" {
		return nil, withMessage(ErrInvalidInput, "Video, title, and category are required")
	}
	if len([]rune(title)) > 120 {
		return nil, withMessage(ErrInvalidInput, "title must be 120 characters or less")
	}
	category := model.VideoCategory(strings.ToLower(in.Category))
	if !category.Valid() {
		return nil, withMessage(ErrInvalidInput, "category must be one of drama, horror, comedy, romance")
	}
	class := model.VideoClass(strings.ToLower(in.Class))
	if class == "" {
		class = model.ClassShorts
	}
	limits, ok := uploadClasses[class]
	if !ok {
		return nil, withMessage(ErrInvalidInput, "videoType must be shorts or longform")
	}
	if in.Video.Size > limits.MaxBytes {
		return nil, withMessage(ErrFileTooLarge, fmt.Sprintf("Video file too large (max %dMB)", limits.MaxBytes>>20))
	}
	videoType, err := media.Sniff(in.Video.Body)
	if err != nil {
		return nil, withMessage(ErrUnsupportedMedia, "could not read video file")
	}
	if !media.Allowed(videoType, media.VideoTypes) {
		return nil, withMessage(ErrUnsupportedMedia, fmt.Sprintf("unsupported video type %s", videoType))
	}
	var thumbType string
	if in.Thumbnail != nil {
		if in.Thumbnail.Size > maxThumbnailBytes {
			return nil, withMessage(ErrFileTooLarge, "Thumbnail too large (max 5MB)")
		}
		thumbType, err = media.Sniff(in.Thumbnail.Body)
		if err != nil || !media.Allowed(thumbType, media.ImageTypes) {
			return nil, withMessage(ErrUnsupportedMedia, "thumbnail must be a jpeg, png or webp image")
		}
	}

	var stored []string
	cleanup := func() {
		for _, id := range stored {
			if err := s.host.Delete(context.WithoutCancel(ctx), id); err != nil {
				s.logger.Error("failed to delete rejected media", "public_id", id, "err", err)
			}
		}
	}

	up, err := s.host.Upload(ctx, media.Object{
		Kind:        media.KindVideo,
		OwnerID:     profile.ID,
		Filename:    in.Video.Filename,
		ContentType: videoType,
		Size:        in.Video.Size,
		Body:        in.Video.Body,
	})
	if up != nil {
		stored = append(stored, up.PublicID)
	}
	if err != nil {
		cleanup()
		s.metrics.ObserveUpload("host_error")
		return nil, dependency("Failed to upload video", err)
	}

	duration := int(math.Round(up.DurationSeconds))
	if duration < limits.MinSeconds || duration > limits.MaxSeconds {
		cleanup()
		s.metrics.ObserveUpload("duration_rejected")
		return nil, withMessage(ErrDurationRange, fmt.Sprintf("%s videos must be between %d and %d seconds (got %ds)",
			class, limits.MinSeconds, limits.MaxSeconds, duration))
	}

	v := &model.Video{
		CreatorID:       profile.ID,
		Title:           title,
		Category:        category,
		Class:           class,
		MediaPublicID:   up.PublicID,
		MediaURL:        up.URL,
		DurationSeconds: duration,
		IsPublished:     true,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		v.Description = &d
	}

	if in.Thumbnail != nil {
		thumb, err := s.host.Upload(ctx, media.Object{
			Kind:        media.KindThumbnail,
			OwnerID:     profile.ID,
			Filename:    in.Thumbnail.Filename,
			ContentType: thumbType,
			Size:        in.Thumbnail.Size,
			Body:        in.Thumbnail.Body,
		})
		if thumb != nil {
			stored = append(stored, thumb.PublicID)
		}
		if err != nil {
			cleanup()
			s.metrics.ObserveUpload("host_error")
			return nil, dependency("Failed to upload thumbnail", err)
		}
		v.ThumbnailURL = &thumb.URL
		v.ThumbnailID = &thumb.PublicID
	}

	if err := s.videos.Create(ctx, v); err != nil {
		cleanup()
		s.metrics.ObserveUpload("db_error")
		return nil, dependency("Failed to save video", err)
	}
	s.metrics.ObserveUpload("accepted")
	s.logger.Info("video uploaded", "video_id", v.ID, "creator_id", profile.ID, "class", class, "duration", duration)
	return v, nil
}
