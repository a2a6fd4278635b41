package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type VideoHandler struct {
	profiles service.ProfileService
	uploads  service.UploadService
	views    service.ViewService
}

func NewVideoHandler(profiles service.ProfileService, uploads service.UploadService, views service.ViewService) *VideoHandler {
	return &VideoHandler{profiles: profiles, uploads: uploads, views: views}
}

type VideoResponse struct {
	ID              uint64  `json:"id"`
	CreatorID       uint64  `json:"creator_id"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	Category        string  `json:"category"`
	VideoType       string  `json:"video_type"`
	VideoURL        string  `json:"video_url"`
	ThumbnailURL    *string `json:"thumbnail_url,omitempty"`
	DurationSeconds int     `json:"duration_seconds"`
	ViewsCount      int64   `json:"views_count"`
	LikesCount      int64   `json:"likes_count"`
	CreatedAt       string  `json:"created_at"`
}

type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int64           `json:"total"`
}

func toVideoResponse(v *model.Video) VideoResponse {
	return VideoResponse{
		ID:              v.ID,
		CreatorID:       v.CreatorID,
		Title:           v.Title,
		Description:     v.Description,
		Category:        string(v.Category),
		VideoType:       string(v.Class),
		VideoURL:        v.MediaURL,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
		ViewsCount:      v.ViewsCount,
		LikesCount:      v.LikesCount,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
	}
}

func (h *VideoHandler) List(c echo.Context) error {
	list, total, err := h.profiles.ListVideos(c.Request().Context(),
		c.QueryParam("category"), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return writeError(c, err, "Failed to fetch videos")
	}
	resp := VideoListResponse{Videos: make([]VideoResponse, 0, len(list)), Total: total}
	for i := range list {
		resp.Videos = append(resp.Videos, toVideoResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *VideoHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	v, err := h.profiles.GetVideo(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "Failed to fetch video")
	}
	return c.JSON(http.StatusOK, toVideoResponse(v))
}

func (h *VideoHandler) Like(c echo.Context) error {
	return h.toggleLike(c, true)
}

func (h *VideoHandler) Unlike(c echo.Context) error {
	return h.toggleLike(c, false)
}

func (h *VideoHandler) toggleLike(c echo.Context, like bool) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var (
		changed bool
		err     error
	)
	if like {
		changed, err = h.profiles.Like(c.Request().Context(), uid, id)
	} else {
		changed, err = h.profiles.Unlike(c.Request().Context(), uid, id)
	}
	if err != nil {
		return writeError(c, err, "Failed to update like")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "changed": changed, "liked": like})
}

// Recount rebuilds a video's view counter from the view ledger.
func (h *VideoHandler) Recount(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	n, err := h.views.RecountViews(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "Failed to recount views")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"video_id": id, "views_count": n})
}

// Upload accepts a multipart form with video, optional thumbnail, title,
// description, category and videoType.
func (h *VideoHandler) Upload(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	video, closeVideo, err := formFile(c, "video")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid multipart form"))
	}
	defer closeVideo()
	thumb, closeThumb, err := formFile(c, "thumbnail")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid multipart form"))
	}
	defer closeThumb()

	v, err := h.uploads.Upload(c.Request().Context(), service.UploadInput{
		UID:         uid,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Class:       c.FormValue("videoType"),
		Video:       video,
		Thumbnail:   thumb,
	})
	if err != nil {
		return writeError(c, err, "Failed to upload video")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "video": toVideoResponse(v)})
}

// formFile opens an optional multipart file. A missing field yields a nil file.
func formFile(c echo.Context, field string) (*service.UploadFile, func(), error) {
	fh, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.UploadFile{Filename: fh.Filename, Size: fh.Size, Body: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}
