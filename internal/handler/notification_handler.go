package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID              uint64  `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Body            string  `json:"body"`
	VideoID         *uint64 `json:"video_id,omitempty"`
	PayoutRequestID *uint64 `json:"payout_request_id,omitempty"`
	Read            bool    `json:"read"`
	CreatedAt       string  `json:"created_at"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID,
		Type:            string(n.Type),
		Title:           n.Title,
		Body:            n.Body,
		VideoID:         n.VideoID,
		PayoutRequestID: n.PayoutRequestID,
		Read:            n.ReadAt != nil,
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	q := service.InboxQuery{
		UnreadOnly: c.QueryParam("unread") == "1" || c.QueryParam("unread") == "true",
		Type:       model.NotificationType(c.QueryParam("type")),
		Limit:      queryInt(c, "limit", 20),
	}
	if raw := c.QueryParam("payout_request_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid payout_request_id"))
		}
		q.PayoutRequestID = id
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), uid, q)
	if err != nil {
		return writeError(c, err, "failed to fetch notifications")
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"unread_count":  unreadCount,
	})
}

type markReadRequest struct {
	IDs []uint64 `json:"ids"`
}

// MarkRead marks the listed notifications read, or all of them when no ids are sent.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request body"))
	}
	n, err := h.svc.MarkRead(c.Request().Context(), uid, req.IDs)
	if err != nil {
		return writeError(c, err, "failed to mark read")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "marked": n})
}
