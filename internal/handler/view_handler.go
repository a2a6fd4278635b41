package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/middleware"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type ViewHandler struct {
	svc service.ViewService
}

func NewViewHandler(svc service.ViewService) *ViewHandler {
	return &ViewHandler{svc: svc}
}

type RecordViewRequest struct {
	VideoID uint64 `json:"video_id"`
}

// Record counts a watch of a video. Authentication is optional.
func (h *ViewHandler) Record(c echo.Context) error {
	var req RecordViewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	res, err := h.svc.RecordWatch(c.Request().Context(), service.WatchInput{
		VideoID:   req.VideoID,
		ViewerUID: currentUID(c),
		Address:   middleware.ClientAddress(c.Request()),
	})
	if err != nil {
		return writeError(c, err, "Failed to record view")
	}
	if res.Deduplicated {
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "View already recorded"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
