package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/adsession"
	"github.com/reelspay/reelspay-backend/internal/middleware"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type RewardHandler struct {
	svc service.RewardService
}

func NewRewardHandler(svc service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

type AdSessionResponse struct {
	ID          string  `json:"id"`
	VideoID     uint64  `json:"video_id"`
	Status      string  `json:"status"`
	CompletedAt *string `json:"completed_at,omitempty"`
	ProofToken  string  `json:"proof_token,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toAdSessionResponse(s *model.AdSession, proof string) AdSessionResponse {
	var completedAt *string
	if s.CompletedAt != nil {
		val := s.CompletedAt.Format(time.RFC3339)
		completedAt = &val
	}
	return AdSessionResponse{
		ID:          s.ID,
		VideoID:     s.VideoID,
		Status:      s.Status,
		CompletedAt: completedAt,
		ProofToken:  proof,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func (h *RewardHandler) StartSession(c echo.Context) error {
	var req struct {
		VideoID uint64 `json:"video_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	sess, err := h.svc.StartSession(c.Request().Context(), req.VideoID, currentUID(c), middleware.ClientAddress(c.Request()))
	if err != nil {
		return writeError(c, err, "Failed to start ad session")
	}
	return c.JSON(http.StatusCreated, toAdSessionResponse(sess, ""))
}

func (h *RewardHandler) Event(c echo.Context) error {
	var req struct {
		Event string `json:"event"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	ev, err := adsession.ParseEvent(req.Event)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	res, err := h.svc.Advance(c.Request().Context(), c.Param("id"), ev, currentUID(c), middleware.ClientAddress(c.Request()))
	if err != nil {
		return writeError(c, err, "Failed to update ad session")
	}
	return c.JSON(http.StatusOK, toAdSessionResponse(res.Session, res.ProofToken))
}

func (h *RewardHandler) Claim(c echo.Context) error {
	var req struct {
		ProofToken string `json:"proof_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ProofToken == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "proof_token required"))
	}
	res, err := h.svc.Claim(c.Request().Context(), req.ProofToken, currentUID(c), middleware.ClientAddress(c.Request()))
	if err != nil {
		return writeError(c, err, "Failed to claim reward")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":         true,
		"coins_awarded":   res.ViewerCoins,
		"already_claimed": res.AlreadyClaimed,
	})
}
