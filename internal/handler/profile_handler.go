package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type ProfileHandler struct {
	profiles service.ProfileService
	ledger   service.LedgerService
}

func NewProfileHandler(profiles service.ProfileService, ledger service.LedgerService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, ledger: ledger}
}

type ProfileResponse struct {
	ID            uint64  `json:"id"`
	UserUID       string  `json:"user_uid"`
	DisplayName   string  `json:"display_name"`
	IsCreator     bool    `json:"is_creator"`
	CoinsBalance  int64   `json:"coins_balance"`
	TotalEarnings int64   `json:"total_earnings"`
	UPIID         *string `json:"upi_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		UserUID:       p.UserUID,
		DisplayName:   p.DisplayName,
		IsCreator:     p.IsCreator,
		CoinsBalance:  p.CoinsBalance,
		TotalEarnings: p.TotalEarnings,
		UPIID:         p.PayoutAddress,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

type TransactionResponse struct {
	ID              uint64  `json:"id"`
	Amount          int64   `json:"amount"`
	Type            string  `json:"transaction_type"`
	Description     *string `json:"description,omitempty"`
	VideoID         *uint64 `json:"video_id,omitempty"`
	PayoutRequestID *uint64 `json:"payout_request_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// Me returns the caller's profile, creating it on first sign-in.
func (h *ProfileHandler) Me(c echo.Context) error {
	id := currentIdentity(c)
	if id.UID == "" {
		return unauthorized(c)
	}
	p, err := h.profiles.EnsureProfile(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) BecomeCreator(c echo.Context) error {
	id := currentIdentity(c)
	if id.UID == "" {
		return unauthorized(c)
	}
	before, err := h.profiles.Me(c.Request().Context(), id.UID)
	wasCreator := err == nil && before.IsCreator
	p, err := h.profiles.PromoteToCreator(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "Failed to update creator status")
	}
	resp := map[string]interface{}{"success": true, "profile": toProfileResponse(p)}
	if wasCreator {
		resp["message"] = "Already a creator"
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) Transactions(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.ledger.History(c.Request().Context(), uid, queryInt(c, "limit", 50))
	if err != nil {
		return writeError(c, err, "Failed to fetch transactions")
	}
	resp := make([]TransactionResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, TransactionResponse{
			ID:              t.ID,
			Amount:          t.Amount,
			Type:            string(t.Kind),
			Description:     t.Description,
			VideoID:         t.VideoID,
			PayoutRequestID: t.PayoutRequestID,
			CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"transactions": resp})
}
