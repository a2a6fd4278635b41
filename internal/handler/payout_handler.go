package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type PayoutHandler struct {
	svc service.PayoutService
}

func NewPayoutHandler(svc service.PayoutService) *PayoutHandler {
	return &PayoutHandler{svc: svc}
}

type PayoutRequestResponse struct {
	ID            uint64  `json:"id"`
	ProfileID     uint64  `json:"profile_id"`
	CoinsAmount   int64   `json:"coins_amount"`
	PaiseAmount   int64   `json:"paise_amount"`
	UPIID         string  `json:"upi_id"`
	Status        string  `json:"status"`
	FailureReason *string `json:"failure_reason,omitempty"`
	ProcessedAt   *string `json:"processed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toPayoutResponse(p *model.PayoutRequest) PayoutRequestResponse {
	var processedAt *string
	if p.ProcessedAt != nil {
		val := p.ProcessedAt.Format(time.RFC3339)
		processedAt = &val
	}
	return PayoutRequestResponse{
		ID:            p.ID,
		ProfileID:     p.ProfileID,
		CoinsAmount:   p.CoinsAmount,
		PaiseAmount:   p.PaiseAmount,
		UPIID:         p.PayoutAddress,
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
		ProcessedAt:   processedAt,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

func toPayoutList(list []model.PayoutRequest) []PayoutRequestResponse {
	resp := make([]PayoutRequestResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toPayoutResponse(&list[i]))
	}
	return resp
}

type CreatePayoutRequest struct {
	CoinsAmount int64  `json:"coins_amount"`
	UPIID       string `json:"upi_id"`
}

func (h *PayoutHandler) Request(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req CreatePayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.CoinsAmount == 0 || req.UPIID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "coins_amount and upi_id are required"))
	}
	res, err := h.svc.Request(c.Request().Context(), uid, req.CoinsAmount, req.UPIID)
	if err != nil {
		return writeError(c, err, "Failed to create payout request")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":            true,
		"payout_request":     toPayoutResponse(res.Request),
		"amount_in_currency": json.Number(res.AmountInCurrency.String()),
	})
}

func (h *PayoutHandler) ListMine(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "Failed to fetch payouts")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"payouts": toPayoutList(list)})
}

// ListByStatus is the operator view of the settlement queue.
func (h *PayoutHandler) ListByStatus(c echo.Context) error {
	status := model.PayoutStatus(c.QueryParam("status"))
	if status == "" {
		status = model.PayoutStatusPending
	}
	list, err := h.svc.ListByStatus(c.Request().Context(), status, queryInt(c, "limit", 50))
	if err != nil {
		return writeError(c, err, "Failed to fetch payouts")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"payouts": toPayoutList(list)})
}

type ResolvePayoutRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *PayoutHandler) Resolve(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid payout id"))
	}
	var req ResolvePayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.Resolve(c.Request().Context(), id, model.PayoutStatus(req.Status), req.Reason)
	if err != nil {
		return writeError(c, err, "Failed to resolve payout")
	}
	return c.JSON(http.StatusOK, toPayoutResponse(p))
}
