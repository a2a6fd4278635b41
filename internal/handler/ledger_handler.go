package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type LedgerHandler struct {
	svc service.LedgerService
}

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// Audit compares a profile's balance with the sum of its transactions.
func (h *LedgerHandler) Audit(c echo.Context) error {
	id, ok := parseID(c, "profileId")
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid profile id"))
	}
	report, err := h.svc.Audit(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "Failed to audit ledger")
	}
	return c.JSON(http.StatusOK, report)
}
