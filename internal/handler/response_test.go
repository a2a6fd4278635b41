package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/service"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{service.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "rate limit"},
		{service.ErrVideoIDRequired, http.StatusBadRequest, "video_id_required", "video_id required"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized", "authentication required"},
		{service.ErrEmailUnverified, http.StatusForbidden, "email_unverified", "email address must be verified"},
		{service.ErrProfileNotFound, http.StatusNotFound, "profile_not_found", "profile not found"},
		{service.ErrPendingPayout, http.StatusBadRequest, "pending_payout", "a payout request is already pending"},
		{service.ErrDurationRange, http.StatusBadRequest, "duration_out_of_range", "video duration is outside the allowed range"},
		{fmt.Errorf("wrapped: %w", service.ErrForbidden), http.StatusForbidden, "forbidden", "forbidden"},
		{errors.New("connection refused"), http.StatusInternalServerError, "internal_error", "Failed to do thing"},
		{&service.Error{Kind: service.KindDependency, Code: "internal_error", Message: "lookup failed", Err: context.DeadlineExceeded},
			http.StatusInternalServerError, "timeout", "request timed out, please retry"},
	}
	for _, tt := range tests {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
		require.NoError(t, writeError(c, tt.err, "Failed to do thing"))
		require.Equal(t, tt.status, rec.Code, tt.code)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tt.code, body.Error.Code)
		require.Equal(t, tt.message, body.Error.Message)
	}
}
