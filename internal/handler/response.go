package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/reelspay/reelspay-backend/internal/middleware"
	"github.com/reelspay/reelspay-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict, service.KindInvariant:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// WriteTimeout answers a request whose deadline expired. The client may retry it.
func WriteTimeout(c echo.Context, err error) error {
	slog.WarnContext(c.Request().Context(), "request deadline exceeded",
		"method", c.Request().Method, "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("timeout", "request timed out, please retry"))
}

// writeError renders a service error. Dependency failures are logged with their
// cause and reach the client only as a generic message.
func writeError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return WriteTimeout(c, err)
	}
	kind := service.KindOf(err)
	if kind == service.KindDependency {
		slog.ErrorContext(c.Request().Context(), fallback,
			"method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", fallback))
	}
	code, msg := "bad_request", err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		code, msg = se.Code, se.Message
	}
	return c.JSON(statusOf(kind), NewErrorResponse(code, msg))
}

func currentUID(c echo.Context) string {
	uid, _ := c.Get(middleware.KeyUID).(string)
	return uid
}

func currentIdentity(c echo.Context) service.Identity {
	verified, _ := c.Get(middleware.KeyEmailVerified).(bool)
	name, _ := c.Get(middleware.KeyName).(string)
	return service.Identity{UID: currentUID(c), Name: name, EmailVerified: verified}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "Unauthorized"))
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c echo.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return def
}
