package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/file_drive/internal/logging"
	"github.com/Skotchmaster/file_drive/internal/service"
)

// httpError maps service errors to HTTP errors. Storage and unexpected
// failures are logged and answered with a generic message.
func httpError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		logging.FromContext(ctx).Error("request_failed", "handler", op, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func badBody(ctx context.Context, op string, err error) error {
	logging.FromContext(ctx).Warn("bind_failed", "handler", op, "status", 400, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}
