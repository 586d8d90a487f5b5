package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"asha/internal/auth"
	apperrors "asha/internal/errors"
)

// fail converts a service error into an HTTP error carrying the public
// message. Unexpected errors are logged here and reported generically.
func fail(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", c.Path()),
			slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			slog.Any("error", err))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// badRequest reports an invalid request body or parameter.
func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{Message: msg, Code: "BAD_REQUEST"})
}

// sessionIDOrNew returns id, or a fresh UUID when the caller sent none.
func sessionIDOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// claimsFrom returns the verified token claims set by the JWT middleware.
func claimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get("user").(*auth.Claims)
	return claims, ok
}
