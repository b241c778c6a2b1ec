package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors onto the error taxonomy: validation 4xx, auth 401/403
//     (kept generic against account enumeration), conflict 409/410, transient
//     infrastructure 503, unexpected 500.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "...", "code": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := resolveError(err, log, c)
		resp := errorResponse{Error: msg}
		switch code := domain.ErrorCode(err); code {
		case "UNEXPECTED":
		case "USER_NOT_FOUND":
			// Never exposed verbatim; the distinction exists for diagnosis only.
			resp.Code = "INVALID_CREDENTIALS"
		default:
			resp.Code = code
		}
		_ = c.JSON(status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// Validation: actionable message, 4xx.
	case errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrNotGuest),
		errors.Is(err, domain.ErrProtectedKey):
		return http.StatusBadRequest, err.Error()

	// Authentication: generic wording so callers cannot probe for accounts.
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrAccountSuspended):
		return http.StatusForbidden, "account suspended"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"

	// Conflicts.
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, domain.ErrPendingVerification):
		return http.StatusConflict, "email registered but not yet verified"
	case errors.Is(err, domain.ErrVerificationInProgress):
		return http.StatusConflict, "verification already in progress"
	case errors.Is(err, domain.ErrTokenConsumed):
		return http.StatusGone, "token already used"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusGone, "token expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusNotFound, "invalid token"
	case errors.Is(err, domain.ErrCooldownActive):
		return http.StatusTooManyRequests, "try again later"

	// Transient infrastructure: safe to retry.
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
