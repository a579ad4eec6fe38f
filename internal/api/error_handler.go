package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Code is
// a stable machine-readable reason so clients can distinguish "prompt
// re-login" from "show access denied" from "back off and retry later".
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the closed auth error taxonomy to deterministic HTTP statuses
//     and reason codes.
//   - Sets a Retry-After hint on rate-limited responses.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var rle *domain.RateLimitError
		if errors.As(err, &rle) {
			seconds := int(math.Ceil(rle.RetryAfter.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			_ = c.JSON(http.StatusTooManyRequests, errorResponse{Error: rle.Error(), Code: "rate_limited"})
			return
		}

		status, code, msg := resolveError(err, log, c)
		_ = c.JSON(status, errorResponse{Error: msg, Code: code})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, httpCode(he.Code), fmt.Sprintf("%v", he.Message)
	}

	// The closed taxonomy → deterministic statuses and reason codes.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", err.Error()
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", err.Error()
	case errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, "token_revoked", err.Error()
	case errors.Is(err, domain.ErrTokenMalformed):
		return http.StatusUnauthorized, "token_malformed", err.Error()
	case errors.Is(err, domain.ErrTokenNotYetValid):
		return http.StatusUnauthorized, "token_not_yet_valid", err.Error()
	case errors.Is(err, domain.ErrAccountDeactivated):
		return http.StatusForbidden, "account_deactivated", err.Error()
	case errors.Is(err, domain.ErrEmailUnverified):
		return http.StatusForbidden, "email_unverified", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "access forbidden"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user_exists", err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", err.Error()
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		// A backend outage is not an auth failure; conflating the two
		// would make a database outage look like everyone logged out.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("persistence unavailable")
		return http.StatusServiceUnavailable, "persistence_unavailable", "service temporarily unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal", "internal server error"
}

func httpCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "error"
	}
}
