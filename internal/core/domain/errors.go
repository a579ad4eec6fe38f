package domain

import (
	"errors"
	"fmt"
	"time"
)

// Authentication failures. All map to 401: the caller should re-login.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenNotYetValid   = errors.New("token not yet valid")
)

// Authorization failures. All map to 403: retrying with the same token
// will not help.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrEmailUnverified    = errors.New("email verification required")
)

// Account and infrastructure failures.
var (
	ErrUserExists             = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// RateLimitError is returned when a source IP is temporarily blocked by the
// login attempt guard. RetryAfter hints when the block lifts.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many failed login attempts, retry after %s", e.RetryAfter.Round(time.Second))
}
