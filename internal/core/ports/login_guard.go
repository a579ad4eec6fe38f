package ports

import (
	"context"
	"time"
)

// LoginGuard tracks failed login attempts per source IP and enforces
// temporary lockouts. Implementations must make per-key read-modify-write
// sequences atomic with respect to concurrent requests.
type LoginGuard interface {
	// IsBlocked reports whether the source is currently locked out and, if
	// so, how long until the lock lifts. Pure read, no side effects.
	IsBlocked(ctx context.Context, source string) (bool, time.Duration, error)
	// RecordFailure increments the failure count for the source and
	// refreshes its last-failure timestamp.
	RecordFailure(ctx context.Context, source string) error
	// Reset clears the record immediately, called on successful login.
	Reset(ctx context.Context, source string) error
}
