package ports

import (
	"context"
	"time"
)

// TokenRevoker records logged-out tokens until they expire naturally, so a
// cryptographically valid token can still be rejected. Revoke is idempotent;
// entries are evicted no earlier than expiresAt plus a safety margin.
type TokenRevoker interface {
	Revoke(ctx context.Context, raw string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, raw string) (bool, error)
}
