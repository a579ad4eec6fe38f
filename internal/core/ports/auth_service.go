package ports

import (
	"context"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	// Login authenticates credentials from the given source IP. A blocked
	// source fails with *domain.RateLimitError even when the credentials
	// are correct; a failed attempt is recorded against the source and a
	// successful one resets its record.
	Login(ctx context.Context, email, password, sourceIP string) (string, *domain.User, error)
	// Logout revokes the presented token. Idempotent.
	Logout(ctx context.Context, raw string) error
}
