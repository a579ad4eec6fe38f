package ports

import (
	"time"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

// AccessClaims is the verified content of a bearer token.
type AccessClaims struct {
	UserID    string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed bearer tokens.
//
// Verify fails with exactly one of domain.ErrTokenExpired,
// domain.ErrTokenNotYetValid or domain.ErrTokenMalformed.
type TokenService interface {
	Issue(userID string, role domain.Role) (string, error)
	Verify(raw string) (*AccessClaims, error)
}
