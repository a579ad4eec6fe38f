package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/ports"
)

// minSecretLen is the minimum acceptable signing secret length in bytes.
const minSecretLen = 32

const defaultTokenTTL = 7 * 24 * time.Hour

// accessClaims is the wire shape of an access token.
type accessClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens carrying the user id
// and a role snapshot. Role is captured at issuance time: a role change
// only takes effect on the next login.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService validates the signing secret eagerly so a misconfigured
// process fails at startup rather than on the first request.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("token service: signing secret must be at least %d bytes, got %d", minSecretLen, len(secret))
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue emits a signed token for the user valid for the configured TTL.
func (s *TokenService) Issue(userID string, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a raw token. Failures are one of:
//
//   - domain.ErrTokenExpired: signature valid, past expiry, re-login.
//   - domain.ErrTokenNotYetValid: issued-at (or nbf) in the future,
//     defends against clock-skew replay.
//   - domain.ErrTokenMalformed: bad signature, wrong algorithm, or an
//     unparseable payload.
func (s *TokenService) Verify(raw string) (*ports.AccessClaims, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, domain.ErrTokenNotYetValid
		default:
			return nil, domain.ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenMalformed
	}

	out := &ports.AccessClaims{
		UserID: claims.Subject,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }
