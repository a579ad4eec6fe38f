package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/ports"
)

const lastActiveTimeout = 5 * time.Second

// AuthService implements registration, login and logout on top of the user
// repository, the token service, the login attempt guard and the token
// revocation store.
type AuthService struct {
	users   ports.UserRepository
	tokens  ports.TokenService
	guard   ports.LoginGuard
	revoker ports.TokenRevoker
	log     zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, guard ports.LoginGuard, revoker ports.TokenRevoker, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, guard: guard, revoker: revoker, log: log}
}

// Register creates a new account with role "user", active and unverified.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.users.Create(ctx, user)
}

// Login verifies credentials and issues a bearer token.
//
// The guard is consulted before any credential work: a blocked source is
// rejected with *domain.RateLimitError even when the password is correct.
// Unknown email and wrong password are indistinguishable to the caller
// (both record a failure and return ErrInvalidCredentials) so the endpoint
// cannot be used to enumerate accounts. A successful login clears the
// source's failure record immediately rather than letting it age out.
func (s *AuthService) Login(ctx context.Context, email, password, sourceIP string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	blocked, retryAfter, err := s.guard.IsBlocked(ctx, sourceIP)
	if err != nil {
		return "", nil, err
	}
	if blocked {
		return "", nil, &domain.RateLimitError{RetryAfter: retryAfter}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", nil, s.failAttempt(ctx, sourceIP)
		}
		return "", nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", nil, s.failAttempt(ctx, sourceIP)
	}

	if !user.Active {
		return "", nil, domain.ErrAccountDeactivated
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	if err := s.guard.Reset(ctx, sourceIP); err != nil {
		s.log.Warn().Err(err).Str("source", sourceIP).Msg("failed to reset login attempts")
	}
	s.touchLastActive(ctx, user.ID)

	user.PasswordHash = ""
	return token, user, nil
}

// Logout revokes the presented token until its natural expiry. Revoking an
// already-revoked or already-expired token succeeds without error.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		if err == domain.ErrTokenExpired {
			return nil // nothing left to revoke
		}
		return err
	}
	return s.revoker.Revoke(ctx, raw, claims.ExpiresAt)
}

func (s *AuthService) failAttempt(ctx context.Context, sourceIP string) error {
	if err := s.guard.RecordFailure(ctx, sourceIP); err != nil {
		s.log.Error().Err(err).Str("source", sourceIP).Msg("failed to record login failure")
	}
	return domain.ErrInvalidCredentials
}

// touchLastActive persists the last-active timestamp best-effort, off the
// request path. A failed write is logged and never fails the login.
func (s *AuthService) touchLastActive(ctx context.Context, userID string) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), lastActiveTimeout)
	go func() {
		defer cancel()
		if err := s.users.TouchLastActive(bg, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to update last active timestamp")
		}
	}()
}
