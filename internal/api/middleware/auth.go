package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/api/metrics"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/ports"
)

// Echo context keys populated by Authenticate.
const (
	identityKey = "identity"
	tokenKey    = "token"
)

const (
	cookieName        = "access_token"
	lastActiveTimeout = 5 * time.Second
)

// Config enumerates the feature flags of the consolidated authentication
// middleware. One implementation with flags replaces the parallel variants
// a codebase otherwise accumulates.
type Config struct {
	// RequireVerifiedEmail rejects authenticated users whose email address
	// has not been verified.
	RequireVerifiedEmail bool
	// AllowCookieToken enables the access_token cookie as a fallback when
	// no Authorization header is present.
	AllowCookieToken bool
	// EnableIPLockout consults the login attempt guard before any token
	// work, rejecting blocked source IPs.
	EnableIPLockout bool
}

// Authenticator resolves the requesting identity from a bearer token.
type Authenticator struct {
	tokens  ports.TokenService
	users   ports.UserRepository
	revoker ports.TokenRevoker
	guard   ports.LoginGuard
	cfg     Config
	log     zerolog.Logger
}

func NewAuthenticator(tokens ports.TokenService, users ports.UserRepository, revoker ports.TokenRevoker, guard ports.LoginGuard, cfg Config, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, revoker: revoker, guard: guard, cfg: cfg, log: log}
}

// Authenticate is the hard gate in front of protected routes: on any
// failure the handler never runs. On success the resolved user and the raw
// token are attached to the Echo context, and the user's last-active
// timestamp is updated best-effort off the request path.
func (a *Authenticator) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, raw, err := a.resolve(c)
			if err != nil {
				return err
			}
			c.Set(identityKey, user)
			c.Set(tokenKey, raw)
			a.touchLastActive(c.Request().Context(), user.ID)
			return next(c)
		}
	}
}

// OptionalAuthenticate attaches the identity when a valid token is
// presented and proceeds anonymously otherwise. It never fails the request;
// public endpoints use it to personalize when possible.
func (a *Authenticator) OptionalAuthenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, raw, err := a.resolve(c)
			if err == nil {
				c.Set(identityKey, user)
				c.Set(tokenKey, raw)
			}
			return next(c)
		}
	}
}

// resolve runs the authentication pipeline. Each stage short-circuits:
// lockout check, token extraction, revocation check, signature
// verification, identity resolution, account-state checks.
func (a *Authenticator) resolve(c echo.Context) (*domain.User, string, error) {
	ctx := c.Request().Context()

	if a.cfg.EnableIPLockout {
		blocked, retryAfter, err := a.guard.IsBlocked(ctx, c.RealIP())
		if err != nil {
			return nil, "", err
		}
		if blocked {
			metrics.LockoutsTotal.Inc()
			return nil, "", &domain.RateLimitError{RetryAfter: retryAfter}
		}
	}

	raw, ok := a.extractToken(c)
	if !ok {
		metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
		return nil, "", domain.ErrUnauthenticated
	}

	revoked, err := a.revoker.IsRevoked(ctx, raw)
	if err != nil {
		return nil, "", err
	}
	if revoked {
		metrics.TokenVerificationsTotal.WithLabelValues("revoked").Inc()
		return nil, "", domain.ErrTokenRevoked
	}

	claims, err := a.tokens.Verify(raw)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues(verifyOutcome(err)).Inc()
		return nil, "", err
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			// The account may have been deleted after issuance: treat as
			// never authenticated, not as a server error.
			return nil, "", domain.ErrUnauthenticated
		}
		return nil, "", err
	}

	if !user.Active {
		metrics.ForbiddenTotal.WithLabelValues("deactivated").Inc()
		return nil, "", domain.ErrAccountDeactivated
	}
	if a.cfg.RequireVerifiedEmail && !user.EmailVerified {
		metrics.ForbiddenTotal.WithLabelValues("unverified").Inc()
		return nil, "", domain.ErrEmailUnverified
	}

	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return user, raw, nil
}

func (a *Authenticator) extractToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}

	if a.cfg.AllowCookieToken {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, true
		}
	}
	return "", false
}

// touchLastActive persists observability state only: a failed write is
// logged and never fails the request.
func (a *Authenticator) touchLastActive(ctx context.Context, userID string) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), lastActiveTimeout)
	go func() {
		defer cancel()
		if err := a.users.TouchLastActive(bg, userID); err != nil {
			a.log.Warn().Err(err).Str("user_id", userID).Msg("failed to update last active timestamp")
		}
	}()
}

func verifyOutcome(err error) string {
	switch err {
	case domain.ErrTokenExpired:
		return "expired"
	case domain.ErrTokenNotYetValid:
		return "not_yet_valid"
	default:
		return "malformed"
	}
}

// Identity returns the user attached by Authenticate, if any.
func Identity(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(identityKey).(*domain.User)
	return user, ok && user != nil
}

// Token returns the raw bearer token attached by Authenticate. Logout needs
// it to revoke the exact credential the request presented.
func Token(c echo.Context) (string, bool) {
	raw, ok := c.Get(tokenKey).(string)
	return raw, ok && raw != ""
}
