package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/api/metrics"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

// RequireRole gates a route on the identity attached by Authenticate.
// superadmin satisfies a requirement for admin; there is no other implicit
// hierarchy. The actual and allowed roles are logged internally for
// diagnostics and never leaked to the client.
func RequireRole(log zerolog.Logger, allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := Identity(c)
			if !ok {
				// Authenticate did not run before this middleware: a
				// routing wiring bug, not a client mistake.
				log.Error().
					Str("path", c.Path()).
					Msg("RequireRole reached without an authenticated identity")
				return domain.ErrUnauthenticated
			}

			for _, role := range allowed {
				if user.Role.CanActAs(role) {
					return next(c)
				}
			}

			metrics.ForbiddenTotal.WithLabelValues("role").Inc()
			log.Warn().
				Str("user_id", user.ID).
				Str("role", string(user.Role)).
				Strs("allowed", roleStrings(allowed)).
				Str("path", c.Path()).
				Msg("role denied")
			return domain.ErrForbidden
		}
	}
}

// RequireSuperAdmin accepts only superadmin.
func RequireSuperAdmin(log zerolog.Logger) echo.MiddlewareFunc {
	return RequireRole(log, domain.RoleSuperAdmin)
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
