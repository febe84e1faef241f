package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/domain"
	apperrors "github.com/spec-kit/boaz-housing/pkg/util"
)

// RequireAuth ensures a session-backed principal is present.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal has one of the allowed roles. The 403
// carries the caller's canonical home route so clients can redirect
// deterministically instead of rendering protected content.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role", map[string]any{
				"redirect": principal.User.Role.HomeRoute(),
			})
		}
		return c.Next()
	}
}
