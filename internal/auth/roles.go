package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-fixit/issue-service/internal/domain"
	apperrors "github.com/campus-fixit/issue-service/pkg/util/errorutil"
)

// Authorize fails with a forbidden error unless the caller holds role.
func Authorize(identity *domain.Identity, role domain.Role) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if identity.Role != role {
		return apperrors.NewForbidden(fmt.Sprintf("access denied: %s role required", role))
	}
	return nil
}

// RequireRole ensures the authenticated caller holds role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := Authorize(identity, role); err != nil {
			return err
		}
		return c.Next()
	}
}
