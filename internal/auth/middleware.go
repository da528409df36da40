package auth

import (
	"context"
	"strings"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/logging"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"
	"marketplace-backend/internal/systemlog"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxAdminIDKey   = "admin_id"
	CtxAdminNameKey = "admin_name"
	CtxAdminRoleKey = "admin_role"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return response.Gate(c, fiber.StatusUnauthorized, "Authorization header is missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Gate(c, fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return response.Gate(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxAdminIDKey, claims.AdminID)
		c.Locals(CtxAdminNameKey, claims.Name)
		c.Locals(CtxAdminRoleKey, claims.Role)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.AdminRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxAdminRoleKey).(models.AdminRole)
		if !ok {
			return response.Gate(c, fiber.StatusForbidden, "Role could not be resolved")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return response.Gate(c, fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

// RequestContext returns the request's context carrying the acting admin,
// for services that record who changed what.
func RequestContext(c *fiber.Ctx) context.Context {
	id, _ := c.Locals(CtxAdminIDKey).(uint)
	name, _ := c.Locals(CtxAdminNameKey).(string)
	return systemlog.WithActor(c.UserContext(), systemlog.Actor{
		AdminID:   id,
		AdminName: name,
		RequestID: logging.RequestIDFrom(c),
	})
}
