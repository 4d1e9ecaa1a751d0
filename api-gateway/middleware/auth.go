package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// AuthMiddleware validates JWT tokens
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware validates a token when present but does not require
// one. Capability enforcement stays in the backend; the gateway only forwards
// a verified identity.
func OptionalAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := auth.ValidateToken(parts[1]); err == nil {
				storeClaims(c, claims)
			}
		}

		return c.Next()
	}
}

// RequirePermission checks that the validated claims carry a capability key
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		permissions, ok := c.Locals("permissions").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		for _, p := range permissions {
			if p == permission {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": fmt.Sprintf("Capability %s required", permission),
		})
	}
}

// storeClaims stores identity in locals and forwards it to backend services
func storeClaims(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("company_id", claims.CompanyID)
	c.Locals("permissions", claims.Permissions)

	c.Request().Header.Set("X-User-ID", fmt.Sprintf("%d", claims.UserID))
	c.Request().Header.Set("X-Username", claims.Username)
	c.Request().Header.Set("X-Company-ID", fmt.Sprintf("%d", claims.CompanyID))
}
