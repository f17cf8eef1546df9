package middleware

import (
	"errors"
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth.
const (
	LocalActor      = "actor"
	LocalPrivileges = "user_privileges"
)

// RequireAuth is middleware that validates JWT token and sets the acting user in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		res, err := auth.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			status := fiber.StatusUnauthorized
			if !errors.Is(err, service.ErrUnauthorized) {
				status = fiber.StatusInternalServerError
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		// Set user info in context for downstream handlers
		c.Locals(LocalActor, res.Actor)
		c.Locals(LocalPrivileges, res.Privileges)

		return c.Next()
	}
}

// ActorFrom returns the user set by RequireAuth.
func ActorFrom(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(model.Actor)
	return actor, ok
}

// HasPrivilege reports whether the authenticated user holds privilege.
func HasPrivilege(c *fiber.Ctx, privilege string) bool {
	privileges, _ := c.Locals(LocalPrivileges).([]string)
	for _, p := range privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
