package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/exam-portal-api/internal/utils"
)

// Auth role constants used by the WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = "admin"
	AuthRoleTeacher = "teacher"
	AuthRoleStudent = "student"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with authentication and role guards. Teachers and
// admins share the authoring surface, so AuthRoleTeacher admits both; the
// admin and student surfaces are exclusive to their role.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser
	if !requireUser && role != AuthRoleAny {
		requireUser = true
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role == AuthRoleAny {
			if !requireUser || userID != nil {
				return handler(c)
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		switch role {
		case AuthRoleStudent:
			if currentRole != AuthRoleStudent {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		case AuthRoleTeacher:
			if currentRole != AuthRoleTeacher && currentRole != AuthRoleAdmin {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		case AuthRoleAdmin:
			if currentRole != AuthRoleAdmin {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		default:
			if currentRole != role {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		}

		return handler(c)
	}
}
