package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   string
	Role     string
	Username string
	FullName string
}

// IdentityFromContext returns the caller resolved by JWTProtected. The
// boolean is false for anonymous requests.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	if c == nil {
		return Identity{}, false
	}
	userID := localString(c, LocalUserID)
	if userID == "" {
		return Identity{}, false
	}
	return Identity{
		UserID:   userID,
		Role:     normalizeRoleValue(c.Locals(LocalUserRole)),
		Username: localString(c, LocalUsername),
		FullName: localString(c, LocalFullName),
	}, true
}

func localString(c *fiber.Ctx, key string) string {
	if value, ok := c.Locals(key).(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
