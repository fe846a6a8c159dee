package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// RateLimit allows max requests per window for each caller of the routes it
// guards. Authenticated callers are keyed by user id. Anonymous callers are
// keyed by IP and, when the JSON body names one, by username, so that login
// attempts against one account are throttled separately.
func RateLimit(scope string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: func(c *fiber.Ctx) string { return scope + ":" + rateLimitKey(c) },
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusTooManyRequests, "too many requests", fiber.Map{
				"retry_after_seconds": int(window.Seconds()),
			})
		},
	})
}

func rateLimitKey(c *fiber.Ctx) string {
	if identity, ok := IdentityFromContext(c); ok {
		return "user:" + identity.UserID
	}
	key := "ip:" + c.IP()

	var body struct {
		Username string `json:"username"`
	}
	if len(c.Body()) > 0 && json.Unmarshal(c.Body(), &body) == nil {
		if username := strings.ToLower(strings.TrimSpace(body.Username)); username != "" {
			key += ":" + username
		}
	}
	return key
}
