package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Correlation headers, in lookup order.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"

	// LocalCorrelationID holds the request's correlation identifier.
	LocalCorrelationID = "correlation_id"

	maxCorrelationIDLength = 128
)

// CorrelationID tags every request with an identifier, reusing a well-formed
// incoming X-Correlation-ID or X-Request-ID and otherwise minting a UUID. The
// identifier is echoed on the response and stamped on logs and audit events.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(HeaderCorrelationID, id)
		return c.Next()
	}
}

func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range []string{HeaderCorrelationID, HeaderRequestID} {
		value := strings.TrimSpace(c.Get(header))
		if value == "" || len(value) > maxCorrelationIDLength {
			continue
		}
		if strings.ContainsFunc(value, func(r rune) bool { return r < 0x21 || r > 0x7e }) {
			continue
		}
		return value
	}
	return ""
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	id, _ := c.Locals(LocalCorrelationID).(string)
	return id
}
