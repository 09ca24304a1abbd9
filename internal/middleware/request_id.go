package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with an X-Request-Id, generating one when the
// client did not supply it. The id is echoed in the response and stored in
// locals for log correlation.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("X-Request-Id", reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	}
}
