package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"minutesapi/internal/service"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request has an ID.
//
// Behavior:
// - Reads X-Request-ID from the incoming request header, generating a UUID if missing.
// - Stores it in Fiber locals under RequestIDLocalKey and echoes it in the response header.
// - Uses it as the pipeline run ID, so stage logs and request logs correlate.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(service.WithRunID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}
