package middleware

import (
	"time"

	contextPkg "VoiceAssistant/pkg/context"
	"VoiceAssistant/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = contextPkg.HeaderRequestID

// newRequestIDMiddleware keeps a caller-supplied X-Request-ID and mints a ULID
// otherwise. The id is echoed back on the response.
func newRequestIDMiddleware(u utils.IUtils) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if requestID == "" {
			requestID, _ = u.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
