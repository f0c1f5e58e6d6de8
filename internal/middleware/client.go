package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const ClientIDKey = "clientID"

// EnsureClientID requires every request to identify the device driving the
// clock, via the X-Client-ID header or the clientId query parameter.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(ClientIDKey) != nil {
			return c.Next()
		}

		clientID := c.Get("X-Client-ID")
		if clientID == "" {
			clientID = c.Query("clientId")
		}

		if clientID == "" {
			log.Debug().Str("path", c.Path()).Msg("request without client id")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Client ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals(ClientIDKey, clientID)
		return c.Next()
	}
}
