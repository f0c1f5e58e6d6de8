package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ClockIDKey is the locals key holding the clock a socket is bound to.
const ClockIDKey = "wsClockID"

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid WebSocket connection attempts.
// It also checks that the clock and client are known before allowing the upgrade.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		clockID := c.Params("clockId")
		if clockID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "clock ID is required",
			})
		}

		// Set by EnsureClientID
		if c.Locals(ClientIDKey) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "client ID is required",
			})
		}

		// The connection context is different from the upgrade context, so
		// carry the ids across in locals.
		c.Locals(ClockIDKey, clockID)
		return c.Next()
	}
}
