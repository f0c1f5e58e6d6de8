package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/middleware"
)

// RegisterRoutes mounts the REST and WebSocket endpoints. origins limits which
// pages may open a clock socket; empty allows any.
func RegisterRoutes(app *fiber.App, cc *ClockController, wsc *WebSocketController, origins []string) {
	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/clock/:clockId", middleware.WebSocketUpgrade(), websocket.New(func(c *websocket.Conn) {
		log.Debug().Str("clock_id", c.Params("clockId")).Msg("websocket connection established")
		wsc.HandleConnection(c)
	}, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}))

	api := app.Group("/api", middleware.EnsureClientID())

	clockRoutes := api.Group("/clock")
	clockRoutes.Post("/create", cc.CreateClock)
	clockRoutes.Get("/:clockId", cc.GetClockState)
	clockRoutes.Delete("/:clockId", cc.RemoveClock)
	clockRoutes.Post("/:clockId/tap/:player", cc.TapSide)
	clockRoutes.Post("/:clockId/pause", cc.TogglePause)
	clockRoutes.Post("/:clockId/keypress", cc.KeyPress)
	clockRoutes.Post("/:clockId/reset", cc.Reset)
	clockRoutes.Post("/:clockId/settings/open", cc.OpenSettings)
	clockRoutes.Post("/:clockId/settings/close", cc.CloseSettings)
	clockRoutes.Put("/:clockId/settings", cc.UpdateSettings)
}
