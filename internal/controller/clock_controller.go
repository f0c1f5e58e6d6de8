package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/middleware"
	"github.com/benbeisheim/chessclock/internal/model"
	"github.com/benbeisheim/chessclock/internal/service"
)

type ClockController struct {
	clockService *service.ClockService
}

func NewClockController(clockService *service.ClockService) *ClockController {
	return &ClockController{clockService: clockService}
}

// CreateClock starts a clock. An optional JSON Settings body overrides the
// configured defaults field by field.
func (cc *ClockController) CreateClock(c *fiber.Ctx) error {
	var settings *model.Settings
	if len(c.Body()) > 0 {
		s := cc.clockService.DefaultSettings()
		if err := c.BodyParser(&s); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, err)
		}
		settings = &s
	}

	clockID, err := cc.clockService.CreateClock(settings)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err)
	}

	log.Info().
		Str("clock_id", clockID).
		Str("client_id", c.Locals(middleware.ClientIDKey).(string)).
		Msg("clock created for client")

	return c.JSON(fiber.Map{
		"message":  "Clock created",
		"clock_id": clockID,
	})
}

func (cc *ClockController) GetClockState(c *fiber.Ctx) error {
	state, err := cc.clockService.GetClockState(c.UserContext(), c.Params("clockId"))
	if err != nil {
		return errorResponse(c, statusFor(err), err)
	}
	return c.JSON(state)
}

func (cc *ClockController) RemoveClock(c *fiber.Ctx) error {
	if err := cc.clockService.RemoveClock(c.Params("clockId")); err != nil {
		return errorResponse(c, statusFor(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (cc *ClockController) TapSide(c *fiber.Ctx) error {
	player, err := model.ParsePlayer(c.Params("player"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	return cc.respond(c, model.TapSide(player))
}

func (cc *ClockController) TogglePause(c *fiber.Ctx) error {
	return cc.respond(c, model.TogglePause())
}

func (cc *ClockController) KeyPress(c *fiber.Ctx) error {
	return cc.respond(c, model.KeyPress())
}

func (cc *ClockController) Reset(c *fiber.Ctx) error {
	return cc.respond(c, model.Reset())
}

func (cc *ClockController) OpenSettings(c *fiber.Ctx) error {
	return cc.respond(c, model.OpenSettings())
}

func (cc *ClockController) CloseSettings(c *fiber.Ctx) error {
	return cc.respond(c, model.CloseSettings())
}

// UpdateSettings merges the body over the clock's current settings, so fields
// left out keep their values.
func (cc *ClockController) UpdateSettings(c *fiber.Ctx) error {
	state, err := cc.clockService.GetClockState(c.UserContext(), c.Params("clockId"))
	if err != nil {
		return errorResponse(c, statusFor(err), err)
	}

	settings := state.Settings
	if err := c.BodyParser(&settings); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	return cc.respond(c, model.ChangeSettings(settings))
}

func (cc *ClockController) respond(c *fiber.Ctx, ev model.Event) error {
	state, err := cc.clockService.HandleEvent(c.UserContext(), c.Params("clockId"), ev)
	if err != nil {
		return errorResponse(c, statusFor(err), err)
	}
	return c.JSON(state)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrClockNotFound), errors.Is(err, service.ErrSessionClosed):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrSettingsClosed):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidPlayer), errors.Is(err, model.ErrUnknownEvent):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
