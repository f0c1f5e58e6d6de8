package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benbeisheim/chessclock/internal/config"
	"github.com/benbeisheim/chessclock/internal/controller"
	"github.com/benbeisheim/chessclock/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: !slices.Contains(cfg.AllowOrigins, "*"),
	}))
	app.Use(func(c *fiber.Ctx) error {
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("incoming request")
		return c.Next()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	clockManager := service.NewClockManager(ctx, service.ManagerConfig{
		Defaults:    cfg.Clock,
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	clockService := service.NewClockService(clockManager)

	// Initialize controllers
	clockController := controller.NewClockController(clockService)
	wsController := controller.NewWebSocketController(clockService)

	controller.RegisterRoutes(app, clockController, wsController, cfg.AllowOrigins)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"clocks": clockManager.Count(),
		})
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("chess clock server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	clockManager.Close()

	log.Info().Msg("chess clock server stopped")
}
