package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bjo0vj/zalo-image-bot/internal/handlers"
	"github.com/bjo0vj/zalo-image-bot/internal/services"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, bot *services.BotService) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Zalo image count bot",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"status":  "/status",
				"webhook": "/webhook",
			},
		})
	})

	// Liveness probe
	app.Get("/health", handlers.Health)

	// Session snapshot
	app.Get("/status", handlers.NewStatusHandler(bot).Status)

	// Zalo webhook
	app.Post("/webhook", handlers.NewWebhookHandler(bot).HandleWebhook)
}
