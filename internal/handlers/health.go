package handlers

import "github.com/gofiber/fiber/v2"

// Health is the liveness probe used by the hosting platform
func Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
