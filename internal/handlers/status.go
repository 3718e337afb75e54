package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bjo0vj/zalo-image-bot/internal/services"
)

// StatusHandler reports the current counting session
type StatusHandler struct {
	bot *services.BotService
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(bot *services.BotService) *StatusHandler {
	return &StatusHandler{bot: bot}
}

// Status returns a JSON snapshot of the session
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	session := h.bot.Snapshot()
	return c.JSON(fiber.Map{
		"counting":     session.Counting,
		"targetCount":  session.TargetCount,
		"countedUsers": len(session.CountedUsers),
		"users":        session.CountedUsers,
	})
}
