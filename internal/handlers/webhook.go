package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bjo0vj/zalo-image-bot/internal/services"
)

// WebhookHandler handles Zalo webhook requests
type WebhookHandler struct {
	bot *services.BotService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(bot *services.BotService) *WebhookHandler {
	return &WebhookHandler{bot: bot}
}

// HandleWebhook acknowledges the platform immediately and processes
// the payload off the request path. The 200 response never waits on
// notification or persistence I/O, and a malformed body is not an
// error: the platform retries on non-2xx, which we never want.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		log.Printf("⚠️  Ignoring unparseable webhook body: %v", err)
		payload = nil
	}

	if payload != nil {
		go h.bot.ProcessPayload(payload)
	}
	return c.SendString("OK")
}
