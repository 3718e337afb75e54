package services

import (
	"fmt"
	"log"
	"os"

	"github.com/go-resty/resty/v2"
)

// zaloMessageEndpoint is the OA message API used for all outbound texts
const zaloMessageEndpoint = "https://openapi.zalo.me/v2.0/oa/message"

var zaloServiceInstance *ZaloService

// SetZaloService sets the global Zalo service instance
func SetZaloService(z *ZaloService) {
	zaloServiceInstance = z
}

// GetZaloService returns the global Zalo service instance
func GetZaloService() *ZaloService {
	return zaloServiceInstance
}

// Notifier delivers plain-text messages to a conversation or a user.
// Delivery is best effort: callers must tolerate failures.
type Notifier interface {
	SendToConversation(conversationID, text string) error
	SendToUser(userID, text string) error
}

// ZaloService sends messages through the Zalo OA API
type ZaloService struct {
	client   *resty.Client
	token    string
	endpoint string
}

// NewZaloService creates a Zalo service from environment config.
// A missing token is not fatal: sending degrades to a warning no-op.
func NewZaloService() *ZaloService {
	token := os.Getenv("ZALO_OA_TOKEN")
	if token == "" {
		log.Println("⚠️  ZALO_OA_TOKEN not set - outbound messages will be dropped")
	}
	return newZaloService(token, zaloMessageEndpoint)
}

func newZaloService(token, endpoint string) *ZaloService {
	return &ZaloService{
		client:   resty.New(),
		token:    token,
		endpoint: endpoint,
	}
}

// SendToConversation sends a text message to a group conversation
func (z *ZaloService) SendToConversation(conversationID, text string) error {
	return z.send(map[string]any{"conversation_id": conversationID}, text)
}

// SendToUser sends a text message directly to a user
func (z *ZaloService) SendToUser(userID, text string) error {
	return z.send(map[string]any{"user_id": userID}, text)
}

func (z *ZaloService) send(recipient map[string]any, text string) error {
	if z.token == "" {
		log.Println("⚠️  No OA token, message not sent")
		return nil
	}

	body := map[string]any{
		"recipient": recipient,
		"message":   map[string]any{"text": text},
	}

	resp, err := z.client.R().
		SetHeader("access_token", z.token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(z.endpoint)
	if err != nil {
		log.Printf("❌ Failed to send Zalo message: %v", err)
		return err
	}
	if resp.IsError() {
		log.Printf("❌ Zalo API returned %d: %s", resp.StatusCode(), resp.String())
		return fmt.Errorf("zalo API status %d", resp.StatusCode())
	}
	return nil
}
