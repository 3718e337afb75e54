package services

import (
	"strconv"
	"strings"

	"github.com/bjo0vj/zalo-image-bot/internal/models"
)

// ParseInboundEvent normalizes a raw webhook payload into an
// InboundEvent. The Zalo payload shape varies across message types and
// platform versions, so every field is resolved through an ordered
// chain of candidate keys. Malformed or partial payloads never fail:
// unresolvable fields stay at their zero value.
func ParseInboundEvent(payload map[string]any) models.InboundEvent {
	message := mapField(payload, "message")
	if message == nil {
		message = mapField(payload, "data")
	}
	if message == nil {
		message = map[string]any{}
	}

	return models.InboundEvent{
		SenderID:       resolveSender(payload, message),
		ConversationID: resolveConversation(payload, message),
		CommandText:    resolveText(message),
		HasImage:       detectImage(message),
	}
}

func resolveSender(payload, message map[string]any) string {
	if id := nestedID(payload, "sender"); id != "" {
		return id
	}
	if id := nestedID(message, "from"); id != "" {
		return id
	}
	return nestedID(message, "sender")
}

func resolveConversation(payload, message map[string]any) string {
	if id := stringField(message, "conversation_id"); id != "" {
		return id
	}
	if id := stringField(payload, "conversation_id"); id != "" {
		return id
	}
	if id := stringField(payload, "conversationId"); id != "" {
		return id
	}
	if id := nestedID(message, "conversation"); id != "" {
		return id
	}
	return stringField(mapField(payload, "metadata"), "conversation_id")
}

func resolveText(message map[string]any) string {
	text := stringField(message, "text")
	if text == "" {
		text = stringField(message, "message")
	}
	return strings.TrimSpace(text)
}

// detectImage checks the known attachment shapes in priority order:
// an attachments array (directly on the message or under payload),
// a direct image object, then an items array.
func detectImage(message map[string]any) bool {
	attachments := sliceField(message, "attachments")
	if attachments == nil {
		attachments = sliceField(mapField(message, "payload"), "attachments")
	}
	for _, raw := range attachments {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		kind := strings.ToLower(stringField(entry, "type"))
		if strings.Contains(kind, "image") ||
			stringField(entry, "image_url") != "" ||
			stringField(entry, "url") != "" {
			return true
		}
	}

	if stringField(mapField(message, "image"), "url") != "" {
		return true
	}

	for _, raw := range sliceField(message, "items") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		kind := strings.ToLower(stringField(entry, "type"))
		if strings.Contains(kind, "image") || stringField(entry, "image_url") != "" {
			return true
		}
	}
	return false
}

func mapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	value, _ := m[key].(map[string]any)
	return value
}

func sliceField(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	value, _ := m[key].([]any)
	return value
}

// stringField returns the value under key as a string. Numeric ids are
// common in Zalo payloads, so JSON numbers are formatted rather than
// dropped.
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch value := m[key].(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	default:
		return ""
	}
}

// nestedID returns m[key].id as a string
func nestedID(m map[string]any, key string) string {
	return stringField(mapField(m, key), "id")
}
