package models

// InboundEvent is the normalized view of one Zalo webhook payload.
// It is built per call and never persisted.
type InboundEvent struct {
	SenderID       string `json:"sender_id"`
	ConversationID string `json:"conversation_id"`
	CommandText    string `json:"command_text"` // trimmed, original casing kept for logs
	HasImage       bool   `json:"has_image"`
}
