package services

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/bjo0vj/zalo-image-bot/internal/models"
	"github.com/bjo0vj/zalo-image-bot/internal/storage"
)

var menuText = strings.Join([]string{
	"📜 *Menu lệnh*",
	"!count -> Bắt đầu đếm người gửi ảnh.",
	"!setsonguoi:<số> -> Đặt mục tiêu số người.",
	"!status -> Xem trạng thái bot.",
}, "\n")

// BotService owns the counting session and processes normalized
// events. All session access is serialized through one mutex; reply
// texts are computed from in-lock snapshots and sent after release so
// the lock is never held across network I/O.
type BotService struct {
	mu       sync.Mutex
	session  *models.CountingSession
	store    storage.Store
	notifier Notifier
	adminID  string
}

// NewBotService loads the persisted session (or defaults) and wires
// the store and notifier
func NewBotService(store storage.Store, notifier Notifier) *BotService {
	session, err := store.LoadSession()
	if err != nil {
		log.Printf("⚠️  Could not load session, using default state: %v", err)
		session = models.NewCountingSession()
	}
	log.Printf("Loaded state: counting=%t target=%d counted=%d",
		session.Counting, session.TargetCount, len(session.CountedUsers))

	return &BotService{
		session:  session,
		store:    store,
		notifier: notifier,
		adminID:  os.Getenv("ZALO_ADMIN_ID"),
	}
}

// ProcessPayload normalizes and handles one raw webhook payload
func (b *BotService) ProcessPayload(payload map[string]any) {
	b.HandleEvent(ParseInboundEvent(payload))
}

// HandleEvent runs one event through the command interpreter and,
// when no command matched, through the counting engine. Commands
// short-circuit: an event is never both a command and a counted image.
func (b *BotService) HandleEvent(event models.InboundEvent) {
	text := strings.ToLower(event.CommandText)
	if text != "" && b.handleCommand(event, text) {
		return
	}
	b.handleImage(event)
}

// handleCommand matches the fixed command set, first match wins.
// It returns false when the text is not a known command.
func (b *BotService) handleCommand(event models.InboundEvent, text string) bool {
	switch {
	case text == "!menu":
		b.reply(event, menuText)
		return true

	case strings.HasPrefix(text, "!setsonguoi:"):
		b.handleSetTarget(event, strings.TrimPrefix(text, "!setsonguoi:"))
		return true

	case text == "!count":
		b.handleStartCount(event)
		return true

	case text == "!status":
		b.handleStatus(event)
		return true
	}
	return false
}

func (b *BotService) handleSetTarget(event models.InboundEvent, raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		b.reply(event, "⚠️ Giá trị không hợp lệ. Dùng: !setsonguoi:<số nguyên dương>")
		return
	}

	b.mu.Lock()
	b.session.TargetCount = n
	b.persistLocked()
	b.mu.Unlock()

	b.reply(event, fmt.Sprintf("✅ Mục tiêu đã được đặt thành %d người.", n))
}

// handleStartCount always resets the run, even when one is active
func (b *BotService) handleStartCount(event models.InboundEvent) {
	b.mu.Lock()
	b.session.Counting = true
	b.session.CountedUsers = []string{}
	b.persistLocked()
	target := b.session.TargetCount
	b.mu.Unlock()

	b.reply(event, fmt.Sprintf("🔔 Đã bật chế độ đếm. Mục tiêu: %d người.", target))
}

func (b *BotService) handleStatus(event models.InboundEvent) {
	b.mu.Lock()
	msg := fmt.Sprintf("Status: counting=%t, target=%d, current=%d",
		b.session.Counting, b.session.TargetCount, len(b.session.CountedUsers))
	b.mu.Unlock()

	b.reply(event, msg)
}

// handleImage is the counting state machine. The common case (not
// counting, no image, unknown sender, repeat sender) drops the event
// without side effects.
func (b *BotService) handleImage(event models.InboundEvent) {
	if !event.HasImage || event.SenderID == "" {
		return
	}

	b.mu.Lock()
	if !b.session.Counting || b.session.HasCounted(event.SenderID) {
		b.mu.Unlock()
		return
	}

	b.session.CountedUsers = append(b.session.CountedUsers, event.SenderID)
	b.persistLocked()

	current := len(b.session.CountedUsers)
	target := b.session.TargetCount
	reached := current >= target
	if reached {
		b.session.Counting = false
		b.persistLocked()
	}
	b.mu.Unlock()

	b.reply(event, fmt.Sprintf("📸 Ghi nhận: +1 người gửi ảnh. Hiện: %d/%d", current, target))
	if reached {
		done := fmt.Sprintf("🎉 ĐÃ ĐỦ: %d/%d người.", current, target)
		if b.adminID != "" {
			done = fmt.Sprintf("%s @%s", done, b.adminID)
		}
		b.reply(event, done)
	}
}

// Snapshot returns a copy of the current session for read-only use
func (b *BotService) Snapshot() *models.CountingSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Clone()
}

// persistLocked saves the session; callers hold b.mu. Persistence is
// best effort: the in-memory session stays authoritative on failure.
func (b *BotService) persistLocked() {
	if err := b.store.SaveSession(b.session); err != nil {
		log.Printf("❌ Failed to save session: %v", err)
	}
}

// reply sends to the conversation when known, falls back to a direct
// message, and silently drops when neither destination exists
func (b *BotService) reply(event models.InboundEvent, text string) {
	var err error
	switch {
	case event.ConversationID != "":
		err = b.notifier.SendToConversation(event.ConversationID, text)
	case event.SenderID != "":
		err = b.notifier.SendToUser(event.SenderID, text)
	default:
		return
	}
	if err != nil {
		log.Printf("❌ Failed to send reply: %v", err)
	}
}
