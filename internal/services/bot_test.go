package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/bjo0vj/zalo-image-bot/internal/models"
	"github.com/bjo0vj/zalo-image-bot/internal/storage"
)

type sentMessage struct {
	dest string // "conversation" or "user"
	id   string
	text string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (f *fakeNotifier) SendToConversation(conversationID, text string) error {
	return f.record("conversation", conversationID, text)
}

func (f *fakeNotifier) SendToUser(userID, text string) error {
	return f.record("user", userID, text)
}

func (f *fakeNotifier) record(dest, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{dest: dest, id: id, text: text})
	if f.fail {
		return fmt.Errorf("delivery failed")
	}
	return nil
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func newTestBot(t *testing.T) (*BotService, *storage.MemoryStore, *fakeNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	notifier := &fakeNotifier{}
	return NewBotService(store, notifier), store, notifier
}

func groupText(sender, text string) models.InboundEvent {
	return models.InboundEvent{SenderID: sender, ConversationID: "conv1", CommandText: text}
}

func groupImage(sender string) models.InboundEvent {
	return models.InboundEvent{SenderID: sender, ConversationID: "conv1", HasImage: true}
}

func TestCountScenarioToTarget(t *testing.T) {
	bot, store, notifier := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!setsonguoi:2"))
	bot.HandleEvent(groupText("admin", "!count"))

	bot.HandleEvent(groupImage("u1"))
	snap := bot.Snapshot()
	if !snap.Counting {
		t.Error("expected counting to stay active below target")
	}
	if len(snap.CountedUsers) != 1 || snap.CountedUsers[0] != "u1" {
		t.Errorf("CountedUsers = %v, want [u1]", snap.CountedUsers)
	}

	// Same sender again: idempotent, no extra notification
	before := len(notifier.messages())
	bot.HandleEvent(groupImage("u1"))
	snap = bot.Snapshot()
	if len(snap.CountedUsers) != 1 {
		t.Errorf("duplicate sender counted: %v", snap.CountedUsers)
	}
	if got := len(notifier.messages()); got != before {
		t.Errorf("duplicate sender triggered %d notifications", got-before)
	}

	// Second distinct sender reaches the target
	bot.HandleEvent(groupImage("u2"))
	snap = bot.Snapshot()
	if snap.Counting {
		t.Error("expected counting=false after target reached")
	}
	if len(snap.CountedUsers) != 2 {
		t.Errorf("CountedUsers = %v, want [u1 u2]", snap.CountedUsers)
	}

	msgs := notifier.messages()
	if len(msgs) < 2 {
		t.Fatalf("expected progress and completion notifications, got %d", len(msgs))
	}
	progress := msgs[len(msgs)-2]
	completion := msgs[len(msgs)-1]
	if !strings.Contains(progress.text, "2/2") {
		t.Errorf("progress notification = %q, want 2/2", progress.text)
	}
	if !strings.Contains(completion.text, "ĐÃ ĐỦ") {
		t.Errorf("completion notification = %q", completion.text)
	}

	// Frozen after completion: further images are ignored
	bot.HandleEvent(groupImage("u3"))
	snap = bot.Snapshot()
	if len(snap.CountedUsers) != 2 {
		t.Errorf("session mutated after completion: %v", snap.CountedUsers)
	}

	// Persisted state matches the in-memory session
	persisted, err := store.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if persisted.Counting || len(persisted.CountedUsers) != 2 {
		t.Errorf("persisted session = %+v", persisted)
	}
}

func TestCountRestartsActiveRun(t *testing.T) {
	bot, _, _ := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!setsonguoi:5"))
	bot.HandleEvent(groupText("admin", "!count"))
	bot.HandleEvent(groupImage("u1"))
	bot.HandleEvent(groupImage("u2"))

	bot.HandleEvent(groupText("admin", "!count"))
	snap := bot.Snapshot()
	if !snap.Counting {
		t.Error("expected counting=true after restart")
	}
	if len(snap.CountedUsers) != 0 {
		t.Errorf("expected empty CountedUsers after restart, got %v", snap.CountedUsers)
	}
}

func TestCommandShortCircuitsImage(t *testing.T) {
	bot, _, _ := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!count"))

	// Command text plus an attached image: only the command runs
	event := groupImage("u1")
	event.CommandText = "!status"
	bot.HandleEvent(event)

	if got := bot.Snapshot().CountedUsers; len(got) != 0 {
		t.Errorf("command event was also counted: %v", got)
	}
}

func TestSetTargetRejectsBadValues(t *testing.T) {
	tests := []string{
		"!setsonguoi:abc",
		"!setsonguoi:0",
		"!setsonguoi:-3",
		"!setsonguoi:",
	}

	for _, cmd := range tests {
		t.Run(cmd, func(t *testing.T) {
			bot, _, notifier := newTestBot(t)

			bot.HandleEvent(groupText("admin", cmd))

			if got := bot.Snapshot().TargetCount; got != models.DefaultTargetCount {
				t.Errorf("TargetCount = %d, want unchanged %d", got, models.DefaultTargetCount)
			}
			msgs := notifier.messages()
			if len(msgs) != 1 {
				t.Fatalf("expected one format-error reply, got %d", len(msgs))
			}
			if !strings.Contains(msgs[0].text, "không hợp lệ") {
				t.Errorf("reply = %q, want format error", msgs[0].text)
			}
		})
	}
}

func TestSetTargetThenStatus(t *testing.T) {
	bot, _, notifier := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!setsonguoi:5"))
	bot.HandleEvent(groupText("admin", "!status"))

	msgs := notifier.messages()
	status := msgs[len(msgs)-1]
	if !strings.Contains(status.text, "target=5") {
		t.Errorf("status reply = %q, want target=5", status.text)
	}
	if !strings.Contains(status.text, "counting=false") {
		t.Errorf("status reply = %q, want counting=false", status.text)
	}
}

func TestLoweringTargetMidCountDoesNotComplete(t *testing.T) {
	bot, _, _ := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!setsonguoi:5"))
	bot.HandleEvent(groupText("admin", "!count"))
	bot.HandleEvent(groupImage("u1"))
	bot.HandleEvent(groupImage("u2"))

	// Dropping the target below the current count does not itself end
	// the run; only the next qualifying image re-evaluates it
	bot.HandleEvent(groupText("admin", "!setsonguoi:1"))
	if snap := bot.Snapshot(); !snap.Counting {
		t.Fatal("target change alone ended the run")
	}

	bot.HandleEvent(groupImage("u3"))
	if snap := bot.Snapshot(); snap.Counting {
		t.Error("expected completion on next qualifying image")
	}
}

func TestMenuCommand(t *testing.T) {
	bot, _, notifier := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!menu"))
	bot.HandleEvent(groupText("admin", "!MENU")) // folding before matching

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected two menu replies, got %d", len(msgs))
	}
	for _, m := range msgs {
		if !strings.Contains(m.text, "!setsonguoi") {
			t.Errorf("menu reply = %q", m.text)
		}
	}
}

func TestReplyDestinationFallback(t *testing.T) {
	bot, _, notifier := newTestBot(t)

	// Conversation known: reply goes to the conversation
	bot.HandleEvent(models.InboundEvent{SenderID: "u1", ConversationID: "conv1", CommandText: "!status"})
	// Direct message: falls back to the sender
	bot.HandleEvent(models.InboundEvent{SenderID: "u1", CommandText: "!status"})
	// Neither: dropped silently
	bot.HandleEvent(models.InboundEvent{CommandText: "!status"})

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected two replies, got %d", len(msgs))
	}
	if msgs[0].dest != "conversation" || msgs[0].id != "conv1" {
		t.Errorf("first reply went to %s %q", msgs[0].dest, msgs[0].id)
	}
	if msgs[1].dest != "user" || msgs[1].id != "u1" {
		t.Errorf("second reply went to %s %q", msgs[1].dest, msgs[1].id)
	}
}

func TestImageDroppedWhenNotCounting(t *testing.T) {
	bot, _, notifier := newTestBot(t)

	bot.HandleEvent(groupImage("u1"))

	if got := bot.Snapshot().CountedUsers; len(got) != 0 {
		t.Errorf("image counted while idle: %v", got)
	}
	if got := len(notifier.messages()); got != 0 {
		t.Errorf("expected no notifications while idle, got %d", got)
	}
}

func TestImageWithoutSenderDropped(t *testing.T) {
	bot, _, _ := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!count"))
	bot.HandleEvent(models.InboundEvent{ConversationID: "conv1", HasImage: true})

	if got := bot.Snapshot().CountedUsers; len(got) != 0 {
		t.Errorf("anonymous image counted: %v", got)
	}
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	bot, _, notifier := newTestBot(t)
	notifier.fail = true

	bot.HandleEvent(groupText("admin", "!count"))
	bot.HandleEvent(groupImage("u1"))

	if got := bot.Snapshot().CountedUsers; len(got) != 1 {
		t.Errorf("failed delivery rolled back the count: %v", got)
	}
}

func TestCompletionMentionsAdmin(t *testing.T) {
	t.Setenv("ZALO_ADMIN_ID", "boss9")
	bot, _, notifier := newTestBot(t)

	bot.HandleEvent(groupText("admin", "!setsonguoi:1"))
	bot.HandleEvent(groupText("admin", "!count"))
	bot.HandleEvent(groupImage("u1"))

	msgs := notifier.messages()
	completion := msgs[len(msgs)-1]
	if !strings.Contains(completion.text, "@boss9") {
		t.Errorf("completion = %q, want admin mention", completion.text)
	}
}

func TestBotResumesPersistedSession(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.SaveSession(&models.CountingSession{
		TargetCount:  3,
		Counting:     true,
		CountedUsers: []string{"u1", "u2"},
	}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	bot := NewBotService(store, &fakeNotifier{})
	bot.HandleEvent(groupImage("u3"))

	snap := bot.Snapshot()
	if snap.Counting {
		t.Error("expected resumed run to complete at target")
	}
	if len(snap.CountedUsers) != 3 {
		t.Errorf("CountedUsers = %v", snap.CountedUsers)
	}
}
