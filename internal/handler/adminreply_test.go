package handler

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// adminReply builds an admin message replying to a previously relayed one.
func adminReply(replyToID, messageID int, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: messageID,
			Text:      text,
			From:      &tgbotapi.User{ID: testAdminID, FirstName: "Admin"},
			Chat:      &tgbotapi.Chat{ID: testAdminID},
			ReplyToMessage: &tgbotapi.Message{
				MessageID: replyToID,
				Chat:      &tgbotapi.Chat{ID: testAdminID},
			},
		},
	}
}

func TestAdminReplyHandler_CanHandle(t *testing.T) {
	h := NewAdminReplyHandler(nil, testAdminID)

	tests := []struct {
		name     string
		update   tgbotapi.Update
		expected bool
	}{
		{
			name:     "handles admin reply",
			update:   adminReply(100, 101, "on my way"),
			expected: true,
		},
		{
			name:     "ignores admin message without reply",
			update:   guestMessage(testAdminID, 1, "hello"),
			expected: false,
		},
		{
			name: "ignores guest replies",
			update: func() tgbotapi.Update {
				u := adminReply(100, 101, "hi")
				u.Message.From.ID = 1
				return u
			}(),
			expected: false,
		},
		{
			name: "ignores admin command replies",
			update: func() tgbotapi.Update {
				u := adminReply(100, 101, "/ban")
				u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 4}}
				return u
			}(),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.CanHandle(tt.update); got != tt.expected {
				t.Errorf("CanHandle() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// Scenario: the admin replies to a relayed message; the guest receives a
// copy and the admin gets a delivery acknowledgment.
func TestAdminReplyHandler_DeliversToGuest(t *testing.T) {
	users, mappings, _ := setupRepos(t)
	readyUser(t, users, 1, "en")
	if err := mappings.Record(100, 1, 7); err != nil {
		t.Fatalf("Failed to record mapping: %v", err)
	}

	h := NewAdminReplyHandler(mappings, testAdminID)
	api := &fakeAPI{}

	h.Handle(api, adminReply(100, 101, "on my way"))

	if len(api.copies) != 1 {
		t.Fatalf("Expected 1 copy to the guest, got %d", len(api.copies))
	}
	cp := api.copies[0]
	if cp.ChatID != 1 {
		t.Errorf("Copy must target the original guest, got chat %d", cp.ChatID)
	}
	if cp.FromChatID != testAdminID || cp.MessageID != 101 {
		t.Errorf("Copy must reference the admin's reply, got %+v", cp)
	}

	msgs := api.sentMessages()
	if len(msgs) != 1 || msgs[0].Text != replySentText {
		t.Fatalf("Expected delivery acknowledgment, got %+v", msgs)
	}
}

// Scenario: replying to a message with no recorded mapping yields the
// not-found notice instead of silence.
func TestAdminReplyHandler_UnmappedReply(t *testing.T) {
	_, mappings, _ := setupRepos(t)

	h := NewAdminReplyHandler(mappings, testAdminID)
	api := &fakeAPI{}

	h.Handle(api, adminReply(555, 556, "who was this?"))

	if len(api.copies) != 0 {
		t.Error("Nothing must be forwarded for an unmapped reply")
	}
	msgs := api.sentMessages()
	if len(msgs) != 1 || msgs[0].Text != replyNotFoundText {
		t.Fatalf("Expected not-found notice, got %+v", msgs)
	}
}

// Delivery failures (e.g. the guest blocked the bot) are reported to the
// admin with the reason instead of being dropped.
func TestAdminReplyHandler_DeliveryFailureNotice(t *testing.T) {
	users, mappings, _ := setupRepos(t)
	readyUser(t, users, 1, "en")
	if err := mappings.Record(100, 1, 7); err != nil {
		t.Fatalf("Failed to record mapping: %v", err)
	}

	h := NewAdminReplyHandler(mappings, testAdminID)
	api := &fakeAPI{copyErr: errors.New("bot was blocked by the user")}

	h.Handle(api, adminReply(100, 101, "hello"))

	msgs := api.sentMessages()
	if len(msgs) != 1 {
		t.Fatalf("Expected failure notice, got %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "blocked by the user") {
		t.Errorf("Notice must carry the failure reason, got %q", msgs[0].Text)
	}
}
