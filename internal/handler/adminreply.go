package handler

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/artur/relay-bot/internal/bot"
	"github.com/artur/relay-bot/internal/database/repository"
)

const (
	replySentText     = "✅ Reply delivered."
	replyNotFoundText = "⚠️ Could not find the original sender for that message."
)

// AdminReplyHandler routes an admin reply back to the guest whose message it
// answers, resolved through the relay correlation.
type AdminReplyHandler struct {
	mappings    *repository.MappingRepository
	adminChatID int64
}

func NewAdminReplyHandler(mappings *repository.MappingRepository, adminChatID int64) *AdminReplyHandler {
	return &AdminReplyHandler{
		mappings:    mappings,
		adminChatID: adminChatID,
	}
}

func (h *AdminReplyHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil &&
		update.Message.From != nil &&
		update.Message.From.ID == h.adminChatID &&
		update.Message.ReplyToMessage != nil &&
		!update.Message.IsCommand()
}

func (h *AdminReplyHandler) Handle(api bot.API, update tgbotapi.Update) {
	msg := update.Message

	mapping, err := h.mappings.Resolve(msg.ReplyToMessage.MessageID)
	if errors.Is(err, repository.ErrNotFound) {
		h.notify(api, replyNotFoundText)
		return
	}
	if err != nil {
		log.Error().Err(err).Int("relay_id", msg.ReplyToMessage.MessageID).Msg("failed to resolve mapping")
		h.notify(api, "⚠️ Lookup failed, please try again.")
		return
	}

	// Copy rather than forward so the reply arrives under the bot identity.
	cp := tgbotapi.NewCopyMessage(mapping.SourceUserID, msg.Chat.ID, msg.MessageID)
	if _, err := api.CopyMessage(cp); err != nil {
		log.Warn().Err(err).
			Int64("user_id", mapping.SourceUserID).
			Msg("failed to deliver admin reply")
		h.notify(api, "❌ Could not deliver the reply: "+err.Error())
		return
	}

	log.Info().
		Int64("user_id", mapping.SourceUserID).
		Int("relay_id", mapping.RelayMessageID).
		Msg("admin reply delivered")
	h.notify(api, replySentText)
}

func (h *AdminReplyHandler) notify(api bot.API, text string) {
	if _, err := api.Send(tgbotapi.NewMessage(h.adminChatID, text)); err != nil {
		log.Error().Err(err).Msg("failed to notify admin")
	}
}
