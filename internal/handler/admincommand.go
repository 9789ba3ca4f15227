package handler

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/artur/relay-bot/internal/bot"
	"github.com/artur/relay-bot/internal/database/repository"
)

const adminHelpText = `Available commands:
/stats — usage totals
/ban — block the sender (reply to a relayed message)
/unban — unblock the sender (reply to a relayed message)
/help — this message`

// AdminCommandHandler serves the admin's moderation and inspection commands.
// Ban targets are addressed by replying to a relayed message, reusing the
// same correlation admin replies go through.
type AdminCommandHandler struct {
	users       *repository.UserRepository
	mappings    *repository.MappingRepository
	stats       *repository.StatsRepository
	adminChatID int64
}

func NewAdminCommandHandler(
	users *repository.UserRepository,
	mappings *repository.MappingRepository,
	stats *repository.StatsRepository,
	adminChatID int64,
) *AdminCommandHandler {
	return &AdminCommandHandler{
		users:       users,
		mappings:    mappings,
		stats:       stats,
		adminChatID: adminChatID,
	}
}

func (h *AdminCommandHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil &&
		update.Message.From != nil &&
		update.Message.From.ID == h.adminChatID &&
		update.Message.IsCommand()
}

func (h *AdminCommandHandler) Handle(api bot.API, update tgbotapi.Update) {
	msg := update.Message

	switch msg.Command() {
	case "stats":
		h.handleStats(api)
	case "ban":
		h.handleBlock(api, msg, true)
	case "unban":
		h.handleBlock(api, msg, false)
	default:
		h.notify(api, adminHelpText)
	}
}

func (h *AdminCommandHandler) handleStats(api bot.API) {
	stats, err := h.stats.Snapshot()
	if err != nil {
		log.Error().Err(err).Msg("failed to read stats")
		h.notify(api, "⚠️ Could not read stats.")
		return
	}

	h.notify(api, fmt.Sprintf(
		"📊 Users: %d (verified %d, blocked %d)\n📨 Relayed messages: %d",
		stats.TotalUsers, stats.VerifiedUsers, stats.BlockedUsers, stats.RelayedMessages,
	))
}

func (h *AdminCommandHandler) handleBlock(api bot.API, msg *tgbotapi.Message, block bool) {
	if msg.ReplyToMessage == nil {
		h.notify(api, "Reply to a relayed message to use this command.")
		return
	}

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

	if block {
		err = h.users.Block(mapping.SourceUserID)
	} else {
		err = h.users.Unblock(mapping.SourceUserID)
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", mapping.SourceUserID).Msg("failed to update block state")
		h.notify(api, "⚠️ Could not update the user.")
		return
	}

	action := "unblocked"
	if block {
		action = "blocked"
	}
	log.Info().Int64("user_id", mapping.SourceUserID).Str("action", action).Msg("block state changed")
	h.notify(api, fmt.Sprintf("✅ User %d %s.", mapping.SourceUserID, action))
}

func (h *AdminCommandHandler) notify(api bot.API, text string) {
	if _, err := api.Send(tgbotapi.NewMessage(h.adminChatID, text)); err != nil {
		log.Error().Err(err).Msg("failed to notify admin")
	}
}
