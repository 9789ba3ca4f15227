package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/artur/relay-bot/internal/bot"
	"github.com/artur/relay-bot/internal/config"
	"github.com/artur/relay-bot/internal/database/models"
	"github.com/artur/relay-bot/internal/database/repository"
	"github.com/artur/relay-bot/internal/translator"
)

// captionLimit is Telegram's maximum caption length. Oversized captions are
// truncated to the limit with a trailing ellipsis.
const captionLimit = 1024

const deliveryFailedText = "⚠️ Your message could not be delivered. Please try again."

// contentKind is the exhaustive classification of a guest message.
type contentKind int

const (
	kindText  contentKind = iota // plain text
	kindMedia                    // single media payload, caption-capable
	kindOther                    // payloads that cannot carry a caption
)

// RelayHandler forwards guest messages to the admin and records the
// correlation that lets admin replies find their way back.
type RelayHandler struct {
	users       *repository.UserRepository
	mappings    *repository.MappingRepository
	translator  translator.Translator
	langs       []config.Language
	adminChatID int64
	adminLang   config.Language
}

func NewRelayHandler(
	users *repository.UserRepository,
	mappings *repository.MappingRepository,
	tr translator.Translator,
	langs []config.Language,
	adminChatID int64,
	adminLang config.Language,
) *RelayHandler {
	return &RelayHandler{
		users:       users,
		mappings:    mappings,
		translator:  tr,
		langs:       langs,
		adminChatID: adminChatID,
		adminLang:   adminLang,
	}
}

// CanHandle claims every non-command message from a guest. Onboarding gating
// happens inside Handle so that unverified guests get a prompt instead of
// silence.
func (h *RelayHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil &&
		update.Message.From != nil &&
		update.Message.From.ID != h.adminChatID &&
		!update.Message.IsCommand()
}

func (h *RelayHandler) Handle(api bot.API, update tgbotapi.Update) {
	msg := update.Message

	user, err := h.users.UpsertFromTelegram(msg.From)
	if err != nil {
		log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to upsert user")
		return
	}

	if user.IsBlocked {
		log.Debug().Int64("user_id", user.UserID).Msg("dropping message from blocked user")
		return
	}
	if !user.IsVerified {
		h.send(api, verificationPrompt(msg.Chat.ID), user.UserID)
		return
	}
	if user.Language == "" {
		h.send(api, languagePrompt(msg.Chat.ID, h.langs), user.UserID)
		return
	}

	header := relayHeader(user)

	var relayID int
	switch classify(msg) {
	case kindText:
		relayID, err = h.relayText(api, msg, header, user)
	case kindMedia:
		relayID, err = h.relayMedia(api, msg, header)
	default:
		relayID, err = h.relayOther(api, msg, header)
	}

	if err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to deliver to admin")
		h.send(api, tgbotapi.NewMessage(msg.Chat.ID, deliveryFailedText), user.UserID)
		return
	}

	// Persisted only after the delivery that defines the key succeeded.
	if err := h.mappings.Record(relayID, user.UserID, msg.MessageID); err != nil {
		log.Error().Err(err).
			Int64("user_id", user.UserID).
			Int("relay_id", relayID).
			Msg("failed to record mapping; admin replies to this message will not resolve")
	}
}

// relayText sends header + text as one formatted message, appending a
// translation block when the guest's language differs from the admin's.
// Translation failures degrade to the original text.
func (h *RelayHandler) relayText(api bot.API, msg *tgbotapi.Message, header string, user *models.User) (int, error) {
	text := header + "\n\n" + html.EscapeString(msg.Text)

	if user.Language != h.adminLang.Code {
		translated, err := h.translator.Translate(context.Background(), msg.Text, h.adminLang.Name)
		switch {
		case err == nil:
			text += "\n\n🌐 <i>" + h.adminLang.Name + ":</i>\n" + html.EscapeString(translated)
		case errors.Is(err, translator.ErrDisabled):
			// nothing to do
		default:
			log.Warn().Err(err).Int64("user_id", user.UserID).Msg("translation failed")
		}
	}

	out := tgbotapi.NewMessage(h.adminChatID, text)
	out.ParseMode = tgbotapi.ModeHTML

	sent, err := api.Send(out)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// relayMedia copies the payload to the admin with the header folded into the
// caption. copyMessage re-targets the stored asset, so no bytes pass through
// the bot.
func (h *RelayHandler) relayMedia(api bot.API, msg *tgbotapi.Message, header string) (int, error) {
	cp := tgbotapi.NewCopyMessage(h.adminChatID, msg.Chat.ID, msg.MessageID)
	cp.Caption = buildCaption(header, msg.Caption)
	cp.ParseMode = tgbotapi.ModeHTML

	id, err := api.CopyMessage(cp)
	if err != nil {
		return 0, err
	}
	return id.MessageID, nil
}

// relayOther sends the header as its own message, then copies the payload.
// The payload kind cannot carry a caption, so the header has to ride ahead
// of it; if the copy then fails the header stays behind as an orphan.
func (h *RelayHandler) relayOther(api bot.API, msg *tgbotapi.Message, header string) (int, error) {
	headerMsg := tgbotapi.NewMessage(h.adminChatID, header)
	headerMsg.ParseMode = tgbotapi.ModeHTML
	if _, err := api.Send(headerMsg); err != nil {
		return 0, err
	}

	id, err := api.CopyMessage(tgbotapi.NewCopyMessage(h.adminChatID, msg.Chat.ID, msg.MessageID))
	if err != nil {
		return 0, err
	}
	return id.MessageID, nil
}

func (h *RelayHandler) send(api bot.API, msg tgbotapi.MessageConfig, userID int64) {
	if _, err := api.Send(msg); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to send message to guest")
	}
}

// classify buckets a message into exactly one content kind. Media means a
// single caption-capable payload; everything else that is not plain text
// (stickers, dice, video notes, contacts, ...) is Other.
func classify(msg *tgbotapi.Message) contentKind {
	switch {
	case len(msg.Photo) > 0,
		msg.Video != nil,
		msg.Document != nil,
		msg.Voice != nil,
		msg.Audio != nil,
		msg.Animation != nil:
		return kindMedia
	case msg.Text != "":
		return kindText
	default:
		return kindOther
	}
}

// relayHeader formats the correlation header shown above every relayed
// message: display name, id and selected language.
func relayHeader(u *models.User) string {
	name := u.FirstName
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = "Unknown"
	}

	header := "👤 <b>" + html.EscapeString(name) + "</b>"
	if u.Username != "" {
		header += " (@" + u.Username + ")"
	}
	return header + fmt.Sprintf("\n🆔 <code>%d</code> · %s", u.UserID, u.Language)
}

// buildCaption merges the header with the original caption, truncating to
// the platform limit with a trailing ellipsis when needed. The caption is
// guest-controlled and the result is delivered in HTML parse mode, so it is
// escaped before merging.
func buildCaption(header, caption string) string {
	combined := header
	if caption != "" {
		combined += "\n\n" + html.EscapeString(caption)
	}

	runes := []rune(combined)
	if len(runes) <= captionLimit {
		return combined
	}

	cut := string(runes[:captionLimit-1])
	// Never cut inside an &...; entity produced by the escaping above.
	if i := strings.LastIndex(cut, "&"); i > strings.LastIndex(cut, ";") {
		cut = cut[:i]
	}
	return cut + "…"
}
