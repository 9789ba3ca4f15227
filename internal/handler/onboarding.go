package handler

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/artur/relay-bot/internal/bot"
	"github.com/artur/relay-bot/internal/config"
	"github.com/artur/relay-bot/internal/database/models"
	"github.com/artur/relay-bot/internal/database/repository"
)

const (
	callbackVerify     = "verify"
	callbackLangPrefix = "lang:"

	verifyText = "👋 Welcome! Before you can send messages, please confirm you are human."
	langText   = "🌍 Please choose your language:"
	readyText  = "✅ You're all set. Send me a message and it will be delivered."
)

// OnboardingHandler walks a guest through verification and language
// selection. It owns the /start command and the onboarding callbacks.
type OnboardingHandler struct {
	users       *repository.UserRepository
	langs       []config.Language
	adminChatID int64
}

func NewOnboardingHandler(users *repository.UserRepository, langs []config.Language, adminChatID int64) *OnboardingHandler {
	return &OnboardingHandler{
		users:       users,
		langs:       langs,
		adminChatID: adminChatID,
	}
}

func (h *OnboardingHandler) CanHandle(update tgbotapi.Update) bool {
	if update.Message != nil {
		return update.Message.From != nil &&
			update.Message.From.ID != h.adminChatID &&
			update.Message.IsCommand() &&
			update.Message.Command() == "start"
	}
	if update.CallbackQuery != nil {
		data := update.CallbackQuery.Data
		return data == callbackVerify || strings.HasPrefix(data, callbackLangPrefix)
	}
	return false
}

func (h *OnboardingHandler) Handle(api bot.API, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(api, update.CallbackQuery)
		return
	}
	h.handleStart(api, update.Message)
}

// handleStart re-sends the prompt for the guest's current state. Replayed
// /start commands change nothing; the upsert touches profile fields only.
func (h *OnboardingHandler) handleStart(api bot.API, msg *tgbotapi.Message) {
	user, err := h.users.UpsertFromTelegram(msg.From)
	if err != nil {
		log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to upsert user")
		return
	}

	if user.IsBlocked {
		log.Debug().Int64("user_id", user.UserID).Msg("ignoring /start from blocked user")
		return
	}

	var out tgbotapi.MessageConfig
	switch {
	case !user.IsVerified:
		out = verificationPrompt(msg.Chat.ID)
	case user.Language == "":
		out = languagePrompt(msg.Chat.ID, h.langs)
	default:
		out = tgbotapi.NewMessage(msg.Chat.ID, readyText)
	}

	if _, err := api.Send(out); err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to send onboarding prompt")
	}
}

func (h *OnboardingHandler) handleCallback(api bot.API, cb *tgbotapi.CallbackQuery) {
	user, err := h.users.UpsertFromTelegram(cb.From)
	if err != nil {
		log.Error().Err(err).Int64("user_id", cb.From.ID).Msg("failed to upsert user")
		answerCallback(api, cb.ID, "Something went wrong, please try again.")
		return
	}

	if user.IsBlocked {
		answerCallback(api, cb.ID, "")
		return
	}

	if cb.Data == callbackVerify {
		h.handleVerify(api, cb, user)
		return
	}
	h.handleLanguage(api, cb, user, strings.TrimPrefix(cb.Data, callbackLangPrefix))
}

// handleVerify commits the verification flag before any acknowledgment so a
// failed send never loses the transition. Replays fall through to the same
// language prompt without touching state again.
func (h *OnboardingHandler) handleVerify(api bot.API, cb *tgbotapi.CallbackQuery, user *models.User) {
	if !user.IsVerified {
		if err := h.users.SetVerified(user.UserID); err != nil {
			log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to set verified")
			answerCallback(api, cb.ID, "Something went wrong, please try again.")
			return
		}
		log.Info().Int64("user_id", user.UserID).Msg("user verified")
	}

	answerCallback(api, cb.ID, "Verified ✅")

	if cb.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, langText, languageKeyboard(h.langs))
	if _, err := api.Send(edit); err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to show language prompt")
	}
}

func (h *OnboardingHandler) handleLanguage(api bot.API, cb *tgbotapi.CallbackQuery, user *models.User, code string) {
	name, ok := languageName(h.langs, code)
	if !ok {
		// Our keyboards never emit unknown codes; this is a forged or
		// stale control.
		log.Warn().Int64("user_id", user.UserID).Str("code", code).Msg("rejected unsupported language code")
		answerCallback(api, cb.ID, "Unsupported language.")
		return
	}

	if !user.IsVerified {
		answerCallback(api, cb.ID, "Please verify first.")
		if _, err := api.Send(verificationPrompt(cb.From.ID)); err != nil {
			log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to send verification prompt")
		}
		return
	}

	if err := h.users.SetLanguage(user.UserID, code); err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to set language")
		answerCallback(api, cb.ID, "Something went wrong, please try again.")
		return
	}
	log.Info().Int64("user_id", user.UserID).Str("language", code).Msg("language selected")

	answerCallback(api, cb.ID, "Language set: "+name)

	if cb.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		"✅ Language set: "+name+". Send me a message and it will be delivered.")
	if _, err := api.Send(edit); err != nil {
		log.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to confirm language selection")
	}
}

func answerCallback(api bot.API, callbackID, text string) {
	if _, err := api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Warn().Err(err).Msg("failed to answer callback")
	}
}

func verificationPrompt(chatID int64) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, verifyText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I'm human", callbackVerify),
		),
	)
	return msg
}

func languagePrompt(chatID int64, langs []config.Language) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, langText)
	msg.ReplyMarkup = languageKeyboard(langs)
	return msg
}

// languageKeyboard lays the fixed language table out two buttons per row.
func languageKeyboard(langs []config.Language) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(langs); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(langs[i].Name, callbackLangPrefix+langs[i].Code),
		}
		if i+1 < len(langs) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(langs[i+1].Name, callbackLangPrefix+langs[i+1].Code))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func languageName(langs []config.Language, code string) (string, bool) {
	for _, l := range langs {
		if l.Code == code {
			return l.Name, true
		}
	}
	return "", false
}
