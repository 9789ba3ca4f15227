package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// API is the slice of the Telegram client handlers actually use.
// *tgbotapi.BotAPI satisfies it; tests substitute a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	CopyMessage(config tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error)
}

// Handler processes one kind of update. Registration order decides routing:
// the first handler whose CanHandle returns true gets the update.
type Handler interface {
	CanHandle(update tgbotapi.Update) bool
	Handle(api API, update tgbotapi.Update)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers []Handler
}

func New(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	return &Bot{
		api:      api,
		handlers: make([]Handler, 0),
	}, nil
}

func (b *Bot) RegisterHandler(h Handler) {
	b.handlers = append(b.handlers, h)
	log.Info().Str("handler", fmt.Sprintf("%T", h)).Msg("registered handler")
}

// NotifyStartup tells the admin the bot is up.
func (b *Bot) NotifyStartup(adminChatID int64) {
	msg := tgbotapi.NewMessage(adminChatID, "🤖 Bot started and listening for messages.")
	if _, err := b.api.Send(msg); err != nil {
		log.Warn().Err(err).Msg("failed to send startup notification")
	}
}

// Run consumes the long-polling update stream until the channel closes.
// Each update is handled in its own goroutine; all shared state lives in
// the database, so units of work never coordinate in process.
func (b *Bot) Run() {
	log.Info().Int("handlers", len(b.handlers)).Msg("starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			log.Debug().
				Int64("user_id", update.Message.From.ID).
				Str("username", update.Message.From.UserName).
				Msg("message received")
		}
		if update.CallbackQuery != nil {
			log.Debug().
				Int64("user_id", update.CallbackQuery.From.ID).
				Str("data", update.CallbackQuery.Data).
				Msg("callback received")
		}

		if update.Message == nil && update.CallbackQuery == nil {
			log.Debug().Msg("skipping update: no message or callback")
			continue
		}

		handled := false
		for _, handler := range b.handlers {
			if handler.CanHandle(update) {
				go handler.Handle(b.api, update)
				handled = true
				break
			}
		}

		if !handled {
			log.Debug().Msg("no handler found for update")
		}
	}
}
