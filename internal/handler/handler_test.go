package handler

import (
	"context"
	"database/sql"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/artur/relay-bot/internal/config"
	"github.com/artur/relay-bot/internal/database"
	"github.com/artur/relay-bot/internal/database/repository"
)

const testAdminID int64 = 999

var testLangs = []config.Language{
	{Code: "en", Name: "English"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ru", Name: "Russian"},
}

// fakeAPI implements bot.API and records every outbound call. Message ids
// are handed out sequentially so tests can assert correlation keys.
type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	copies    []tgbotapi.CopyMessageConfig
	nextID    int
	sendErr   error
	copyErr   error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) CopyMessage(cfg tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error) {
	if f.copyErr != nil {
		return tgbotapi.MessageID{}, f.copyErr
	}
	f.copies = append(f.copies, cfg)
	f.nextID++
	return tgbotapi.MessageID{MessageID: f.nextID}, nil
}

// sentMessages returns only the plain message configs among sent chattables.
func (f *fakeAPI) sentMessages() []tgbotapi.MessageConfig {
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

// fakeTranslator records invocations and returns a fixed result.
type fakeTranslator struct {
	calls  int
	result string
	err    error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	dbWrapper := &database.DB{DB: db}
	if err := dbWrapper.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func setupRepos(t *testing.T) (*repository.UserRepository, *repository.MappingRepository, *repository.StatsRepository) {
	t.Helper()
	db := setupTestDB(t)
	return repository.NewUserRepository(db), repository.NewMappingRepository(db), repository.NewStatsRepository(db)
}

// guestMessage builds an incoming text message from a guest private chat.
func guestMessage(userID int64, messageID int, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: messageID,
			Text:      text,
			From:      &tgbotapi.User{ID: userID, FirstName: "Guest", UserName: "guest"},
			Chat:      &tgbotapi.Chat{ID: userID},
		},
	}
}

// commandMessage builds a message whose text is a bot command.
func commandMessage(userID int64, messageID int, command string) tgbotapi.Update {
	u := guestMessage(userID, messageID, command)
	u.Message.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(command)},
	}
	return u
}

// callbackUpdate builds a callback query pressed on a prompt message.
func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			Data: data,
			From: &tgbotapi.User{ID: userID, FirstName: "Guest", UserName: "guest"},
			Message: &tgbotapi.Message{
				MessageID: 50,
				Chat:      &tgbotapi.Chat{ID: userID},
			},
		},
	}
}
