package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded once at startup.
type Config struct {
	Debug  bool   `env:"DEBUG" envDefault:"false"`
	DBPath string `env:"DB_PATH" envDefault:"/data/bot.db"`

	Telegram struct {
		BotToken    string `env:"TELEGRAM_BOT_TOKEN,required"`
		AdminChatID int64  `env:"ADMIN_CHAT_ID,required"`
	}

	// AdminLanguage is the admin's reference language code. Guest messages
	// in any other language get a translation block appended.
	AdminLanguage string `env:"ADMIN_LANGUAGE" envDefault:"en"`

	// MappingRetentionDays bounds how long reply correlation survives.
	// 0 disables pruning (mappings are kept forever).
	MappingRetentionDays int `env:"MAPPING_RETENTION_DAYS" envDefault:"0"`

	Translator struct {
		APIKey  string `env:"TRANSLATOR_API_KEY"`
		BaseURL string `env:"TRANSLATOR_BASE_URL" envDefault:"https://api.openai.com/v1"`
		Model   string `env:"TRANSLATOR_MODEL" envDefault:"gpt-4o-mini"`
	}
}

// Load reads a local .env file (if any) and the environment into Config.
func Load() (*Config, error) {
	// Missing .env is fine; production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if _, ok := LanguageName(cfg.AdminLanguage); !ok {
		return nil, fmt.Errorf("unsupported ADMIN_LANGUAGE %q", cfg.AdminLanguage)
	}

	return cfg, nil
}

// AdminLang returns the admin reference language as a table entry.
func (c *Config) AdminLang() Language {
	name, _ := LanguageName(c.AdminLanguage)
	return Language{Code: c.AdminLanguage, Name: name}
}
