package config

import "testing"

func TestLanguageName(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
		ok       bool
	}{
		{
			name:     "known code",
			code:     "en",
			expected: "English",
			ok:       true,
		},
		{
			name:     "another known code",
			code:     "zh",
			expected: "Chinese",
			ok:       true,
		},
		{
			name:     "unknown code",
			code:     "xx",
			expected: "",
			ok:       false,
		},
		{
			name:     "empty code",
			code:     "",
			expected: "",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LanguageName(tt.code)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("LanguageName(%q) = (%q, %v), want (%q, %v)",
					tt.code, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestSupportedLanguages_ReturnsCopy(t *testing.T) {
	first := SupportedLanguages()
	if len(first) == 0 {
		t.Fatal("Expected a non-empty language table")
	}

	first[0].Name = "mutated"

	if got := SupportedLanguages()[0].Name; got == "mutated" {
		t.Error("SupportedLanguages must not expose the internal table")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("Unexpected token %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.AdminChatID != 42 {
		t.Errorf("Unexpected admin chat id %d", cfg.Telegram.AdminChatID)
	}
	if cfg.AdminLanguage != "en" {
		t.Errorf("Expected default admin language 'en', got %q", cfg.AdminLanguage)
	}
	if cfg.AdminLang().Name != "English" {
		t.Errorf("Expected resolved admin language name, got %q", cfg.AdminLang().Name)
	}
	if cfg.MappingRetentionDays != 0 {
		t.Errorf("Expected retention disabled by default, got %d", cfg.MappingRetentionDays)
	}
}

func TestLoad_RejectsUnknownAdminLanguage(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "42")
	t.Setenv("ADMIN_LANGUAGE", "xx")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unsupported admin language")
	}
}
